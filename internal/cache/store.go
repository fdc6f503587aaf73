package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"travel-match/internal/domain"
)

// Store guarda rasgos de tags por id con expiracion.
type Store interface {
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error)
	SetMany(ctx context.Context, traits []domain.TagTrait, ttl time.Duration) error
	Delete(ctx context.Context, ids []int64) error
	Flush(ctx context.Context) error
}

type memoryEntry struct {
	trait   domain.TagTrait
	expires time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items map[int64]memoryEntry
	now   func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		items: make(map[int64]memoryEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memoryStore) GetMany(_ context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make(map[int64]domain.TagTrait, len(ids))
	for _, id := range ids {
		entry, ok := s.items[id]
		if !ok {
			continue
		}
		if now.After(entry.expires) {
			delete(s.items, id)
			continue
		}
		out[id] = entry.trait
	}
	return out, nil
}

func (s *memoryStore) SetMany(_ context.Context, traits []domain.TagTrait, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires := s.now().Add(ttl)
	for _, t := range traits {
		s.items[t.TagID] = memoryEntry{trait: t, expires: expires}
	}
	return nil
}

func (s *memoryStore) Delete(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.items, id)
	}
	return nil
}

func (s *memoryStore) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]memoryEntry)
	return nil
}

type redisKV interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

type redisStore struct {
	client redisKV
	prefix string
}

func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		return nil
	}
	return &redisStore{
		client: client,
		prefix: "match:tag_trait:",
	}
}

func (s *redisStore) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

func (s *redisStore) GetMany(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	out := make(map[int64]domain.TagTrait, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok || i >= len(ids) {
			continue
		}
		var t domain.TagTrait
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			// Entrada corrupta: se trata como miss y se reescribe desde la fuente.
			continue
		}
		out[ids[i]] = t
	}
	return out, nil
}

func (s *redisStore) SetMany(ctx context.Context, traits []domain.TagTrait, ttl time.Duration) error {
	for _, t := range traits {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode tag trait %d: %w", t.TagID, err)
		}
		if err := s.client.Set(ctx, s.key(t.TagID), payload, ttl).Err(); err != nil {
			return fmt.Errorf("redis set: %w", err)
		}
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	return s.client.Del(ctx, keys...).Err()
}

// Flush borra todas las claves del prefijo recorriendo SCAN.
func (s *redisStore) Flush(ctx context.Context) error {
	var cursor uint64
	match := s.prefix + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, 500).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
