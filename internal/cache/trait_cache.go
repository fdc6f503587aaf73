package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/metrics"
)

const defaultTTL = 15 * time.Minute

// TraitSource es el origen de verdad de los rasgos (normalmente Postgres).
type TraitSource interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error)
}

// TraitCache es un lookup read-through: sirve desde el store y completa los faltantes
// desde la fuente. Los errores del store no cortan la lectura.
type TraitCache struct {
	source TraitSource
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewTraitCache(source TraitSource, store Store, ttl time.Duration, logger *zap.Logger) *TraitCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TraitCache{source: source, store: store, ttl: ttl, logger: logger}
}

// FindByIDs resuelve desde el store y luego la fuente. Si la fuente falla devuelve
// igualmente los aciertos de cache junto al error.
func (c *TraitCache) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	out := make(map[int64]domain.TagTrait, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if c.store != nil {
		cached, err := c.store.GetMany(ctx, ids)
		if err != nil {
			c.logger.Warn("tag trait cache read failed", zap.Error(err), zap.Int("count", len(ids)))
			metrics.TraitCacheLookups.WithLabelValues("error").Inc()
			cached = nil
		}
		missing = make([]int64, 0, len(ids))
		for _, id := range ids {
			if t, ok := cached[id]; ok {
				out[id] = t
				continue
			}
			missing = append(missing, id)
		}
		metrics.TraitCacheLookups.WithLabelValues("hit").Add(float64(len(out)))
		metrics.TraitCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.source.FindByIDs(ctx, missing)
	if err != nil {
		return out, fmt.Errorf("load tag traits: %w", err)
	}
	toStore := make([]domain.TagTrait, 0, len(fetched))
	for id, t := range fetched {
		out[id] = t
		toStore = append(toStore, t)
	}
	if c.store != nil && len(toStore) > 0 {
		if err := c.store.SetMany(ctx, toStore, c.ttl); err != nil {
			c.logger.Warn("tag trait cache write failed", zap.Error(err), zap.Int("count", len(toStore)))
		}
	}
	return out, nil
}

// Invalidate descarta ids puntuales tras un cambio en los rasgos.
func (c *TraitCache) Invalidate(ctx context.Context, ids ...int64) error {
	if c.store == nil || len(ids) == 0 {
		return nil
	}
	if err := c.store.Delete(ctx, ids); err != nil {
		return fmt.Errorf("invalidate tag traits: %w", err)
	}
	return nil
}

// Flush vacia la cache completa.
func (c *TraitCache) Flush(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Flush(ctx); err != nil {
		return fmt.Errorf("flush tag traits: %w", err)
	}
	return nil
}
