package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"travel-match/internal/domain"
)

const defaultLookupBatchSize = 1000

type TagTraitRepository interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error)
	List(ctx context.Context) ([]domain.TagTrait, error)
	Upsert(ctx context.Context, trait domain.TagTrait) error
}

type PgTagTraitRepository struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewPgTagTraitRepository(pool *pgxpool.Pool, batchSize int) *PgTagTraitRepository {
	if batchSize <= 0 {
		batchSize = defaultLookupBatchSize
	}
	return &PgTagTraitRepository{pool: pool, batchSize: batchSize}
}

const tagTraitColumns = `tag_id, tag_name, adventure, relaxation_vs_exploration, group_intimacy, price_comfort, guidance, food_and_drink, tag_weight`

func (r *PgTagTraitRepository) Upsert(ctx context.Context, trait domain.TagTrait) error {
	const query = `
		INSERT INTO tag_traits (` + tagTraitColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (tag_id)
		DO UPDATE SET
			tag_name = EXCLUDED.tag_name,
			adventure = EXCLUDED.adventure,
			relaxation_vs_exploration = EXCLUDED.relaxation_vs_exploration,
			group_intimacy = EXCLUDED.group_intimacy,
			price_comfort = EXCLUDED.price_comfort,
			guidance = EXCLUDED.guidance,
			food_and_drink = EXCLUDED.food_and_drink,
			tag_weight = EXCLUDED.tag_weight,
			updated_at = EXCLUDED.updated_at
	`
	s := trait.Traits.Clamped()
	_, err := r.pool.Exec(ctx, query,
		trait.TagID,
		trait.TagName,
		s.Adventure,
		s.RelaxationVsExploration,
		s.GroupIntimacy,
		s.PriceComfort,
		s.Guidance,
		s.FoodAndDrink,
		trait.TagWeight,
	)
	return err
}

// FindByIDs resuelve los ids en lotes de batchSize; los lotes se consultan en paralelo.
// Ids inexistentes no aparecen en el resultado.
func (r *PgTagTraitRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	out := make(map[int64]domain.TagTrait, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const query = `
		SELECT ` + tagTraitColumns + `
		FROM tag_traits
		WHERE tag_id = ANY($1)
	`

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range chunkIDs(ids, r.batchSize) {
		g.Go(func() error {
			rows, err := r.pool.Query(gctx, query, chunk)
			if err != nil {
				return fmt.Errorf("query tag traits: %w", err)
			}
			defer rows.Close()

			found, err := scanTagTraits(rows)
			if err != nil {
				return fmt.Errorf("scan tag traits: %w", err)
			}
			mu.Lock()
			for _, t := range found {
				out[t.TagID] = t
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgTagTraitRepository) List(ctx context.Context) ([]domain.TagTrait, error) {
	const query = `
		SELECT ` + tagTraitColumns + `
		FROM tag_traits
		ORDER BY tag_weight DESC, tag_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTagTraits(rows)
}

func scanTagTraits(rows pgxRows) ([]domain.TagTrait, error) {
	var traits []domain.TagTrait
	for rows.Next() {
		var t domain.TagTrait
		if err := rows.Scan(
			&t.TagID,
			&t.TagName,
			&t.Traits.Adventure,
			&t.Traits.RelaxationVsExploration,
			&t.Traits.GroupIntimacy,
			&t.Traits.PriceComfort,
			&t.Traits.Guidance,
			&t.Traits.FoodAndDrink,
			&t.TagWeight,
		); err != nil {
			return nil, err
		}
		traits = append(traits, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return traits, nil
}

// chunkIDs parte ids en lotes de a lo sumo size elementos.
func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = defaultLookupBatchSize
	}
	var chunks [][]int64
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
