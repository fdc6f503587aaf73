package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"travel-match/internal/domain"
)

type ItemProfileRepository interface {
	Upsert(ctx context.Context, profile domain.ItemProfile) error
	Nearest(ctx context.Context, target domain.TraitScores, k int) ([]domain.ItemProfileMatch, error)
	GetByItemID(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error)
}

type PgItemProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgItemProfileRepository(pool *pgxpool.Pool) *PgItemProfileRepository {
	return &PgItemProfileRepository{pool: pool}
}

func (r *PgItemProfileRepository) Upsert(ctx context.Context, profile domain.ItemProfile) error {
	const query = `
		INSERT INTO item_profiles (item_id, traits, confidence, tag_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id)
		DO UPDATE SET
			traits = EXCLUDED.traits,
			confidence = EXCLUDED.confidence,
			tag_count = EXCLUDED.tag_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ItemID,
		pgvector.NewVector(profile.Traits.Clamped().Vector()),
		string(profile.Confidence),
		profile.TagCount,
		profile.UpdatedAt,
	)
	return err
}

// Nearest devuelve los k perfiles mas cercanos (distancia L2) al vector objetivo.
func (r *PgItemProfileRepository) Nearest(ctx context.Context, target domain.TraitScores, k int) ([]domain.ItemProfileMatch, error) {
	if k <= 0 {
		k = 20
	}
	const query = `
		SELECT item_id, traits, confidence, tag_count, updated_at, traits <-> $1 AS distance
		FROM item_profiles
		ORDER BY traits <-> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(target.Clamped().Vector()), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItemProfileMatches(rows)
}

func (r *PgItemProfileRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error) {
	const query = `
		SELECT item_id, traits, confidence, tag_count, updated_at
		FROM item_profiles
		WHERE item_id = $1
	`
	var (
		p          domain.ItemProfile
		vec        pgvector.Vector
		confidence string
	)
	err := r.pool.QueryRow(ctx, query, itemID).Scan(&p.ItemID, &vec, &confidence, &p.TagCount, &p.UpdatedAt)
	if err != nil {
		return domain.ItemProfile{}, err
	}
	p.Traits = domain.TraitScoresFromVector(vec.Slice())
	p.Confidence = domain.Confidence(confidence)
	return p, nil
}

func scanItemProfileMatches(rows pgxRows) ([]domain.ItemProfileMatch, error) {
	var matches []domain.ItemProfileMatch
	for rows.Next() {
		var (
			m          domain.ItemProfileMatch
			vec        pgvector.Vector
			confidence string
		)
		if err := rows.Scan(
			&m.ItemID,
			&vec,
			&confidence,
			&m.TagCount,
			&m.UpdatedAt,
			&m.Distance,
		); err != nil {
			return nil, err
		}
		m.Traits = domain.TraitScoresFromVector(vec.Slice())
		m.Confidence = domain.Confidence(confidence)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
