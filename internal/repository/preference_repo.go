package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-match/internal/domain"
)

type TravelerPreferenceRepository interface {
	GetByTravelerID(ctx context.Context, travelerID string) (domain.TravelerPreferences, error)
	Upsert(ctx context.Context, prefs domain.TravelerPreferences) error
}

type PgTravelerPreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPgTravelerPreferenceRepository(pool *pgxpool.Pool) *PgTravelerPreferenceRepository {
	return &PgTravelerPreferenceRepository{pool: pool}
}

func (r *PgTravelerPreferenceRepository) Upsert(ctx context.Context, prefs domain.TravelerPreferences) error {
	const query = `
		INSERT INTO traveler_preferences (
			traveler_id, adventure_level, culture_vs_beach, group_preference, budget_comfort, structure_preference, food_and_drink_interest, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (traveler_id)
		DO UPDATE SET
			adventure_level = EXCLUDED.adventure_level,
			culture_vs_beach = EXCLUDED.culture_vs_beach,
			group_preference = EXCLUDED.group_preference,
			budget_comfort = EXCLUDED.budget_comfort,
			structure_preference = EXCLUDED.structure_preference,
			food_and_drink_interest = EXCLUDED.food_and_drink_interest,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		prefs.TravelerID,
		prefs.AdventureLevel,
		prefs.CultureVsBeach,
		prefs.GroupPreference,
		prefs.BudgetComfort,
		prefs.StructurePreference,
		prefs.FoodAndDrinkInterest,
		prefs.UpdatedAt,
	)
	return err
}

func (r *PgTravelerPreferenceRepository) GetByTravelerID(ctx context.Context, travelerID string) (domain.TravelerPreferences, error) {
	const query = `
		SELECT traveler_id, adventure_level, culture_vs_beach, group_preference, budget_comfort, structure_preference, food_and_drink_interest, updated_at
		FROM traveler_preferences
		WHERE traveler_id = $1
	`
	var prefs domain.TravelerPreferences
	err := r.pool.QueryRow(ctx, query, travelerID).Scan(
		&prefs.TravelerID,
		&prefs.AdventureLevel,
		&prefs.CultureVsBeach,
		&prefs.GroupPreference,
		&prefs.BudgetComfort,
		&prefs.StructurePreference,
		&prefs.FoodAndDrinkInterest,
		&prefs.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TravelerPreferences{}, err
	}
	return prefs, err
}
