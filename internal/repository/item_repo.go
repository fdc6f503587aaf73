package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel-match/internal/domain"
)

type CatalogItemRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.CatalogItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CatalogItem, error)
}

type PgCatalogItemRepository struct {
	pool *pgxpool.Pool
}

func NewPgCatalogItemRepository(pool *pgxpool.Pool) *PgCatalogItemRepository {
	return &PgCatalogItemRepository{pool: pool}
}

const catalogItemQuery = `
	SELECT i.id, i.kind, i.title, i.description, i.flags, i.duration_minutes, i.itinerary_type,
		i.confirmation_type, i.price, i.rating, i.review_count, i.has_third_party_reviews,
		COALESCE(array_agg(t.tag_id ORDER BY t.position) FILTER (WHERE t.tag_id IS NOT NULL), '{}') AS tag_ids
	FROM catalog_items i
	LEFT JOIN catalog_item_tags t ON t.item_id = i.id
	WHERE i.id = ANY($1)
	GROUP BY i.id
`

func (r *PgCatalogItemRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.CatalogItem, error) {
	items, err := r.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if len(items) == 0 {
		return domain.CatalogItem{}, pgx.ErrNoRows
	}
	return items[0], nil
}

// FindByIDs devuelve los items en el orden de ids; los inexistentes se omiten.
func (r *PgCatalogItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, catalogItemQuery, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found, err := scanCatalogItems(rows)
	if err != nil {
		return nil, err
	}
	return orderItems(ids, found), nil
}

func scanCatalogItems(rows pgxRows) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	for rows.Next() {
		var (
			it        domain.CatalogItem
			itinerary sql.NullString
			confirm   sql.NullString
		)
		if err := rows.Scan(
			&it.ID,
			&it.Kind,
			&it.Attributes.Title,
			&it.Attributes.Description,
			&it.Attributes.Flags,
			&it.Attributes.DurationMinutes,
			&itinerary,
			&confirm,
			&it.Attributes.Price,
			&it.Attributes.Rating,
			&it.Attributes.ReviewCount,
			&it.Attributes.HasThirdPartyReviewSource,
			&it.TagIDs,
		); err != nil {
			return nil, err
		}
		if itinerary.Valid {
			it.Attributes.ItineraryType = domain.ItineraryType(itinerary.String)
		}
		if confirm.Valid {
			it.Attributes.ConfirmationType = confirm.String
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func orderItems(ids []uuid.UUID, items []domain.CatalogItem) []domain.CatalogItem {
	byID := make(map[uuid.UUID]domain.CatalogItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]domain.CatalogItem, 0, len(items))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
			delete(byID, id)
		}
	}
	return out
}
