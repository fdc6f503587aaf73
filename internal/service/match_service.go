package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/matching"
	"travel-match/internal/repository"
)

const (
	defaultRecommendLimit      = 10
	defaultRecommendCandidates = 50
)

var (
	ErrMatchServiceNotConfigured = errors.New("match service not configured")
	ErrMatchInvalidInput         = errors.New("match invalid input")
	ErrItemsNotFound             = errors.New("items not found")
)

// MatchOptions ajusta el paralelismo y el tamano de la busqueda de candidatos.
type MatchOptions struct {
	Workers    int
	Candidates int
}

// MatchService conecta el motor de matching con catalogo, preferencias guardadas y
// perfiles persistidos.
type MatchService struct {
	engine   *matching.Engine
	items    repository.CatalogItemRepository
	prefs    repository.TravelerPreferenceRepository
	profiles repository.ItemProfileRepository
	opts     MatchOptions
	logger   *zap.Logger
}

func NewMatchService(
	engine *matching.Engine,
	items repository.CatalogItemRepository,
	prefs repository.TravelerPreferenceRepository,
	profiles repository.ItemProfileRepository,
	opts MatchOptions,
	logger *zap.Logger,
) *MatchService {
	if opts.Candidates <= 0 {
		opts.Candidates = defaultRecommendCandidates
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		engine:   engine,
		items:    items,
		prefs:    prefs,
		profiles: profiles,
		opts:     opts,
		logger:   logger,
	}
}

// PreferencesFor devuelve el vector del viajero. Sin onboarding guardado es neutral.
func (s *MatchService) PreferencesFor(ctx context.Context, travelerID string) (domain.PreferenceVector, error) {
	if s == nil || s.prefs == nil {
		return domain.PreferenceVector{}, ErrMatchServiceNotConfigured
	}
	travelerID = strings.TrimSpace(travelerID)
	if travelerID == "" {
		return domain.PreferenceVector{}, ErrMatchInvalidInput
	}
	stored, err := s.prefs.GetByTravelerID(ctx, travelerID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Debug("traveler without stored preferences", zap.String("traveler_id", travelerID))
		return domain.NeutralPreferences(), nil
	}
	if err != nil {
		return domain.PreferenceVector{}, fmt.Errorf("load traveler preferences: %w", err)
	}
	return matching.PreferencesFromStored(stored), nil
}

// SavePreferences guarda las respuestas de onboarding del viajero (limitadas a 0-100)
// y devuelve el vector resultante.
func (s *MatchService) SavePreferences(ctx context.Context, travelerID string, stored domain.TravelerPreferences) (domain.PreferenceVector, error) {
	if s == nil || s.prefs == nil {
		return domain.PreferenceVector{}, ErrMatchServiceNotConfigured
	}
	travelerID = strings.TrimSpace(travelerID)
	if travelerID == "" {
		return domain.PreferenceVector{}, ErrMatchInvalidInput
	}
	stored.TravelerID = travelerID
	for _, field := range []**int{
		&stored.AdventureLevel,
		&stored.CultureVsBeach,
		&stored.GroupPreference,
		&stored.BudgetComfort,
		&stored.StructurePreference,
		&stored.FoodAndDrinkInterest,
	} {
		if *field != nil {
			v := domain.ClampScore(**field)
			*field = &v
		}
	}
	stored.UpdatedAt = time.Now().UTC()
	if err := s.prefs.Upsert(ctx, stored); err != nil {
		return domain.PreferenceVector{}, fmt.Errorf("store traveler preferences: %w", err)
	}
	s.logger.Info("traveler preferences saved", zap.String("traveler_id", travelerID))
	return matching.PreferencesFromStored(stored), nil
}

// ScoreForTraveler puntua los items pedidos contra las preferencias guardadas del viajero.
// El resultado queda ordenado por puntaje descendente.
func (s *MatchService) ScoreForTraveler(ctx context.Context, travelerID string, itemIDs []uuid.UUID) ([]domain.MatchResult, error) {
	if s == nil || s.engine == nil || s.items == nil {
		return nil, ErrMatchServiceNotConfigured
	}
	if len(itemIDs) == 0 {
		return nil, ErrMatchInvalidInput
	}
	prefs, err := s.PreferencesFor(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("load catalog items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrItemsNotFound
	}
	return s.scoreItems(ctx, items, prefs)
}

// Recommend busca candidatos cercanos al vector del viajero y devuelve los mejores
// limit segun el puntaje completo.
func (s *MatchService) Recommend(ctx context.Context, travelerID string, limit int) ([]domain.MatchResult, error) {
	if s == nil || s.engine == nil || s.items == nil || s.profiles == nil {
		return nil, ErrMatchServiceNotConfigured
	}
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	prefs, err := s.PreferencesFor(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.profiles.Nearest(ctx, prefs.Traits, max(s.opts.Candidates, limit))
	if err != nil {
		return nil, fmt.Errorf("nearest item profiles: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.MatchResult{}, nil
	}
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ItemID
	}
	items, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load catalog items: %w", err)
	}
	results, err := s.scoreItems(ctx, items, prefs)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	s.logger.Info("recommendations computed",
		zap.String("traveler_id", travelerID),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(results)),
	)
	return results, nil
}

// ItemProfile devuelve el perfil guardado del item; si aun no existe lo calcula y persiste.
func (s *MatchService) ItemProfile(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error) {
	if s == nil || s.profiles == nil {
		return domain.ItemProfile{}, ErrMatchServiceNotConfigured
	}
	stored, err := s.profiles.GetByItemID(ctx, itemID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ItemProfile{}, fmt.Errorf("load item profile: %w", err)
	}
	return s.RefreshItemProfile(ctx, itemID)
}

// RefreshItemProfile recalcula y persiste el perfil caracteristico de un item.
func (s *MatchService) RefreshItemProfile(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error) {
	if s == nil || s.engine == nil || s.items == nil || s.profiles == nil {
		return domain.ItemProfile{}, ErrMatchServiceNotConfigured
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return domain.ItemProfile{}, err
	}
	profile := s.engine.ComputeProfile(ctx, TagRefs(item.TagIDs))
	stored := domain.ItemProfile{
		ItemID:     item.ID,
		Traits:     profile.Traits,
		Confidence: profile.Confidence,
		TagCount:   profile.TagCount,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.profiles.Upsert(ctx, stored); err != nil {
		return domain.ItemProfile{}, fmt.Errorf("store item profile: %w", err)
	}
	s.logger.Info("item profile refreshed",
		zap.String("item_id", item.ID.String()),
		zap.String("confidence", string(profile.Confidence)),
		zap.Int("tag_count", profile.TagCount),
	)
	return stored, nil
}

func (s *MatchService) scoreItems(ctx context.Context, items []domain.CatalogItem, prefs domain.PreferenceVector) ([]domain.MatchResult, error) {
	inputs := make([]matching.MatchInput, len(items))
	for i, it := range items {
		inputs[i] = matching.MatchInput{
			ItemID:     it.ID.String(),
			Attributes: it.Attributes,
			Tags:       TagRefs(it.TagIDs),
		}
	}
	results, err := s.engine.MatchBatch(ctx, inputs, prefs, s.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("score items: %w", err)
	}
	SortByScore(results)
	return results, nil
}

// TagRefs convierte ids de catalogo en entradas para el motor.
func TagRefs(ids []int64) []matching.TagInput {
	out := make([]matching.TagInput, len(ids))
	for i, id := range ids {
		out[i] = matching.TagRef(id)
	}
	return out
}

// SortByScore ordena por puntaje descendente; empates por id de item.
func SortByScore(results []domain.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ItemID < results[j].ItemID
	})
}
