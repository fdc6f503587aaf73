package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/matching"
	"travel-match/internal/service"
)

const maxRecommendLimit = 100

// TravelerMatcher cubre las operaciones que dependen de datos guardados.
type TravelerMatcher interface {
	ScoreForTraveler(ctx context.Context, travelerID string, itemIDs []uuid.UUID) ([]domain.MatchResult, error)
	Recommend(ctx context.Context, travelerID string, limit int) ([]domain.MatchResult, error)
	RefreshItemProfile(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error)
	ItemProfile(ctx context.Context, itemID uuid.UUID) (domain.ItemProfile, error)
	SavePreferences(ctx context.Context, travelerID string, prefs domain.TravelerPreferences) (domain.PreferenceVector, error)
}

// TraitInvalidator descarta rasgos cacheados.
type TraitInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64) error
	Flush(ctx context.Context) error
}

// MatchHandler mantiene dependencias para los endpoints de matching.
type MatchHandler struct {
	logger  *zap.Logger
	engine  *matching.Engine
	matches TravelerMatcher
	traits  TraitInvalidator
	workers int
}

// NewMatchHandler crea una instancia de MatchHandler con dependencias necesarias.
func NewMatchHandler(logger *zap.Logger, engine *matching.Engine, matches TravelerMatcher, traits TraitInvalidator, workers int) *MatchHandler {
	return &MatchHandler{
		logger:  logger,
		engine:  engine,
		matches: matches,
		traits:  traits,
		workers: workers,
	}
}

type itemRequest struct {
	ID                        string             `json:"id" validate:"max=128"`
	Title                     string             `json:"title" validate:"max=512"`
	Description               string             `json:"description" validate:"max=20000"`
	Flags                     []string           `json:"flags" validate:"max=50,dive,max=64"`
	DurationMinutes           *int               `json:"duration_minutes" validate:"omitempty,gte=0,lte=43200"`
	ItineraryType             string             `json:"itinerary_type" validate:"omitempty,oneof=ACTIVITY TOUR activity tour"`
	ConfirmationType          string             `json:"confirmation_type" validate:"max=32"`
	Price                     any                `json:"price"`
	Rating                    *float64           `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount               int                `json:"review_count" validate:"gte=0"`
	HasThirdPartyReviewSource bool               `json:"has_third_party_review_source"`
	Tags                      matching.TagInputs `json:"tags"`
}

func (r itemRequest) attributes() domain.ItemAttributes {
	attrs := domain.ItemAttributes{
		Flags:                     r.Flags,
		DurationMinutes:           r.DurationMinutes,
		ItineraryType:             domain.ItineraryType(strings.ToUpper(r.ItineraryType)),
		ConfirmationType:          r.ConfirmationType,
		Title:                     r.Title,
		Description:               r.Description,
		Rating:                    r.Rating,
		ReviewCount:               r.ReviewCount,
		HasThirdPartyReviewSource: r.HasThirdPartyReviewSource,
	}
	if price, ok := matching.ParsePrice(r.Price); ok {
		attrs.Price = &price
	}
	return attrs
}

type profileRequest struct {
	Tags matching.TagInputs `json:"tags"`
}

type scoreRequest struct {
	Item        itemRequest        `json:"item"`
	Tags        matching.TagInputs `json:"tags"`
	Preferences map[string]any     `json:"preferences"`
}

type batchRequest struct {
	Items       []itemRequest  `json:"items" validate:"required,min=1,max=500,dive"`
	Preferences map[string]any `json:"preferences"`
}

type preferencesRequest struct {
	AdventureLevel       *int `json:"adventureLevel" validate:"omitempty,gte=0,lte=100"`
	CultureVsBeach       *int `json:"cultureVsBeach" validate:"omitempty,gte=0,lte=100"`
	GroupPreference      *int `json:"groupPreference" validate:"omitempty,gte=0,lte=100"`
	BudgetComfort        *int `json:"budgetComfort" validate:"omitempty,gte=0,lte=100"`
	StructurePreference  *int `json:"structurePreference" validate:"omitempty,gte=0,lte=100"`
	FoodAndDrinkInterest *int `json:"foodAndDrinkInterest" validate:"omitempty,gte=0,lte=100"`
}

type invalidateRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"max=10000"`
	All    bool    `json:"all"`
}

// ComputeProfile maneja POST /match/profile.
func (h *MatchHandler) ComputeProfile(c *gin.Context) {
	var req profileRequest
	if !h.bind(c, &req, "profile") {
		return
	}
	profile := h.engine.ComputeProfile(c.Request.Context(), req.Tags)
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Score maneja POST /match/score.
func (h *MatchHandler) Score(c *gin.Context) {
	var req scoreRequest
	if !h.bind(c, &req, "score") {
		return
	}
	prefs, err := matching.MapPreferences(req.Preferences)
	if err != nil {
		h.writeError(c, err, "could not score item")
		return
	}
	tags := req.Tags
	if tags == nil {
		tags = req.Item.Tags
	}
	result := h.engine.Match(c.Request.Context(), matching.MatchInput{
		ItemID:     req.Item.ID,
		Attributes: req.Item.attributes(),
		Tags:       tags,
	}, prefs)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ScoreBatch maneja POST /match/batch.
func (h *MatchHandler) ScoreBatch(c *gin.Context) {
	var req batchRequest
	if !h.bind(c, &req, "batch") {
		return
	}
	prefs, err := matching.MapPreferences(req.Preferences)
	if err != nil {
		h.writeError(c, err, "could not score items")
		return
	}
	inputs := make([]matching.MatchInput, len(req.Items))
	for i, it := range req.Items {
		inputs[i] = matching.MatchInput{ItemID: it.ID, Attributes: it.attributes(), Tags: it.Tags}
	}
	results, err := h.engine.MatchBatch(c.Request.Context(), inputs, prefs, h.workers)
	if err != nil {
		h.writeError(c, err, "could not score items")
		return
	}
	service.SortByScore(results)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// TravelerMatches maneja GET /travelers/me/matches?item_id=...
func (h *MatchHandler) TravelerMatches(c *gin.Context) {
	travelerID, ok := TravelerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	raw := c.QueryArray("item_id")
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item_id must be a valid uuid"})
			return
		}
		ids = append(ids, id)
	}
	results, err := h.matches.ScoreForTraveler(c.Request.Context(), travelerID, ids)
	if err != nil {
		h.writeError(c, err, "could not score items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Recommendations maneja GET /travelers/me/recommendations?limit=
func (h *MatchHandler) Recommendations(c *gin.Context) {
	travelerID, ok := TravelerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecommendLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = n
	}
	results, err := h.matches.Recommend(c.Request.Context(), travelerID, limit)
	if err != nil {
		h.writeError(c, err, "could not compute recommendations")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// SavePreferences maneja PUT /travelers/me/preferences.
func (h *MatchHandler) SavePreferences(c *gin.Context) {
	travelerID, ok := TravelerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	var req preferencesRequest
	if !h.bind(c, &req, "preferences") {
		return
	}
	prefs, err := h.matches.SavePreferences(c.Request.Context(), travelerID, domain.TravelerPreferences{
		AdventureLevel:       req.AdventureLevel,
		CultureVsBeach:       req.CultureVsBeach,
		GroupPreference:      req.GroupPreference,
		BudgetComfort:        req.BudgetComfort,
		StructurePreference:  req.StructurePreference,
		FoodAndDrinkInterest: req.FoodAndDrinkInterest,
	})
	if err != nil {
		h.writeError(c, err, "could not save preferences")
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// ItemProfile maneja GET /items/:id/profile.
func (h *MatchHandler) ItemProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid uuid"})
		return
	}
	profile, err := h.matches.ItemProfile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "could not load item profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// RefreshItemProfile maneja POST /items/:id/profile/refresh.
func (h *MatchHandler) RefreshItemProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid uuid"})
		return
	}
	profile, err := h.matches.RefreshItemProfile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "could not refresh item profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// InvalidateTraits maneja POST /tag-traits/invalidate.
func (h *MatchHandler) InvalidateTraits(c *gin.Context) {
	var req invalidateRequest
	if !h.bind(c, &req, "invalidate") {
		return
	}
	if !req.All && len(req.TagIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag_ids or all is required"})
		return
	}
	if h.traits == nil {
		c.JSON(http.StatusOK, gin.H{"invalidated": 0})
		return
	}
	var err error
	if req.All {
		err = h.traits.Flush(c.Request.Context())
	} else {
		err = h.traits.Invalidate(c.Request.Context(), req.TagIDs...)
	}
	if err != nil {
		h.logger.Error("invalidate tag traits failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not invalidate tag traits"})
		return
	}
	h.logger.Info("tag traits invalidated", zap.Bool("all", req.All), zap.Int("count", len(req.TagIDs)))
	c.JSON(http.StatusOK, gin.H{"invalidated": len(req.TagIDs), "all": req.All})
}

func (h *MatchHandler) bind(c *gin.Context, req any, name string) bool {
	return bindRequest(c, h.logger, req, name)
}

// bindRequest decodifica y valida el body. Escribe el 400 y devuelve false si falla.
func bindRequest(c *gin.Context, logger *zap.Logger, req any, name string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("invalid "+name+" request", zap.Error(err))
		var ve *matching.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	if details := validateRequest(req); len(details) > 0 {
		logger.Warn("invalid "+name+" request", zap.Strings("details", details))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": details})
		return false
	}
	return true
}

func (h *MatchHandler) writeError(c *gin.Context, err error, msg string) {
	var ve *matching.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, service.ErrMatchInvalidInput), errors.Is(err, service.ErrTagTraitInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, service.ErrItemsNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrMatchServiceNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "matching unavailable"})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "request cancelled"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
