package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/service"
)

// TagTraitManager cubre la administracion del catalogo de rasgos.
type TagTraitManager interface {
	List(ctx context.Context) ([]domain.TagTrait, error)
	Save(ctx context.Context, trait domain.TagTrait) (domain.TagTrait, error)
}

// TagTraitHandler expone el catalogo de rasgos por tag.
type TagTraitHandler struct {
	logger *zap.Logger
	traits TagTraitManager
}

func NewTagTraitHandler(logger *zap.Logger, traits TagTraitManager) *TagTraitHandler {
	return &TagTraitHandler{logger: logger, traits: traits}
}

type tagTraitRequest struct {
	TagName                 string   `json:"tag_name" validate:"required,max=128"`
	Adventure               *int     `json:"adventure" validate:"omitempty,gte=0,lte=100"`
	RelaxationVsExploration *int     `json:"relaxation_vs_exploration" validate:"omitempty,gte=0,lte=100"`
	GroupIntimacy           *int     `json:"group_intimacy" validate:"omitempty,gte=0,lte=100"`
	PriceComfort            *int     `json:"price_comfort" validate:"omitempty,gte=0,lte=100"`
	Guidance                *int     `json:"guidance" validate:"omitempty,gte=0,lte=100"`
	FoodAndDrink            *int     `json:"food_and_drink" validate:"omitempty,gte=0,lte=100"`
	TagWeight               *float64 `json:"tag_weight" validate:"omitempty,gte=0,lte=100"`
}

// trait arma el rasgo; ejes omitidos quedan neutrales y el peso por defecto es 1.
func (r tagTraitRequest) trait(id int64) domain.TagTrait {
	scores := domain.NeutralTraitScores()
	for d, v := range map[domain.Dimension]*int{
		domain.DimensionAdventure:               r.Adventure,
		domain.DimensionRelaxationVsExploration: r.RelaxationVsExploration,
		domain.DimensionGroupIntimacy:           r.GroupIntimacy,
		domain.DimensionPriceComfort:            r.PriceComfort,
		domain.DimensionGuidance:                r.Guidance,
		domain.DimensionFoodAndDrink:            r.FoodAndDrink,
	} {
		if v != nil {
			scores.Set(d, *v)
		}
	}
	weight := 1.0
	if r.TagWeight != nil {
		weight = *r.TagWeight
	}
	return domain.TagTrait{TagID: id, TagName: r.TagName, Traits: scores, TagWeight: weight}
}

// List maneja GET /tag-traits.
func (h *TagTraitHandler) List(c *gin.Context) {
	traits, err := h.traits.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "could not list tag traits")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag_traits": traits})
}

// Save maneja PUT /tag-traits/:id.
func (h *TagTraitHandler) Save(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}
	var req tagTraitRequest
	if !bindRequest(c, h.logger, &req, "tag trait") {
		return
	}
	saved, err := h.traits.Save(c.Request.Context(), req.trait(id))
	if err != nil {
		h.writeError(c, err, "could not save tag trait")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag_trait": saved})
}

func (h *TagTraitHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrTagTraitInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag trait"})
	case errors.Is(err, service.ErrMatchServiceNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tag traits unavailable"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
