package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/repository"
)

var ErrTagTraitInvalid = errors.New("tag trait invalid")

// TraitInvalidator descarta entradas cacheadas de rasgos.
type TraitInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64) error
}

// TagTraitService administra el catalogo de rasgos por tag y mantiene la cache coherente.
type TagTraitService struct {
	repo   repository.TagTraitRepository
	cache  TraitInvalidator
	logger *zap.Logger
}

func NewTagTraitService(repo repository.TagTraitRepository, cache TraitInvalidator, logger *zap.Logger) *TagTraitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagTraitService{repo: repo, cache: cache, logger: logger}
}

func (s *TagTraitService) List(ctx context.Context) ([]domain.TagTrait, error) {
	if s == nil || s.repo == nil {
		return nil, ErrMatchServiceNotConfigured
	}
	traits, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tag traits: %w", err)
	}
	if traits == nil {
		traits = []domain.TagTrait{}
	}
	return traits, nil
}

// Save persiste el rasgo y descarta la copia cacheada del tag.
func (s *TagTraitService) Save(ctx context.Context, trait domain.TagTrait) (domain.TagTrait, error) {
	if s == nil || s.repo == nil {
		return domain.TagTrait{}, ErrMatchServiceNotConfigured
	}
	trait.TagName = strings.TrimSpace(trait.TagName)
	if trait.TagID <= 0 || trait.TagName == "" {
		return domain.TagTrait{}, ErrTagTraitInvalid
	}
	if math.IsNaN(trait.TagWeight) || math.IsInf(trait.TagWeight, 0) || trait.TagWeight < 0 {
		return domain.TagTrait{}, ErrTagTraitInvalid
	}
	trait.Traits = trait.Traits.Clamped()

	if err := s.repo.Upsert(ctx, trait); err != nil {
		return domain.TagTrait{}, fmt.Errorf("store tag trait: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, trait.TagID); err != nil {
			return domain.TagTrait{}, fmt.Errorf("invalidate cached tag trait: %w", err)
		}
	}
	s.logger.Info("tag trait saved",
		zap.Int64("tag_id", trait.TagID),
		zap.String("tag_name", trait.TagName),
		zap.Float64("tag_weight", trait.TagWeight),
	)
	return trait, nil
}
