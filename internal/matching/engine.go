package matching

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travel-match/internal/domain"
	"travel-match/internal/metrics"
)

// TraitLookup resuelve ids de tag contra el store de rasgos (solo lectura).
// Ids desconocidos simplemente no aparecen en el mapa.
type TraitLookup interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.TagTrait, error)
}

const defaultMatchWorkers = 8

// Engine orquesta perfil, ajuste, puntaje y explicaciones. No guarda estado mutable:
// puede usarse concurrentemente.
type Engine struct {
	lookup TraitLookup
	logger *zap.Logger
}

// NewEngine crea un Engine. lookup puede ser nil si solo se usan tags anotados.
func NewEngine(lookup TraitLookup, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{lookup: lookup, logger: logger}
}

// MatchInput es un item a puntuar con sus tags sin resolver.
type MatchInput struct {
	ItemID     string
	Attributes domain.ItemAttributes
	Tags       []TagInput
}

// ComputeProfile resuelve los tags y calcula el perfil caracteristico.
func (e *Engine) ComputeProfile(ctx context.Context, tags []TagInput) domain.CharacteristicProfile {
	resolved := e.resolveAll(ctx, tags)
	return CalculateProfile(normalizeTags(tags, resolved))
}

// ScoreItem ajusta el perfil con los atributos del item y calcula el resultado.
func (e *Engine) ScoreItem(attrs domain.ItemAttributes, profile domain.CharacteristicProfile, prefs domain.PreferenceVector) domain.MatchResult {
	start := time.Now()
	result := ScoreItem(attrs, profile, prefs)
	metrics.MatchDuration.Observe(time.Since(start).Seconds())
	metrics.MatchScoresTotal.WithLabelValues(string(result.Confidence), strconv.FormatBool(result.Breakdown.Fallback)).Inc()
	metrics.MatchScoreValue.Observe(float64(result.Score))
	return result
}

// Match ejecuta el pipeline completo para un item.
func (e *Engine) Match(ctx context.Context, in MatchInput, prefs domain.PreferenceVector) domain.MatchResult {
	profile := e.ComputeProfile(ctx, in.Tags)
	result := e.ScoreItem(in.Attributes, profile, prefs)
	result.ItemID = in.ItemID
	return result
}

// MatchBatch puntua varios items en paralelo. Los ids de todos los items se resuelven
// en una sola consulta; el resultado conserva el orden de entrada.
func (e *Engine) MatchBatch(ctx context.Context, inputs []MatchInput, prefs domain.PreferenceVector, workers int) ([]domain.MatchResult, error) {
	if workers <= 0 {
		workers = defaultMatchWorkers
	}
	var all []TagInput
	for _, in := range inputs {
		all = append(all, in.Tags...)
	}
	resolved := e.resolveAll(ctx, all)

	results := make([]domain.MatchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profile := CalculateProfile(normalizeTags(in.Tags, resolved))
			result := e.ScoreItem(in.Attributes, profile, prefs)
			result.ItemID = in.ItemID
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveAll busca en el store los TagRef de la lista. Un error del store se registra
// y se conserva lo que haya resuelto; sin resultado parcial la resolucion queda vacia.
func (e *Engine) resolveAll(ctx context.Context, tags []TagInput) map[int64]domain.TagTrait {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, t := range tags {
		ref, ok := t.(TagRef)
		if !ok {
			continue
		}
		id := int64(ref)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}
	if e.lookup == nil {
		e.logger.Warn("tag refs received without trait lookup", zap.Int("count", len(ids)))
		return nil
	}
	found, err := e.lookup.FindByIDs(ctx, ids)
	if err != nil {
		e.logger.Warn("tag trait lookup failed",
			zap.Error(err),
			zap.Int("count", len(ids)),
			zap.Int("resolved", len(found)),
		)
	}
	if len(found) < len(ids) {
		e.logger.Debug("unresolved tag ids", zap.Int("requested", len(ids)), zap.Int("resolved", len(found)))
	}
	return found
}

// normalizeTags lleva la entrada mixta a una sola forma. Cada tag cuenta una vez.
func normalizeTags(tags []TagInput, resolved map[int64]domain.TagTrait) []domain.TagTrait {
	out := make([]domain.TagTrait, 0, len(tags))
	seen := make(map[int64]struct{}, len(tags))
	for _, t := range tags {
		var trait domain.TagTrait
		switch v := t.(type) {
		case TagRef:
			found, ok := resolved[int64(v)]
			if !ok {
				continue
			}
			trait = found
		case AnnotatedTag:
			trait = v.Trait()
		case *AnnotatedTag:
			if v == nil {
				continue
			}
			trait = v.Trait()
		default:
			continue
		}
		if _, dup := seen[trait.TagID]; dup {
			continue
		}
		seen[trait.TagID] = struct{}{}
		out = append(out, trait)
	}
	return out
}
