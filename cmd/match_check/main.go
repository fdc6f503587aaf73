package main

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"go.uber.org/zap"

	"travel-match/internal/domain"
	"travel-match/internal/matching"
)

type Scenario struct {
	Name string
	Run  func(ctx context.Context, engine *matching.Engine) (bool, string)
}

// memoryLookup es un store de rasgos fijo para correr sin base de datos.
type memoryLookup map[int64]domain.TagTrait

func (m memoryLookup) FindByIDs(_ context.Context, ids []int64) (map[int64]domain.TagTrait, error) {
	out := make(map[int64]domain.TagTrait, len(ids))
	for _, id := range ids {
		if t, ok := m[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

var catalogTraits = memoryLookup{
	1: {TagID: 1, TagName: "hiking", TagWeight: 2.0, Traits: domain.TraitScores{Adventure: 90, RelaxationVsExploration: 85, GroupIntimacy: 45, PriceComfort: 35, Guidance: 55, FoodAndDrink: 25}},
	2: {TagID: 2, TagName: "spa", TagWeight: 1.8, Traits: domain.TraitScores{Adventure: 5, RelaxationVsExploration: 10, GroupIntimacy: 65, PriceComfort: 80, Guidance: 40, FoodAndDrink: 45}},
	3: {TagID: 3, TagName: "walking tour", TagWeight: 1.0, Traits: domain.NeutralTraitScores()},
	4: {TagID: 4, TagName: "pub crawl", TagWeight: 1.2, Traits: domain.TraitScores{Adventure: 45, RelaxationVsExploration: 60, GroupIntimacy: 10, PriceComfort: 25, Guidance: 70, FoodAndDrink: 85}},
	5: {TagID: 5, TagName: "sailing", TagWeight: 1.5, Traits: domain.TraitScores{Adventure: 60, RelaxationVsExploration: 40, GroupIntimacy: 10, PriceComfort: 30, Guidance: 60, FoodAndDrink: 40}},
}

func floatPtr(v float64) *float64 { return &v }

func main() {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	engine := matching.NewEngine(catalogTraits, logger)

	scenarios := []Scenario{
		{
			Name: "Sin evidencia, viajero neutral",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				r := e.Match(ctx, matching.MatchInput{ItemID: "empty"}, domain.NeutralPreferences())
				return r.Score == 50 && r.Breakdown.Fallback, fmt.Sprintf("score=%d fallback=%t", r.Score, r.Breakdown.Fallback)
			},
		},
		{
			Name: "Tags desconocidos equivalen a perfil por defecto",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				p := e.ComputeProfile(ctx, []matching.TagInput{matching.TagRef(404), matching.TagRef(405)})
				return reflect.DeepEqual(p, domain.DefaultProfile()), fmt.Sprintf("profile=%+v", p)
			},
		},
		{
			Name: "Agregacion ponderada",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				r := e.Match(ctx, matching.MatchInput{
					ItemID:     "walk",
					Tags:       []matching.TagInput{matching.TagRef(3)},
					Attributes: domain.ItemAttributes{Flags: []string{domain.FlagFreeCancellation}, Price: floatPtr(75)},
				}, domain.NeutralPreferences())
				return r.Score == 63, fmt.Sprintf("score=%d explanations=%v", r.Score, r.Explanations)
			},
		},
		{
			Name: "Tour privado fuerza intimidad de grupo",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				prefs := domain.NeutralPreferences()
				prefs.Traits.GroupIntimacy = 80
				r := e.Match(ctx, matching.MatchInput{
					ItemID:     "yacht",
					Tags:       []matching.TagInput{matching.TagRef(5)},
					Attributes: domain.ItemAttributes{Title: "Sunset yacht charter"},
				}, prefs)
				ok := r.Breakdown.Profile.GroupIntimacy == 75 && r.Breakdown.Convenience.PrivateTourBonus
				return ok, fmt.Sprintf("group_intimacy=%d private_bonus=%t", r.Breakdown.Profile.GroupIntimacy, r.Breakdown.Convenience.PrivateTourBonus)
			},
		},
		{
			Name: "Precio de lujo sube comodidad",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				r := e.Match(ctx, matching.MatchInput{
					ItemID:     "spa-suite",
					Tags:       []matching.TagInput{matching.TagRef(4)},
					Attributes: domain.ItemAttributes{Price: floatPtr(450)},
				}, domain.NeutralPreferences())
				return r.Breakdown.Profile.PriceComfort == 85, fmt.Sprintf("price_comfort=%d", r.Breakdown.Profile.PriceComfort)
			},
		},
		{
			Name: "Aventurero prefiere trekking sobre spa",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				prefs := domain.NeutralPreferences()
				prefs.Traits.Adventure = 90
				prefs.Traits.RelaxationVsExploration = 85
				results, err := e.MatchBatch(ctx, []matching.MatchInput{
					{ItemID: "spa", Tags: []matching.TagInput{matching.TagRef(2)}},
					{ItemID: "hike", Tags: []matching.TagInput{matching.TagRef(1)}},
				}, prefs, 2)
				if err != nil {
					return false, err.Error()
				}
				return results[1].Score > results[0].Score, fmt.Sprintf("spa=%d hike=%d", results[0].Score, results[1].Score)
			},
		},
		{
			Name: "Resultado determinista",
			Run: func(ctx context.Context, e *matching.Engine) (bool, string) {
				in := matching.MatchInput{
					ItemID:     "mixed",
					Tags:       []matching.TagInput{matching.TagRef(1), matching.TagRef(4), matching.TagRef(3)},
					Attributes: domain.ItemAttributes{Title: "Local food and hiking day", ReviewCount: 320, Rating: floatPtr(4.6)},
				}
				a := e.Match(ctx, in, domain.NeutralPreferences())
				b := e.Match(ctx, in, domain.NeutralPreferences())
				return reflect.DeepEqual(a, b), fmt.Sprintf("score=%d", a.Score)
			},
		},
	}

	passed := 0
	total := len(scenarios)

	for _, sc := range scenarios {
		fmt.Printf("=== Ejecutando: %s ===\n", sc.Name)
		ok, detail := sc.Run(ctx, engine)
		if ok {
			fmt.Printf("✅ PASS [%s] %s\n\n", sc.Name, detail)
			passed++
		} else {
			fmt.Printf("❌ FAIL [%s] %s\n\n", sc.Name, detail)
		}
	}

	fmt.Printf("Tests: %d/%d pasaron\n", passed, total)
	if passed != total {
		os.Exit(1)
	}
	os.Exit(0)
}
