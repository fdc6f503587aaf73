package matching

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"travel-match/internal/domain"
)

// preferenceField enlaza un campo guardado del viajero con su eje.
type preferenceField struct {
	name      string
	snakeName string
	dimension domain.Dimension
}

var preferenceFields = []preferenceField{
	{name: "adventureLevel", snakeName: "adventure_level", dimension: domain.DimensionAdventure},
	{name: "cultureVsBeach", snakeName: "culture_vs_beach", dimension: domain.DimensionRelaxationVsExploration},
	{name: "groupPreference", snakeName: "group_preference", dimension: domain.DimensionGroupIntimacy},
	{name: "budgetComfort", snakeName: "budget_comfort", dimension: domain.DimensionPriceComfort},
	{name: "structurePreference", snakeName: "structure_preference", dimension: domain.DimensionGuidance},
	{name: "foodAndDrinkInterest", snakeName: "food_and_drink_interest", dimension: domain.DimensionFoodAndDrink},
}

// PreferencesFromStored mapea las preferencias guardadas al vector; campos nil quedan en 50.
func PreferencesFromStored(p domain.TravelerPreferences) domain.PreferenceVector {
	values := map[domain.Dimension]*int{
		domain.DimensionAdventure:               p.AdventureLevel,
		domain.DimensionRelaxationVsExploration: p.CultureVsBeach,
		domain.DimensionGroupIntimacy:           p.GroupPreference,
		domain.DimensionPriceComfort:            p.BudgetComfort,
		domain.DimensionGuidance:                p.StructurePreference,
		domain.DimensionFoodAndDrink:            p.FoodAndDrinkInterest,
	}
	vec := domain.NeutralPreferences()
	for d, v := range values {
		if v != nil {
			vec.Traits.Set(d, domain.ClampScore(*v))
		}
	}
	return vec
}

// MapPreferences mapea campos crudos (p.ej. un JSONB) al vector de preferencias.
// Valores ausentes o nil quedan en 50; valores no numericos son un ValidationError.
func MapPreferences(raw map[string]any) (domain.PreferenceVector, error) {
	vec := domain.NeutralPreferences()
	for _, f := range preferenceFields {
		v, ok := raw[f.name]
		if !ok {
			v, ok = raw[f.snakeName]
		}
		if !ok || v == nil {
			continue
		}
		n, present, err := coercePreference(v)
		if err != nil {
			return domain.PreferenceVector{}, invalid(f.name, "%s", err.Error())
		}
		if present {
			vec.Traits.Set(f.dimension, n)
		}
	}
	return vec, nil
}

var (
	errNotNumber = errors.New("not a number")
	errNotFinite = errors.New("must be finite")
)

func coercePreference(v any) (int, bool, error) {
	var f float64
	switch x := v.(type) {
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case *int:
		if x == nil {
			return 0, false, nil
		}
		f = float64(*x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false, errNotNumber
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, errNotNumber
		}
		f = parsed
	default:
		return 0, false, errNotNumber
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, errNotFinite
	}
	return domain.ScoreFromFloat(f), true, nil
}
