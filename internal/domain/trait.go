package domain

import "math"

// Dimension identifica uno de los seis ejes 0-100 compartidos por items y viajeros.
type Dimension int

const (
	DimensionAdventure Dimension = iota
	DimensionRelaxationVsExploration
	DimensionGroupIntimacy
	DimensionPriceComfort
	DimensionGuidance
	DimensionFoodAndDrink
)

// Dimensions lista los ejes en orden estable.
var Dimensions = []Dimension{
	DimensionAdventure,
	DimensionRelaxationVsExploration,
	DimensionGroupIntimacy,
	DimensionPriceComfort,
	DimensionGuidance,
	DimensionFoodAndDrink,
}

func (d Dimension) String() string {
	switch d {
	case DimensionAdventure:
		return "adventure"
	case DimensionRelaxationVsExploration:
		return "relaxation_vs_exploration"
	case DimensionGroupIntimacy:
		return "group_intimacy"
	case DimensionPriceComfort:
		return "price_comfort"
	case DimensionGuidance:
		return "guidance"
	case DimensionFoodAndDrink:
		return "food_and_drink"
	default:
		return "unknown"
	}
}

// TraitScores agrupa los seis ejes. Se usa tanto para tags como para perfiles y preferencias.
type TraitScores struct {
	Adventure               int `json:"adventure"`
	RelaxationVsExploration int `json:"relaxation_vs_exploration"`
	GroupIntimacy           int `json:"group_intimacy"`
	PriceComfort            int `json:"price_comfort"`
	Guidance                int `json:"guidance"`
	FoodAndDrink            int `json:"food_and_drink"`
}

// NeutralTraitScores devuelve todos los ejes en 50.
func NeutralTraitScores() TraitScores {
	return TraitScores{
		Adventure:               50,
		RelaxationVsExploration: 50,
		GroupIntimacy:           50,
		PriceComfort:            50,
		Guidance:                50,
		FoodAndDrink:            50,
	}
}

// Get devuelve el valor de un eje.
func (t TraitScores) Get(d Dimension) int {
	switch d {
	case DimensionAdventure:
		return t.Adventure
	case DimensionRelaxationVsExploration:
		return t.RelaxationVsExploration
	case DimensionGroupIntimacy:
		return t.GroupIntimacy
	case DimensionPriceComfort:
		return t.PriceComfort
	case DimensionGuidance:
		return t.Guidance
	case DimensionFoodAndDrink:
		return t.FoodAndDrink
	default:
		return 0
	}
}

// Set asigna el valor de un eje.
func (t *TraitScores) Set(d Dimension, v int) {
	switch d {
	case DimensionAdventure:
		t.Adventure = v
	case DimensionRelaxationVsExploration:
		t.RelaxationVsExploration = v
	case DimensionGroupIntimacy:
		t.GroupIntimacy = v
	case DimensionPriceComfort:
		t.PriceComfort = v
	case DimensionGuidance:
		t.Guidance = v
	case DimensionFoodAndDrink:
		t.FoodAndDrink = v
	}
}

// Clamped devuelve una copia con cada eje limitado a [0,100].
func (t TraitScores) Clamped() TraitScores {
	out := t
	for _, d := range Dimensions {
		out.Set(d, ClampScore(t.Get(d)))
	}
	return out
}

// Vector expone los ejes como float32 en orden de Dimensions (para pgvector).
func (t TraitScores) Vector() []float32 {
	out := make([]float32, len(Dimensions))
	for i, d := range Dimensions {
		out[i] = float32(t.Get(d))
	}
	return out
}

// TraitScoresFromVector reconstruye los ejes desde un vector en orden de Dimensions.
// Valores faltantes quedan en 50.
func TraitScoresFromVector(v []float32) TraitScores {
	out := NeutralTraitScores()
	for i, d := range Dimensions {
		if i >= len(v) {
			break
		}
		f := float64(v[i])
		if math.IsNaN(f) {
			continue
		}
		out.Set(d, ScoreFromFloat(f))
	}
	return out
}

// ScoreFromFloat limita en float antes de redondear; un int64 desbordado cambiaria de polo.
func ScoreFromFloat(f float64) int {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(math.Round(f))
}

// ClampScore limita un valor a [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// TagTrait es el dato de referencia de un tag: seis rasgos y cuan definitorio es.
type TagTrait struct {
	TagID     int64       `json:"tag_id"`
	TagName   string      `json:"tag_name"`
	Traits    TraitScores `json:"traits"`
	TagWeight float64     `json:"tag_weight"`
}

// TagSummary identifica un tag que contribuyo a un perfil.
type TagSummary struct {
	TagID   int64  `json:"tag_id"`
	TagName string `json:"tag_name"`
}
