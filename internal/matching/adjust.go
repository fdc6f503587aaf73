package matching

import (
	"math"

	"travel-match/internal/domain"
)

const (
	privateGroupIntimacy = 75
	luxuryPriceThreshold = 300.0
	luxuryPriceComfort   = 85
	priceBlendTenths     = 6
)

// Adjustment corrige un eje del perfil usando atributos duros del item.
// Las reglas posteriores leen la salida de las anteriores.
type Adjustment struct {
	Name  string
	Apply func(traits *domain.TraitScores, item itemSignals)
}

// adjustmentPipeline se aplica en este orden exacto.
var adjustmentPipeline = []Adjustment{
	{Name: "private_tour", Apply: adjustPrivateTour},
	{Name: "price_comfort", Apply: adjustPriceComfort},
}

// AdjustProfile corrige un perfil derivado de tags con los atributos del item.
// No es idempotente: la mezcla de priceComfort se aplica sobre el valor recibido.
func AdjustProfile(profile domain.CharacteristicProfile, attrs domain.ItemAttributes) domain.CharacteristicProfile {
	return adjustProfile(profile, analyzeItem(attrs))
}

func adjustProfile(profile domain.CharacteristicProfile, item itemSignals) domain.CharacteristicProfile {
	out := profile
	out.ContributingTags = append([]domain.TagSummary(nil), profile.ContributingTags...)
	traits := profile.Traits
	for _, adj := range adjustmentPipeline {
		adj.Apply(&traits, item)
	}
	out.Traits = traits.Clamped()
	return out
}

// Un tour privado siempre cuenta como grupo pequeno, sin importar los tags.
func adjustPrivateTour(traits *domain.TraitScores, item itemSignals) {
	if item.private {
		traits.GroupIntimacy = privateGroupIntimacy
	}
}

// El tramo superior reemplaza sin mezclar; los demas mezclan 60/40 con el valor de tags.
func adjustPriceComfort(traits *domain.TraitScores, item itemSignals) {
	if !item.hasPrice {
		return
	}
	var target float64
	switch p := item.price; {
	case p >= luxuryPriceThreshold:
		traits.PriceComfort = luxuryPriceComfort
		return
	case p >= 150:
		target = 75
	case p >= 50:
		target = 50
	default:
		target = 25
	}
	// 60% precio, 40% tags; en decimos para evitar error de redondeo.
	blended := (target*priceBlendTenths + float64(traits.PriceComfort)*(10-priceBlendTenths)) / 10
	traits.PriceComfort = int(math.Round(blended))
}
