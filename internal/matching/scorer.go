package matching

import (
	"math"
	"strings"

	"travel-match/internal/domain"
)

// Pesos de cada bucket en el puntaje final.
const (
	alignmentWeight   = 0.45
	qualityWeight     = 0.25
	priceFitWeight    = 0.15
	convenienceWeight = 0.10
	intentWeight      = 0.05
)

// Escala interna de cada bucket.
const (
	alignmentMax   = 100.0
	qualityMax     = 25.0
	priceFitMax    = 15.0
	convenienceMax = 10.0
	intentMax      = 5.0

	neutralPriceFit = 7.5
	// noTagAlignmentScale reduce la alineacion ya ajustada contra el perfil por defecto:
	// sin tags no hay evidencia, y un viajero neutral queda en la linea base 50.
	noTagAlignmentScale = 0.5
)

// dimensionImportance pondera cada eje en la similitud base.
var dimensionImportance = map[domain.Dimension]float64{
	domain.DimensionAdventure:               1.5,
	domain.DimensionRelaxationVsExploration: 1.2,
	domain.DimensionGroupIntimacy:           1.0,
	domain.DimensionPriceComfort:            1.3,
	domain.DimensionGuidance:                0.8,
	domain.DimensionFoodAndDrink:            0.7,
}

var familyKeywords = []string{"family-friendly", "family", "kids", "children", "all ages"}

// ScoreItem puntua un item contra un viajero. Espera el perfil derivado de tags sin
// ajustar: aplica AdjustProfile internamente, y pasarle un perfil ya ajustado mezclaria
// priceComfort dos veces.
func ScoreItem(attrs domain.ItemAttributes, profile domain.CharacteristicProfile, prefs domain.PreferenceVector) domain.MatchResult {
	item := analyzeItem(attrs)
	prefs.Traits = prefs.Traits.Clamped()

	if profile.TagCount == 0 && len(profile.ContributingTags) == 0 {
		return scoreWithoutTags(item, prefs)
	}

	adjusted := adjustProfile(profile, item)
	breakdown := domain.Breakdown{
		Alignment:   alignmentBucket(adjusted.Traits, prefs.Traits, item),
		Quality:     qualityBucket(item.attrs),
		PriceFit:    priceFitBucket(item, prefs.Traits.PriceComfort),
		Convenience: convenienceBucket(item, prefs.Traits.GroupIntimacy),
		Intent:      intentBucket(item.text, prefs.Traits),
		Profile:     adjusted.Traits,
	}
	breakdown.Alignment.Weighted = breakdown.Alignment.Score / alignmentMax * 100 * alignmentWeight
	breakdown.Quality.Weighted = breakdown.Quality.Score / qualityMax * 100 * qualityWeight
	breakdown.PriceFit.Weighted = breakdown.PriceFit.Score / priceFitMax * 100 * priceFitWeight
	breakdown.Convenience.Weighted = breakdown.Convenience.Score / convenienceMax * 100 * convenienceWeight
	breakdown.Intent.Weighted = breakdown.Intent.Score / intentMax * 100 * intentWeight

	total := breakdown.Alignment.Weighted +
		breakdown.Quality.Weighted +
		breakdown.PriceFit.Weighted +
		breakdown.Convenience.Weighted +
		breakdown.Intent.Weighted

	return domain.MatchResult{
		Score:            roundScore(total),
		Breakdown:        breakdown,
		Confidence:       adjusted.Confidence,
		ContributingTags: adjusted.ContributingTags,
		Explanations:     Explain(breakdown),
	}
}

// scoreWithoutTags usa solo el bucket de alineacion contra el perfil por defecto.
func scoreWithoutTags(item itemSignals, prefs domain.PreferenceVector) domain.MatchResult {
	def := domain.DefaultProfile()
	alignment := alignmentBucket(def.Traits, prefs.Traits, item)
	alignment.Score *= noTagAlignmentScale
	alignment.Weighted = alignment.Score

	breakdown := domain.Breakdown{
		Alignment: alignment,
		Fallback:  true,
		Profile:   def.Traits,
	}
	return domain.MatchResult{
		Score:            roundScore(alignment.Score),
		Breakdown:        breakdown,
		Confidence:       def.Confidence,
		ContributingTags: def.ContributingTags,
		Explanations:     Explain(breakdown),
	}
}

// AlignmentBase es la similitud ponderada entre perfil y preferencias (0-100), sin ajustes.
func AlignmentBase(profile, prefs domain.TraitScores) float64 {
	sum, weights := 0.0, 0.0
	for _, d := range domain.Dimensions {
		w := dimensionImportance[d]
		similarity := 100 - math.Abs(float64(profile.Get(d)-prefs.Get(d)))
		sum += similarity * w
		weights += w
	}
	return sum / weights
}

func alignmentBucket(profile, prefs domain.TraitScores, item itemSignals) domain.AlignmentBucket {
	b := domain.AlignmentBucket{
		Base:                AlignmentBase(profile, prefs),
		FlagAdjustment:      privateFlagAdjustment(item, prefs.GroupIntimacy),
		DurationAdjustment:  durationAdjustment(item.attrs.DurationMinutes, prefs),
		ItineraryAdjustment: itineraryAdjustment(item.attrs.ItineraryType, prefs.Guidance),
		FeatureAdjustment:   featureAdjustment(item.attrs),
		FamilyAdjustment:    familyAdjustment(item.text, prefs.GroupIntimacy),
	}
	b.Score = clampFloat(b.Base+alignmentAdjustments(b), 0, alignmentMax)
	return b
}

func alignmentAdjustments(b domain.AlignmentBucket) float64 {
	return b.FlagAdjustment + b.DurationAdjustment + b.ItineraryAdjustment + b.FeatureAdjustment + b.FamilyAdjustment
}

func privateFlagAdjustment(item itemSignals, groupIntimacy int) float64 {
	if !item.private {
		return 0
	}
	switch {
	case groupIntimacy >= 70:
		return 10
	case groupIntimacy >= 50:
		return 5
	case groupIntimacy <= 30:
		return -5
	}
	return 0
}

func durationAdjustment(duration *int, prefs domain.TraitScores) float64 {
	if duration == nil {
		return 0
	}
	minutes := *duration
	switch {
	case minutes >= 120 && minutes <= 240:
		if prefs.RelaxationVsExploration >= 70 {
			return 3
		}
	case minutes >= 360 && minutes <= 480:
		if prefs.Adventure >= 70 {
			return 3
		}
	case minutes > 480:
		if prefs.Adventure >= 80 {
			return 5
		}
		if prefs.Adventure <= 30 {
			return -3
		}
	}
	return 0
}

func itineraryAdjustment(kind domain.ItineraryType, guidance int) float64 {
	switch kind {
	case domain.ItineraryActivity:
		if guidance >= 70 {
			return 2
		}
		if guidance <= 30 {
			return -1
		}
	case domain.ItineraryTour:
		if guidance <= 30 {
			return 2
		}
		if guidance >= 70 {
			return -1
		}
	}
	return 0
}

func featureAdjustment(attrs domain.ItemAttributes) float64 {
	bonus := 0.0
	for _, flag := range []string{domain.FlagMobileTicket, domain.FlagSkipTheLine, domain.FlagWheelchairAccessible} {
		if attrs.HasFlag(flag) {
			bonus++
		}
	}
	return bonus
}

func familyAdjustment(text string, groupIntimacy int) float64 {
	if !containsAny(text, familyKeywords) {
		return 0
	}
	switch {
	case groupIntimacy >= 40 && groupIntimacy <= 60:
		return 2
	case groupIntimacy >= 25 && groupIntimacy < 35:
		return 1
	}
	return 0
}

func qualityBucket(attrs domain.ItemAttributes) domain.QualityBucket {
	b := domain.QualityBucket{ReviewCount: attrs.ReviewCount}
	if attrs.Rating != nil && !math.IsNaN(*attrs.Rating) && !math.IsInf(*attrs.Rating, 0) {
		rating := clampFloat(*attrs.Rating, 0, 5)
		b.Rating = &rating
		b.RatingScore = clampFloat(math.Max(0, rating-4.0)*15, 0, 15)
	}

	reviews := attrs.ReviewCount
	if reviews < 0 {
		reviews = 0
		b.ReviewCount = 0
	}
	lg := math.Log10(float64(reviews) + 1)
	switch {
	case lg >= 4:
		b.ReviewCountScore = 10
	case lg >= 3:
		b.ReviewCountScore = 5 + (lg-3)*3
	case lg >= 2:
		b.ReviewCountScore = 2 + (lg-2)*3
	case lg >= 1:
		b.ReviewCountScore = lg * 2
	}

	if attrs.HasThirdPartyReviewSource {
		b.ThirdPartyBonus = 2
	}
	b.Score = clampFloat(b.RatingScore+b.ReviewCountScore+b.ThirdPartyBonus, 0, qualityMax)
	return b
}

// budgetBand es un rango de precios ideal para un nivel de comodidad.
type budgetBand struct {
	key   int
	min   float64
	max   float64
	ideal float64
}

var budgetBands = []budgetBand{
	{key: 25, min: 0, max: 50, ideal: 25},
	{key: 50, min: 25, max: 150, ideal: 75},
	{key: 75, min: 100, max: 300, ideal: 200},
	{key: 85, min: 250, max: 10000, ideal: 500},
}

// selectBudgetBand elige la banda con clave mas cercana; en empate gana la menor.
func selectBudgetBand(priceComfort int) budgetBand {
	best := budgetBands[0]
	for _, band := range budgetBands[1:] {
		if absInt(priceComfort-band.key) < absInt(priceComfort-best.key) {
			best = band
		}
	}
	return best
}

func priceFitBucket(item itemSignals, priceComfort int) domain.PriceFitBucket {
	band := selectBudgetBand(priceComfort)
	b := domain.PriceFitBucket{
		BandKey: band.key,
		BandMin: band.min,
		BandMax: band.max,
		Ideal:   band.ideal,
	}
	if !item.hasPrice {
		b.Position = "unknown"
		b.Score = neutralPriceFit
		return b
	}

	price := item.price
	b.Price = &price
	switch {
	case price < band.min:
		b.Position = "below"
		if band.min > 0 {
			b.Score = 10 * price / band.min
		}
	case price > band.max:
		b.Position = "above"
		ratio := price / band.max
		switch {
		case ratio > 5:
			b.Score = math.Max(0, 2-(ratio-5)*0.5)
		case ratio > 2:
			b.Score = 3 * band.max / price
		default:
			b.Score = 8 * band.max / price
		}
	default:
		b.Position = "within"
		b.Score = 15 * (1 - math.Abs(price-band.ideal)/(band.max-band.min))
	}
	b.Score = clampFloat(b.Score, 0, priceFitMax)
	return b
}

func convenienceBucket(item itemSignals, groupIntimacy int) domain.ConvenienceBucket {
	b := domain.ConvenienceBucket{
		FreeCancellation: item.attrs.HasFlag(domain.FlagFreeCancellation),
		InstantConfirmation: item.attrs.HasFlag(domain.FlagInstantConfirmation) ||
			strings.EqualFold(strings.TrimSpace(item.attrs.ConfirmationType), "INSTANT"),
		PrivateTourBonus: item.private && groupIntimacy >= 70,
	}
	if b.FreeCancellation {
		b.Score += 3
	}
	if b.InstantConfirmation {
		b.Score += 3
	}
	if b.PrivateTourBonus {
		b.Score += 2
	}
	b.Score = clampFloat(b.Score, 0, convenienceMax)
	return b
}

func roundScore(v float64) int {
	return domain.ScoreFromFloat(v)
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
