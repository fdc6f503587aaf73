package matching

import (
	"math"
	"sort"

	"travel-match/internal/domain"
)

const (
	// maxContributingTags limita el perfil a los tags mas definitorios.
	maxContributingTags = 6
	// highConfidenceVariance es la varianza media maxima para confianza alta.
	highConfidenceVariance = 300.0
	// highConfidenceMinTags es el minimo de tags para confianza alta.
	highConfidenceMinTags = 4
)

// CalculateProfile reduce los tags resueltos de un item a un perfil de seis ejes.
// Sin tags devuelve el perfil por defecto (todo 50, confianza baja).
func CalculateProfile(tags []domain.TagTrait) domain.CharacteristicProfile {
	if len(tags) == 0 {
		return domain.DefaultProfile()
	}

	sorted := make([]domain.TagTrait, len(tags))
	for i, t := range tags {
		t.TagWeight = sanitizeWeight(t.TagWeight)
		t.Traits = t.Traits.Clamped()
		sorted[i] = t
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TagWeight > sorted[j].TagWeight
	})

	kept := sorted
	if len(kept) > maxContributingTags {
		kept = kept[:maxContributingTags]
	}

	totalWeight := 0.0
	for _, t := range kept {
		totalWeight += t.TagWeight
	}
	uniform := totalWeight <= 0

	var traits domain.TraitScores
	for _, d := range domain.Dimensions {
		sum, weights := 0.0, 0.0
		for _, t := range kept {
			w := t.TagWeight
			if uniform {
				w = 1
			}
			sum += float64(t.Traits.Get(d)) * w
			weights += w
		}
		traits.Set(d, domain.ScoreFromFloat(sum/weights))
	}

	contributing := make([]domain.TagSummary, 0, len(kept))
	for _, t := range kept {
		contributing = append(contributing, domain.TagSummary{TagID: t.TagID, TagName: t.TagName})
	}

	return domain.CharacteristicProfile{
		Traits:           traits,
		Confidence:       profileConfidence(kept),
		ContributingTags: contributing,
		TagCount:         len(tags),
	}
}

// profileConfidence premia tanto mas tags como tags mas consistentes entre si.
func profileConfidence(kept []domain.TagTrait) domain.Confidence {
	switch n := len(kept); {
	case n <= 1:
		return domain.ConfidenceLow
	case n == 2:
		return domain.ConfidenceMedium
	}
	if len(kept) >= highConfidenceMinTags && averageVariance(kept) < highConfidenceVariance {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMedium
}

// averageVariance es la varianza poblacional de cada eje promediada sobre los seis ejes.
func averageVariance(tags []domain.TagTrait) float64 {
	if len(tags) == 0 {
		return 0
	}
	n := float64(len(tags))
	total := 0.0
	for _, d := range domain.Dimensions {
		mean := 0.0
		for _, t := range tags {
			mean += float64(t.Traits.Get(d))
		}
		mean /= n
		variance := 0.0
		for _, t := range tags {
			diff := float64(t.Traits.Get(d)) - mean
			variance += diff * diff
		}
		total += variance / n
	}
	return total / float64(len(domain.Dimensions))
}

func sanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}
