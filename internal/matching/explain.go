package matching

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"travel-match/internal/domain"
)

const (
	explainAlignmentMin   = 40.0
	explainRatingMin      = 4.5
	explainReviewCountMin = 100
	explainPriceFitMin    = 12.0
	explainMaxKeywords    = 2
)

// Explain deriva razones legibles del breakdown, en el orden de evaluacion de los buckets.
// Es solo informativo; no debe usarse para decidir nada.
func Explain(b domain.Breakdown) []string {
	out := []string{}
	if !b.Fallback && b.Alignment.Weighted >= explainAlignmentMin {
		out = append(out, fmt.Sprintf("Strong match for your travel style (%d%% alignment)", roundScore(b.Alignment.Score)))
	}
	if b.Quality.Rating != nil && *b.Quality.Rating >= explainRatingMin {
		out = append(out, fmt.Sprintf("Highly rated at %.1f stars", *b.Quality.Rating))
	}
	if b.Quality.ReviewCount >= explainReviewCountMin {
		out = append(out, fmt.Sprintf("Trusted by %s reviewers", humanize.Comma(int64(b.Quality.ReviewCount))))
	}
	if b.PriceFit.Score >= explainPriceFitMin {
		out = append(out, "Priced right for your budget")
	}
	if b.Convenience.FreeCancellation {
		out = append(out, "Free cancellation")
	}
	if b.Convenience.InstantConfirmation {
		out = append(out, "Instant confirmation")
	}
	if b.Convenience.PrivateTourBonus {
		out = append(out, "Private experience for your group")
	}
	for i, kw := range b.Intent.MatchedKeywords {
		if i >= explainMaxKeywords {
			break
		}
		out = append(out, fmt.Sprintf("Mentions %q, which fits what you look for", kw))
	}
	return out
}
