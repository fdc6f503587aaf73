package matching

import "travel-match/internal/domain"

var (
	adventureKeywords = []string{"adventure", "hiking", "trek", "climb", "rafting", "zipline", "zip line", "kayak", "diving", "snorkel", "off-road", "canyon", "safari"}
	relaxedKeywords   = []string{"relax", "spa", "leisurely", "scenic", "sunset", "beach", "cruise", "wellness", "gentle", "tranquil"}
	privateKeywords   = []string{"private", "exclusive", "intimate", "small group", "small-group", "personalized"}
	groupKeywords     = []string{"group", "party", "shared", "social", "pub crawl"}
	luxuryKeywords    = []string{"luxury", "premium", "vip", "gourmet", "first-class", "champagne", "five-star", "5-star"}
	budgetKeywords    = []string{"budget", "affordable", "cheap", "value", "discount", "low-cost"}
	ecoKeywords       = []string{"eco", "sustainable", "local", "community", "organic", "farm"}
)

// intentRule suma puntos cuando el texto contiene alguna palabra de la categoria
// y la preferencia asociada esta lejos del neutro.
type intentRule struct {
	keywords []string
	points   float64
	gate     func(prefs domain.TraitScores) bool
}

var intentRules = []intentRule{
	{keywords: adventureKeywords, points: 2, gate: func(p domain.TraitScores) bool { return p.Adventure >= 70 }},
	{keywords: relaxedKeywords, points: 2, gate: func(p domain.TraitScores) bool { return p.Adventure <= 30 }},
	{keywords: privateKeywords, points: 1.5, gate: func(p domain.TraitScores) bool { return p.GroupIntimacy >= 70 }},
	{keywords: groupKeywords, points: 1.5, gate: func(p domain.TraitScores) bool { return p.GroupIntimacy <= 30 }},
	{keywords: luxuryKeywords, points: 1, gate: func(p domain.TraitScores) bool { return p.PriceComfort >= 75 }},
	{keywords: budgetKeywords, points: 1, gate: func(p domain.TraitScores) bool { return p.PriceComfort <= 25 }},
	{keywords: ecoKeywords, points: 0.5},
}

func intentBucket(text string, prefs domain.TraitScores) domain.IntentBucket {
	b := domain.IntentBucket{MatchedKeywords: []string{}}
	for _, rule := range intentRules {
		if rule.gate != nil && !rule.gate(prefs) {
			continue
		}
		kw, ok := firstMatch(text, rule.keywords)
		if !ok {
			continue
		}
		b.Score += rule.points
		b.MatchedKeywords = append(b.MatchedKeywords, kw)
	}
	b.Score = clampFloat(b.Score, 0, intentMax)
	return b
}
