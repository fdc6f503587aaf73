package domain

// MatchResult es la salida explicable de puntuar un item contra un viajero.
type MatchResult struct {
	ItemID           string       `json:"item_id,omitempty"`
	Score            int          `json:"score"`
	Breakdown        Breakdown    `json:"breakdown"`
	Confidence       Confidence   `json:"confidence"`
	ContributingTags []TagSummary `json:"contributing_tags"`
	Explanations     []string     `json:"explanations"`
}

// Breakdown guarda los sub-puntajes crudos de cada bucket.
type Breakdown struct {
	Alignment   AlignmentBucket   `json:"alignment"`
	Quality     QualityBucket     `json:"quality"`
	PriceFit    PriceFitBucket    `json:"price_fit"`
	Convenience ConvenienceBucket `json:"convenience"`
	Intent      IntentBucket      `json:"intent"`
	// Fallback indica que el item no tenia tags y solo se uso el bucket de alineacion.
	Fallback bool        `json:"fallback"`
	Profile  TraitScores `json:"profile"`
}

// AlignmentBucket (0-100, peso 45%).
type AlignmentBucket struct {
	Base                float64 `json:"base"`
	FlagAdjustment      float64 `json:"flag_adjustment"`
	DurationAdjustment  float64 `json:"duration_adjustment"`
	ItineraryAdjustment float64 `json:"itinerary_adjustment"`
	FeatureAdjustment   float64 `json:"feature_adjustment"`
	FamilyAdjustment    float64 `json:"family_adjustment"`
	Score               float64 `json:"score"`
	Weighted            float64 `json:"weighted"`
}

// QualityBucket (0-25, peso 25%).
type QualityBucket struct {
	Rating           *float64 `json:"rating,omitempty"`
	ReviewCount      int      `json:"review_count"`
	RatingScore      float64  `json:"rating_score"`
	ReviewCountScore float64  `json:"review_count_score"`
	ThirdPartyBonus  float64  `json:"third_party_bonus"`
	Score            float64  `json:"score"`
	Weighted         float64  `json:"weighted"`
}

// PriceFitBucket (0-15, peso 15%).
type PriceFitBucket struct {
	Price    *float64 `json:"price,omitempty"`
	BandKey  int      `json:"band_key"`
	BandMin  float64  `json:"band_min"`
	BandMax  float64  `json:"band_max"`
	Ideal    float64  `json:"ideal"`
	Position string   `json:"position"`
	Score    float64  `json:"score"`
	Weighted float64  `json:"weighted"`
}

// ConvenienceBucket (0-10, peso 10%).
type ConvenienceBucket struct {
	FreeCancellation    bool    `json:"free_cancellation"`
	InstantConfirmation bool    `json:"instant_confirmation"`
	PrivateTourBonus    bool    `json:"private_tour_bonus"`
	Score               float64 `json:"score"`
	Weighted            float64 `json:"weighted"`
}

// IntentBucket (0-5, peso 5%).
type IntentBucket struct {
	MatchedKeywords []string `json:"matched_keywords"`
	Score           float64  `json:"score"`
	Weighted        float64  `json:"weighted"`
}
