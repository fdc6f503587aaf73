package domain

// Confidence describe cuanta evidencia de tags respalda un perfil.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// CharacteristicProfile es la posicion de un item en los seis ejes.
type CharacteristicProfile struct {
	Traits           TraitScores  `json:"traits"`
	Confidence       Confidence   `json:"confidence"`
	ContributingTags []TagSummary `json:"contributing_tags"`
	TagCount         int          `json:"tag_count"`
}

// DefaultProfile es el perfil sin evidencia: todo en 50, confianza baja.
func DefaultProfile() CharacteristicProfile {
	return CharacteristicProfile{
		Traits:           NeutralTraitScores(),
		Confidence:       ConfidenceLow,
		ContributingTags: []TagSummary{},
		TagCount:         0,
	}
}

// PreferenceVector es la posicion de un viajero en los mismos seis ejes.
type PreferenceVector struct {
	Traits TraitScores `json:"traits"`
}

// NeutralPreferences devuelve un vector sin preferencia en ningun eje.
func NeutralPreferences() PreferenceVector {
	return PreferenceVector{Traits: NeutralTraitScores()}
}
