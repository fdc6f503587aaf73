package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flags conocidos del inventario.
const (
	FlagPrivateTour          = "PRIVATE_TOUR"
	FlagFreeCancellation     = "FREE_CANCELLATION"
	FlagInstantConfirmation  = "INSTANT_CONFIRMATION"
	FlagMobileTicket         = "MOBILE_TICKET"
	FlagSkipTheLine          = "SKIP_THE_LINE"
	FlagWheelchairAccessible = "WHEELCHAIR_ACCESSIBLE"
)

// ItineraryType distingue actividades guiadas de tours autoguiados.
type ItineraryType string

const (
	ItineraryActivity ItineraryType = "ACTIVITY"
	ItineraryTour     ItineraryType = "TOUR"
)

// ItemAttributes son las senales duras de un tour/restaurante usadas para ajustar y puntuar.
type ItemAttributes struct {
	Flags                     []string      `json:"flags"`
	DurationMinutes           *int          `json:"duration_minutes,omitempty"`
	ItineraryType             ItineraryType `json:"itinerary_type,omitempty"`
	ConfirmationType          string        `json:"confirmation_type,omitempty"`
	Price                     *float64      `json:"price,omitempty"`
	Title                     string        `json:"title"`
	Description               string        `json:"description"`
	Rating                    *float64      `json:"rating,omitempty"`
	ReviewCount               int           `json:"review_count"`
	HasThirdPartyReviewSource bool          `json:"has_third_party_review_source"`
}

// HasFlag compara sin distinguir mayusculas.
func (a ItemAttributes) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if strings.EqualFold(strings.TrimSpace(f), flag) {
			return true
		}
	}
	return false
}

// Text devuelve titulo + descripcion en minusculas.
func (a ItemAttributes) Text() string {
	return strings.ToLower(a.Title + " " + a.Description)
}

// CatalogItem es un tour o restaurante del catalogo con sus tags.
type CatalogItem struct {
	ID         uuid.UUID      `json:"id"`
	Kind       string         `json:"kind"`
	Attributes ItemAttributes `json:"attributes"`
	TagIDs     []int64        `json:"tag_ids"`
}

// ItemProfile es el perfil caracteristico persistido de un item, usado para
// buscar candidatos por cercania antes del puntaje completo.
type ItemProfile struct {
	ItemID     uuid.UUID   `json:"item_id"`
	Traits     TraitScores `json:"traits"`
	Confidence Confidence  `json:"confidence"`
	TagCount   int         `json:"tag_count"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ItemProfileMatch es un candidato devuelto por la busqueda de vecinos.
type ItemProfileMatch struct {
	ItemProfile
	Distance float64 `json:"distance"`
}
