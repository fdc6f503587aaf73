package domain

import "time"

// TravelerPreferences refleja las respuestas de onboarding guardadas (0-100, nil = sin responder).
// Polaridad:
//   - CultureVsBeach: bajo = relax/playa, alto = explorar/cultura
//   - GroupPreference: bajo = grupos grandes ok, alto = privado/pequeno
//   - BudgetComfort: bajo = presupuesto primero, alto = comodidad primero
//   - StructurePreference: bajo = tiempo libre, alto = todo guiado
type TravelerPreferences struct {
	TravelerID           string    `json:"traveler_id"`
	AdventureLevel       *int      `json:"adventureLevel,omitempty"`
	CultureVsBeach       *int      `json:"cultureVsBeach,omitempty"`
	GroupPreference      *int      `json:"groupPreference,omitempty"`
	BudgetComfort        *int      `json:"budgetComfort,omitempty"`
	StructurePreference  *int      `json:"structurePreference,omitempty"`
	FoodAndDrinkInterest *int      `json:"foodAndDrinkInterest,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}
