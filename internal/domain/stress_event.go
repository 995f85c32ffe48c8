package domain

import "time"

// Categorías cerradas para eventos de la escala Holmes-Rahe.
const (
	CategoryFamily    = "family"
	CategoryPersonal  = "personal"
	CategoryWork      = "work"
	CategoryFinancial = "financial"
	CategoryHealth    = "health"
	CategorySocial    = "social"
)

// EventCategories lista las categorías válidas en orden de presentación.
var EventCategories = []string{
	CategoryFamily,
	CategoryPersonal,
	CategoryWork,
	CategoryFinancial,
	CategoryHealth,
	CategorySocial,
}

// CategoryLabels mapea cada categoría a su etiqueta visible.
var CategoryLabels = map[string]string{
	CategoryFamily:    "Famille",
	CategoryPersonal:  "Personnel",
	CategoryWork:      "Travail",
	CategoryFinancial: "Finances",
	CategoryHealth:    "Santé",
	CategorySocial:    "Social",
}

// ValidCategory indica si la categoría pertenece al conjunto cerrado.
func ValidCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

// StressEvent es una entrada del catálogo Holmes-Rahe.
// Points siempre está en el rango 1..100.
type StressEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
