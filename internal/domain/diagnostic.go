package domain

import "time"

// Niveles de riesgo derivados del puntaje total.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// EventSnapshot es una copia puntual de un evento al momento de evaluar.
// Ediciones posteriores del catálogo no alteran resultados históricos.
type EventSnapshot struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	Points    int    `json:"points"`
	Category  string `json:"category"`
}

// DiagnosticResult es un resultado Holmes-Rahe persistido. Inmutable una vez
// creado: un nuevo cuestionario produce un resultado nuevo.
type DiagnosticResult struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	SelectedEvents  []EventSnapshot `json:"selectedEvents"`
	TotalScore      int             `json:"totalScore"`
	RiskLevel       RiskLevel       `json:"riskLevel"`
	Recommendations []string        `json:"recommendations"`
	CompletedAt     time.Time       `json:"completedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}
