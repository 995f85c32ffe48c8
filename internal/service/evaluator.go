package service

import (
	"errors"
	"time"

	"cesizen/internal/domain"
)

// Umbrales fijos de la escala Holmes-Rahe. 150 y 300 pertenecen al nivel superior.
const (
	riskModerateFloor = 150
	riskHighFloor     = 300
)

var (
	ErrEmptySelection = errors.New("empty event selection")
	ErrUnknownEvent   = errors.New("unknown or inactive event")
)

// Evaluation es el resultado en memoria de evaluar una selección de eventos.
type Evaluation struct {
	TotalScore      int
	RiskLevel       domain.RiskLevel
	Recommendations []string
	SelectedEvents  []domain.EventSnapshot
	CompletedAt     time.Time
}

// Mensajes fijos por nivel de riesgo. Literales y estables: la selección del
// set depende únicamente del nivel, nunca del puntaje.
var (
	lowRiskRecommendations = []string{
		"Votre niveau de stress est faible. Continuez à maintenir un bon équilibre.",
		"Pratiquez des activités de relaxation préventives comme la méditation.",
		"Maintenez des habitudes de vie saines (sommeil, exercice, alimentation).",
	}
	moderateRiskRecommendations = []string{
		"Votre niveau de stress est modéré. Il est recommandé de prendre des mesures préventives.",
		"Intégrez des techniques de gestion du stress dans votre routine quotidienne.",
		"Considérez des exercices de respiration et de relaxation réguliers.",
		"Surveillez votre sommeil et votre alimentation.",
	}
	highRiskRecommendations = []string{
		"Votre niveau de stress est élevé. Il est fortement recommandé de prendre des mesures immédiates.",
		"Consultez un professionnel de la santé mentale.",
		"Pratiquez quotidiennement des techniques de relaxation.",
		"Privilégiez le repos et évitez les sources de stress supplémentaires.",
	}
)

// Evaluate resuelve cada id contra el catálogo activo, suma los puntos y
// clasifica el riesgo. Es una función pura: no hace I/O, no muta el catálogo
// y con la misma entrada produce siempre el mismo resultado.
//
// La validación es todo-o-nada: cualquier id que no resuelva contra un evento
// activo (incluidos los duplicados, que colapsan en el lookup) rechaza la
// evaluación completa. No existe puntaje parcial.
func Evaluate(selectedEventIDs []string, catalog []domain.StressEvent, now time.Time) (Evaluation, error) {
	if len(selectedEventIDs) == 0 {
		return Evaluation{}, ErrEmptySelection
	}

	active := make(map[string]domain.StressEvent, len(catalog))
	for _, event := range catalog {
		if event.IsActive {
			active[event.ID] = event
		}
	}

	snapshots := make([]domain.EventSnapshot, 0, len(selectedEventIDs))
	seen := make(map[string]struct{}, len(selectedEventIDs))
	totalScore := 0
	for _, id := range selectedEventIDs {
		event, ok := active[id]
		if !ok {
			return Evaluation{}, ErrUnknownEvent
		}
		if _, dup := seen[id]; dup {
			return Evaluation{}, ErrUnknownEvent
		}
		seen[id] = struct{}{}
		totalScore += event.Points
		snapshots = append(snapshots, domain.EventSnapshot{
			EventID:   event.ID,
			EventName: event.Name,
			Points:    event.Points,
			Category:  event.Category,
		})
	}

	riskLevel := ClassifyRisk(totalScore)
	return Evaluation{
		TotalScore:      totalScore,
		RiskLevel:       riskLevel,
		Recommendations: Recommendations(riskLevel),
		SelectedEvents:  snapshots,
		CompletedAt:     now,
	}, nil
}

// ClassifyRisk mapea un puntaje total a su nivel de riesgo.
func ClassifyRisk(totalScore int) domain.RiskLevel {
	switch {
	case totalScore < riskModerateFloor:
		return domain.RiskLow
	case totalScore < riskHighFloor:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// Recommendations devuelve una copia del set de mensajes del nivel dado.
func Recommendations(level domain.RiskLevel) []string {
	var src []string
	switch level {
	case domain.RiskLow:
		src = lowRiskRecommendations
	case domain.RiskModerate:
		src = moderateRiskRecommendations
	default:
		src = highRiskRecommendations
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// StressLevelLabel traduce el nivel de riesgo a la etiqueta denormalizada
// guardada en el usuario.
func StressLevelLabel(level domain.RiskLevel) string {
	switch level {
	case domain.RiskLow:
		return "Faible"
	case domain.RiskModerate:
		return "Modéré"
	default:
		return "Élevé"
	}
}
