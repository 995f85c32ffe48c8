package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

// DiagnosticService coordina el cuestionario Holmes-Rahe: evaluación,
// persistencia de resultados y administración del catálogo.
type DiagnosticService struct {
	logger  *zap.Logger
	events  repository.StressEventRepository
	results repository.DiagnosticResultRepository
	users   repository.UserRepository
	nowFn   func() time.Time
}

var (
	ErrResultNotFound = errors.New("diagnostic result not found")
	ErrEventNotFound  = errors.New("stress event not found")
	ErrInvalidEvent   = errors.New("invalid stress event")
)

func NewDiagnosticService(
	logger *zap.Logger,
	events repository.StressEventRepository,
	results repository.DiagnosticResultRepository,
	users repository.UserRepository,
) *DiagnosticService {
	return &DiagnosticService{
		logger:  logger,
		events:  events,
		results: results,
		users:   users,
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// CategoryGroup agrupa eventos activos bajo una categoría con su etiqueta.
type CategoryGroup struct {
	Category string               `json:"category"`
	Label    string               `json:"label"`
	Events   []domain.StressEvent `json:"events"`
}

// DiagnosticStats resume los resultados persistidos para el panel admin.
type DiagnosticStats struct {
	TotalResults     int              `json:"totalResults"`
	RiskDistribution RiskDistribution `json:"riskDistribution"`
	AverageScore     float64          `json:"averageScore"`
	RecentResults    int              `json:"recentResults"`
}

type RiskDistribution struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
}

// Submit evalúa la selección del usuario, persiste el resultado y actualiza
// el nivel de stress denormalizado junto al contador de ejercicios.
func (s *DiagnosticService) Submit(ctx context.Context, userID string, selectedEventIDs []string) (domain.DiagnosticResult, error) {
	catalog, err := s.events.ListActive(ctx)
	if err != nil {
		return domain.DiagnosticResult{}, fmt.Errorf("load active catalog: %w", err)
	}

	eval, err := Evaluate(selectedEventIDs, catalog, s.nowFn())
	if err != nil {
		return domain.DiagnosticResult{}, err
	}

	result := domain.DiagnosticResult{
		ID:              uuid.NewString(),
		UserID:          userID,
		SelectedEvents:  eval.SelectedEvents,
		TotalScore:      eval.TotalScore,
		RiskLevel:       eval.RiskLevel,
		Recommendations: eval.Recommendations,
		CompletedAt:     eval.CompletedAt,
		CreatedAt:       eval.CompletedAt,
	}
	if err := s.results.Create(ctx, result); err != nil {
		return domain.DiagnosticResult{}, fmt.Errorf("persist diagnostic result: %w", err)
	}

	if err := s.users.RecordDiagnostic(ctx, userID, StressLevelLabel(eval.RiskLevel)); err != nil {
		// El resultado ya quedó guardado; el campo denormalizado se reintentará
		// en el próximo diagnóstico.
		if s.logger != nil {
			s.logger.Warn("update user stress level failed", zap.Error(err), zap.String("user_id", userID))
		}
	}

	return result, nil
}

// Calculate evalúa una selección anónima. Misma lógica que Submit, sin
// persistencia ni identidad.
func (s *DiagnosticService) Calculate(ctx context.Context, selectedEventIDs []string) (Evaluation, error) {
	catalog, err := s.events.ListActive(ctx)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load active catalog: %w", err)
	}
	return Evaluate(selectedEventIDs, catalog, s.nowFn())
}

// History devuelve los últimos 10 resultados del usuario, del más reciente
// al más antiguo.
func (s *DiagnosticService) History(ctx context.Context, userID string) ([]domain.DiagnosticResult, error) {
	return s.results.ListByUser(ctx, userID, 10)
}

// Latest devuelve el resultado más reciente del usuario.
func (s *DiagnosticService) Latest(ctx context.Context, userID string) (domain.DiagnosticResult, error) {
	result, err := s.results.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DiagnosticResult{}, ErrResultNotFound
		}
		return domain.DiagnosticResult{}, err
	}
	return result, nil
}

// ActiveEvents lista el catálogo activo ordenado por categoría y puntos.
func (s *DiagnosticService) ActiveEvents(ctx context.Context) ([]domain.StressEvent, error) {
	return s.events.ListActive(ctx)
}

// EventsByCategory agrupa el catálogo activo por categoría con etiquetas.
func (s *DiagnosticService) EventsByCategory(ctx context.Context) ([]CategoryGroup, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]domain.StressEvent, len(domain.EventCategories))
	for _, event := range events {
		byCategory[event.Category] = append(byCategory[event.Category], event)
	}

	groups := make([]CategoryGroup, 0, len(domain.EventCategories))
	for _, category := range domain.EventCategories {
		members, ok := byCategory[category]
		if !ok {
			continue
		}
		groups = append(groups, CategoryGroup{
			Category: category,
			Label:    domain.CategoryLabels[category],
			Events:   members,
		})
	}
	return groups, nil
}

// AllEvents lista el catálogo completo, incluidos los inactivos (admin).
func (s *DiagnosticService) AllEvents(ctx context.Context) ([]domain.StressEvent, error) {
	return s.events.ListAll(ctx)
}

// EventInput son los campos editables de un evento del catálogo.
type EventInput struct {
	Name        string
	Description string
	Points      int
	Category    string
	IsActive    bool
}

func validateEventInput(input EventInput) (EventInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" || input.Description == "" {
		return EventInput{}, ErrInvalidEvent
	}
	if input.Points < 1 || input.Points > 100 {
		return EventInput{}, ErrInvalidEvent
	}
	if !domain.ValidCategory(input.Category) {
		return EventInput{}, ErrInvalidEvent
	}
	return input, nil
}

// CreateEvent agrega un evento al catálogo (admin).
func (s *DiagnosticService) CreateEvent(ctx context.Context, input EventInput) (domain.StressEvent, error) {
	input, err := validateEventInput(input)
	if err != nil {
		return domain.StressEvent{}, err
	}
	now := s.nowFn()
	event := domain.StressEvent{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Points:      input.Points,
		Category:    input.Category,
		IsActive:    input.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return domain.StressEvent{}, fmt.Errorf("create stress event: %w", err)
	}
	return event, nil
}

// UpdateEvent reemplaza los campos editables de un evento (admin).
func (s *DiagnosticService) UpdateEvent(ctx context.Context, id string, input EventInput) (domain.StressEvent, error) {
	input, err := validateEventInput(input)
	if err != nil {
		return domain.StressEvent{}, err
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StressEvent{}, ErrEventNotFound
		}
		return domain.StressEvent{}, err
	}
	event.Name = input.Name
	event.Description = input.Description
	event.Points = input.Points
	event.Category = input.Category
	event.IsActive = input.IsActive
	event.UpdatedAt = s.nowFn()
	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StressEvent{}, ErrEventNotFound
		}
		return domain.StressEvent{}, err
	}
	return event, nil
}

// DeleteEvent elimina un evento del catálogo (admin). Los snapshots de
// resultados históricos no se ven afectados.
func (s *DiagnosticService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// Stats agrega la distribución de riesgo para el panel admin.
func (s *DiagnosticService) Stats(ctx context.Context) (DiagnosticStats, error) {
	total, err := s.results.CountAll(ctx)
	if err != nil {
		return DiagnosticStats{}, err
	}
	low, err := s.results.CountByRisk(ctx, domain.RiskLow)
	if err != nil {
		return DiagnosticStats{}, err
	}
	moderate, err := s.results.CountByRisk(ctx, domain.RiskModerate)
	if err != nil {
		return DiagnosticStats{}, err
	}
	high, err := s.results.CountByRisk(ctx, domain.RiskHigh)
	if err != nil {
		return DiagnosticStats{}, err
	}
	avg, err := s.results.AverageScore(ctx)
	if err != nil {
		return DiagnosticStats{}, err
	}
	recent, err := s.results.CountCompletedSince(ctx, s.nowFn().AddDate(0, 0, -30))
	if err != nil {
		return DiagnosticStats{}, err
	}
	return DiagnosticStats{
		TotalResults: total,
		RiskDistribution: RiskDistribution{
			Low:      low,
			Moderate: moderate,
			High:     high,
		},
		AverageScore: avg,
		RecentResults: recent,
	}, nil
}
