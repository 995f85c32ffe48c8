package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"cesizen/internal/domain"
)

type mockEventRepo struct {
	events map[string]domain.StressEvent
	order  []string
}

func newMockEventRepo(events ...domain.StressEvent) *mockEventRepo {
	repo := &mockEventRepo{events: make(map[string]domain.StressEvent)}
	for _, event := range events {
		repo.events[event.ID] = event
		repo.order = append(repo.order, event.ID)
	}
	return repo
}

func (m *mockEventRepo) Create(_ context.Context, event domain.StressEvent) error {
	m.events[event.ID] = event
	m.order = append(m.order, event.ID)
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (domain.StressEvent, error) {
	event, ok := m.events[id]
	if !ok {
		return domain.StressEvent{}, pgx.ErrNoRows
	}
	return event, nil
}

func (m *mockEventRepo) ListActive(_ context.Context) ([]domain.StressEvent, error) {
	var active []domain.StressEvent
	for _, id := range m.order {
		if event := m.events[id]; event.IsActive {
			active = append(active, event)
		}
	}
	return active, nil
}

func (m *mockEventRepo) ListAll(_ context.Context) ([]domain.StressEvent, error) {
	all := make([]domain.StressEvent, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.events[id])
	}
	return all, nil
}

func (m *mockEventRepo) Update(_ context.Context, event domain.StressEvent) error {
	if _, ok := m.events[event.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

type mockResultRepo struct {
	results []domain.DiagnosticResult
}

func (m *mockResultRepo) Create(_ context.Context, result domain.DiagnosticResult) error {
	m.results = append(m.results, result)
	return nil
}

func (m *mockResultRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.DiagnosticResult, error) {
	var mine []domain.DiagnosticResult
	for _, result := range m.results {
		if result.UserID == userID {
			mine = append(mine, result)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CompletedAt.After(mine[j].CompletedAt) })
	if limit > 0 && len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, nil
}

func (m *mockResultRepo) LatestByUser(ctx context.Context, userID string) (domain.DiagnosticResult, error) {
	mine, err := m.ListByUser(ctx, userID, 1)
	if err != nil {
		return domain.DiagnosticResult{}, err
	}
	if len(mine) == 0 {
		return domain.DiagnosticResult{}, pgx.ErrNoRows
	}
	return mine[0], nil
}

func (m *mockResultRepo) CountAll(_ context.Context) (int, error) {
	return len(m.results), nil
}

func (m *mockResultRepo) CountByRisk(_ context.Context, level domain.RiskLevel) (int, error) {
	count := 0
	for _, result := range m.results {
		if result.RiskLevel == level {
			count++
		}
	}
	return count, nil
}

func (m *mockResultRepo) AverageScore(_ context.Context) (float64, error) {
	if len(m.results) == 0 {
		return 0, nil
	}
	sum := 0
	for _, result := range m.results {
		sum += result.TotalScore
	}
	return float64(sum) / float64(len(m.results)), nil
}

func (m *mockResultRepo) CountCompletedSince(_ context.Context, since time.Time) (int, error) {
	count := 0
	for _, result := range m.results {
		if result.CompletedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func catalogFixture() []domain.StressEvent {
	return []domain.StressEvent{
		{ID: "e1", Name: "Décès du conjoint", Description: "Perte de son époux/épouse", Points: 100, Category: domain.CategoryFamily, IsActive: true},
		{ID: "e2", Name: "Divorce", Description: "Séparation légale définitive", Points: 73, Category: domain.CategoryFamily, IsActive: true},
		{ID: "e3", Name: "Licenciement", Description: "Perte d'emploi involontaire", Points: 47, Category: domain.CategoryWork, IsActive: true},
		{ID: "e4", Name: "Vacances", Description: "Période de congés", Points: 13, Category: domain.CategorySocial, IsActive: false},
	}
}

func newTestDiagnosticService(events *mockEventRepo, results *mockResultRepo, users *mockUserRepo) *DiagnosticService {
	return NewDiagnosticService(zap.NewNop(), events, results, users)
}

func TestDiagnosticServiceSubmit(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	if err := users.Create(context.Background(), domain.User{ID: "u1", Email: "user@example.com", StressLevel: domain.DefaultStressLevel}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	svc := newTestDiagnosticService(events, results, users)

	result, err := svc.Submit(context.Background(), "u1", []string{"e1", "e2"})
	if err != nil {
		t.Fatalf("expected submit success, got %v", err)
	}
	if result.TotalScore != 173 {
		t.Fatalf("expected total 173, got %d", result.TotalScore)
	}
	if result.RiskLevel != domain.RiskModerate {
		t.Fatalf("expected moderate risk, got %s", result.RiskLevel)
	}
	if len(results.results) != 1 {
		t.Fatalf("expected one persisted result, got %d", len(results.results))
	}

	stored, err := users.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if stored.StressLevel != "Modéré" {
		t.Fatalf("expected stress level Modéré, got %s", stored.StressLevel)
	}
	if stored.ExercisesCompleted != 1 {
		t.Fatalf("expected one completed exercise, got %d", stored.ExercisesCompleted)
	}
}

func TestDiagnosticServiceSubmit_UnknownEventRejected(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	if _, err := svc.Submit(context.Background(), "u1", []string{"e1", "ghost"}); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	if len(results.results) != 0 {
		t.Fatalf("expected nothing persisted, got %d results", len(results.results))
	}
}

func TestDiagnosticServiceSubmit_UserUpdateFailureKeepsResult(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	// Usuario inexistente: RecordDiagnostic falla pero el resultado persiste.
	result, err := svc.Submit(context.Background(), "ghost", []string{"e3"})
	if err != nil {
		t.Fatalf("expected submit success, got %v", err)
	}
	if result.TotalScore != 47 {
		t.Fatalf("expected total 47, got %d", result.TotalScore)
	}
	if len(results.results) != 1 {
		t.Fatalf("expected persisted result, got %d", len(results.results))
	}
}

func TestDiagnosticServiceCalculate_NoPersistence(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	eval, err := svc.Calculate(context.Background(), []string{"e3"})
	if err != nil {
		t.Fatalf("expected calculate success, got %v", err)
	}
	if eval.TotalScore != 47 || eval.RiskLevel != domain.RiskLow {
		t.Fatalf("unexpected evaluation: %+v", eval)
	}
	if len(results.results) != 0 {
		t.Fatalf("expected no persisted result, got %d", len(results.results))
	}
}

func TestDiagnosticServiceLatest_NotFound(t *testing.T) {
	svc := newTestDiagnosticService(newMockEventRepo(), &mockResultRepo{}, newMockUserRepo())

	if _, err := svc.Latest(context.Background(), "u1"); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestDiagnosticServiceHistory_LimitAndOrder(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		svc.nowFn = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		if _, err := svc.Submit(context.Background(), "u1", []string{"e3"}); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}

	history, err := svc.History(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected history, got %v", err)
	}
	if len(history) != 10 {
		t.Fatalf("expected 10 results, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].CompletedAt.After(history[i-1].CompletedAt) {
			t.Fatalf("expected descending order at index %d", i)
		}
	}
}

func TestDiagnosticServiceEventsByCategory(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	svc := newTestDiagnosticService(events, &mockResultRepo{}, newMockUserRepo())

	groups, err := svc.EventsByCategory(context.Background())
	if err != nil {
		t.Fatalf("expected groups, got %v", err)
	}
	// e4 está inactivo, su categoría social no debe aparecer.
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Category != domain.CategoryFamily || groups[0].Label != "Famille" {
		t.Fatalf("expected family first, got %+v", groups[0])
	}
	if len(groups[0].Events) != 2 {
		t.Fatalf("expected 2 family events, got %d", len(groups[0].Events))
	}
	if groups[1].Category != domain.CategoryWork || groups[1].Label != "Travail" {
		t.Fatalf("expected work second, got %+v", groups[1])
	}
}

func TestDiagnosticServiceCreateEvent_Validation(t *testing.T) {
	events := newMockEventRepo()
	svc := newTestDiagnosticService(events, &mockResultRepo{}, newMockUserRepo())

	cases := []EventInput{
		{Name: "", Description: "desc", Points: 10, Category: domain.CategoryFamily},
		{Name: "name", Description: "", Points: 10, Category: domain.CategoryFamily},
		{Name: "name", Description: "desc", Points: 0, Category: domain.CategoryFamily},
		{Name: "name", Description: "desc", Points: 101, Category: domain.CategoryFamily},
		{Name: "name", Description: "desc", Points: 10, Category: "astral"},
	}
	for i, input := range cases {
		if _, err := svc.CreateEvent(context.Background(), input); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("case %d: expected ErrInvalidEvent, got %v", i, err)
		}
	}

	event, err := svc.CreateEvent(context.Background(), EventInput{
		Name:        "  Déménagement ",
		Description: "Changement de domicile",
		Points:      20,
		Category:    domain.CategorySocial,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("expected create success, got %v", err)
	}
	if event.ID == "" || event.Name != "Déménagement" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestDiagnosticServiceUpdateEvent_NotFound(t *testing.T) {
	svc := newTestDiagnosticService(newMockEventRepo(), &mockResultRepo{}, newMockUserRepo())

	_, err := svc.UpdateEvent(context.Background(), "ghost", EventInput{
		Name:        "name",
		Description: "desc",
		Points:      10,
		Category:    domain.CategoryFamily,
	})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestDiagnosticServiceDeleteEvent_SnapshotsUntouched(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	result, err := svc.Submit(context.Background(), "u1", []string{"e1"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := svc.DeleteEvent(context.Background(), "e1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	stored := results.results[0]
	if stored.ID != result.ID {
		t.Fatalf("expected stored result %s, got %s", result.ID, stored.ID)
	}
	if len(stored.SelectedEvents) != 1 || stored.SelectedEvents[0].EventName != "Décès du conjoint" {
		t.Fatalf("expected snapshot preserved, got %+v", stored.SelectedEvents)
	}
	if stored.SelectedEvents[0].Points != 100 {
		t.Fatalf("expected snapshot points 100, got %d", stored.SelectedEvents[0].Points)
	}
}

func TestDiagnosticServiceStats(t *testing.T) {
	events := newMockEventRepo(catalogFixture()...)
	results := &mockResultRepo{}
	users := newMockUserRepo()
	svc := newTestDiagnosticService(events, results, users)

	if _, err := svc.Submit(context.Background(), "u1", []string{"e3"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "u2", []string{"e1", "e2"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected stats, got %v", err)
	}
	if stats.TotalResults != 2 {
		t.Fatalf("expected 2 results, got %d", stats.TotalResults)
	}
	if stats.RiskDistribution.Low != 1 || stats.RiskDistribution.Moderate != 1 || stats.RiskDistribution.High != 0 {
		t.Fatalf("unexpected distribution: %+v", stats.RiskDistribution)
	}
	if stats.AverageScore != 110 {
		t.Fatalf("expected average 110, got %v", stats.AverageScore)
	}
	if stats.RecentResults != 2 {
		t.Fatalf("expected 2 recent results, got %d", stats.RecentResults)
	}
}
