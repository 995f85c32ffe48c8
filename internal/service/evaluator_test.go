package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"cesizen/internal/domain"
)

func testCatalog() []domain.StressEvent {
	return []domain.StressEvent{
		{ID: "e1", Name: "Décès du conjoint", Description: "Perte de son époux/épouse", Points: 100, Category: domain.CategoryFamily, IsActive: true},
		{ID: "e2", Name: "Divorce", Description: "Séparation légale définitive", Points: 73, Category: domain.CategoryFamily, IsActive: true},
		{ID: "e3", Name: "Licenciement", Description: "Perte d'emploi involontaire", Points: 47, Category: domain.CategoryWork, IsActive: true},
		{ID: "e4", Name: "Vacances", Description: "Période de congés", Points: 13, Category: domain.CategorySocial, IsActive: true},
		{ID: "inactive", Name: "Retraite", Description: "Cessation d'activité", Points: 45, Category: domain.CategoryWork, IsActive: false},
	}
}

func TestEvaluateSumsPointsAndSnapshots(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	eval, err := Evaluate([]string{"e1", "e2"}, testCatalog(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.TotalScore != 173 {
		t.Fatalf("expected total score 173, got %d", eval.TotalScore)
	}
	if eval.RiskLevel != domain.RiskModerate {
		t.Fatalf("expected moderate risk, got %s", eval.RiskLevel)
	}
	if !reflect.DeepEqual(eval.Recommendations, Recommendations(domain.RiskModerate)) {
		t.Fatalf("expected moderate recommendation set, got %v", eval.Recommendations)
	}
	if len(eval.SelectedEvents) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(eval.SelectedEvents))
	}
	want := domain.EventSnapshot{EventID: "e1", EventName: "Décès du conjoint", Points: 100, Category: domain.CategoryFamily}
	if eval.SelectedEvents[0] != want {
		t.Fatalf("unexpected first snapshot: %+v", eval.SelectedEvents[0])
	}
	if !eval.CompletedAt.Equal(now) {
		t.Fatalf("expected completedAt %v, got %v", now, eval.CompletedAt)
	}
}

func TestEvaluateSingleEventLowRisk(t *testing.T) {
	eval, err := Evaluate([]string{"e1"}, testCatalog(), time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.TotalScore != 100 || eval.RiskLevel != domain.RiskLow {
		t.Fatalf("expected score 100 / low, got %d / %s", eval.TotalScore, eval.RiskLevel)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	catalog := testCatalog()
	first, err := Evaluate([]string{"e2", "e3", "e4"}, catalog, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Evaluate([]string{"e2", "e3", "e4"}, catalog, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical evaluations, got %+v vs %+v", first, second)
	}
}

func TestEvaluateRejectsEmptySelection(t *testing.T) {
	if _, err := Evaluate(nil, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if _, err := Evaluate([]string{}, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection for empty slice, got %v", err)
	}
}

func TestEvaluateRejectsUnknownEvent(t *testing.T) {
	if _, err := Evaluate([]string{"nonexistent-id"}, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
	// Todo-o-nada: un id inválido invalida la selección completa.
	if _, err := Evaluate([]string{"e1", "e2", "nonexistent-id"}, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent in mixed selection, got %v", err)
	}
}

func TestEvaluateRejectsInactiveEvent(t *testing.T) {
	if _, err := Evaluate([]string{"inactive"}, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent for inactive event, got %v", err)
	}
}

func TestEvaluateRejectsDuplicateSelection(t *testing.T) {
	if _, err := Evaluate([]string{"e1", "e1"}, testCatalog(), time.Now().UTC()); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent for duplicate selection, got %v", err)
	}
}

func TestClassifyRiskBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{149, domain.RiskLow},
		{150, domain.RiskModerate},
		{299, domain.RiskModerate},
		{300, domain.RiskHigh},
		{450, domain.RiskHigh},
	}
	for _, tc := range cases {
		if got := ClassifyRisk(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestRecommendationsPerTier(t *testing.T) {
	low := Recommendations(domain.RiskLow)
	moderate := Recommendations(domain.RiskModerate)
	high := Recommendations(domain.RiskHigh)
	if len(low) != 3 || len(moderate) != 4 || len(high) != 4 {
		t.Fatalf("unexpected set sizes: %d/%d/%d", len(low), len(moderate), len(high))
	}
	// Las recomendaciones son copias: mutar la devuelta no afecta al set fijo.
	low[0] = "mutated"
	if Recommendations(domain.RiskLow)[0] == "mutated" {
		t.Fatalf("recommendation set must not be mutable through the returned slice")
	}
}

func TestStressLevelLabel(t *testing.T) {
	if StressLevelLabel(domain.RiskLow) != "Faible" {
		t.Fatalf("unexpected low label")
	}
	if StressLevelLabel(domain.RiskModerate) != "Modéré" {
		t.Fatalf("unexpected moderate label")
	}
	if StressLevelLabel(domain.RiskHigh) != "Élevé" {
		t.Fatalf("unexpected high label")
	}
}

func TestEvaluateDoesNotMutateCatalog(t *testing.T) {
	catalog := testCatalog()
	before := make([]domain.StressEvent, len(catalog))
	copy(before, catalog)
	if _, err := Evaluate([]string{"e1", "e4"}, catalog, time.Now().UTC()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(before, catalog) {
		t.Fatalf("catalog mutated during evaluation")
	}
}
