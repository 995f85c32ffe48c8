package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// DiagnosticResultRepository define el contrato de persistencia para
// resultados Holmes-Rahe. Los resultados son inmutables: solo create y lectura.
type DiagnosticResultRepository interface {
	Create(ctx context.Context, result domain.DiagnosticResult) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.DiagnosticResult, error)
	LatestByUser(ctx context.Context, userID string) (domain.DiagnosticResult, error)
	CountAll(ctx context.Context) (int, error)
	CountByRisk(ctx context.Context, level domain.RiskLevel) (int, error)
	AverageScore(ctx context.Context) (float64, error)
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)
}

const resultColumns = `id, user_id, selected_events, total_score, risk_level, recommendations, completed_at, created_at`

// PgDiagnosticResultRepository implementa DiagnosticResultRepository usando
// pgxpool. Los snapshots y las recomendaciones se guardan como JSONB.
type PgDiagnosticResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgDiagnosticResultRepository(pool *pgxpool.Pool) *PgDiagnosticResultRepository {
	return &PgDiagnosticResultRepository{pool: pool}
}

func (r *PgDiagnosticResultRepository) Create(ctx context.Context, result domain.DiagnosticResult) error {
	snapshots, err := json.Marshal(result.SelectedEvents)
	if err != nil {
		return fmt.Errorf("marshal selected events: %w", err)
	}
	recommendations, err := json.Marshal(result.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	const query = `
		INSERT INTO diagnostic_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.UserID,
		snapshots,
		result.TotalScore,
		string(result.RiskLevel),
		recommendations,
		result.CompletedAt,
		result.CreatedAt,
	)
	return err
}

func (r *PgDiagnosticResultRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.DiagnosticResult, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT ` + resultColumns + `
		FROM diagnostic_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.DiagnosticResult, 0, limit)
	for rows.Next() {
		var (
			res             domain.DiagnosticResult
			snapshots       []byte
			recommendations []byte
			riskLevel       string
		)
		if err := rows.Scan(
			&res.ID, &res.UserID, &snapshots, &res.TotalScore, &riskLevel,
			&recommendations, &res.CompletedAt, &res.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshots, &res.SelectedEvents); err != nil {
			return nil, fmt.Errorf("unmarshal selected events: %w", err)
		}
		if err := json.Unmarshal(recommendations, &res.Recommendations); err != nil {
			return nil, fmt.Errorf("unmarshal recommendations: %w", err)
		}
		res.RiskLevel = domain.RiskLevel(riskLevel)
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *PgDiagnosticResultRepository) LatestByUser(ctx context.Context, userID string) (domain.DiagnosticResult, error) {
	results, err := r.ListByUser(ctx, userID, 1)
	if err != nil {
		return domain.DiagnosticResult{}, err
	}
	if len(results) == 0 {
		return domain.DiagnosticResult{}, pgx.ErrNoRows
	}
	return results[0], nil
}

func (r *PgDiagnosticResultRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM diagnostic_results").Scan(&n)
	return n, err
}

func (r *PgDiagnosticResultRepository) CountByRisk(ctx context.Context, level domain.RiskLevel) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM diagnostic_results WHERE risk_level = $1", string(level)).Scan(&n)
	return n, err
}

func (r *PgDiagnosticResultRepository) AverageScore(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, "SELECT coalesce(avg(total_score), 0) FROM diagnostic_results").Scan(&avg)
	return avg, err
}

func (r *PgDiagnosticResultRepository) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM diagnostic_results WHERE created_at >= $1", since).Scan(&n)
	return n, err
}
