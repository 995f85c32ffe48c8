package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// StressEventRepository define el contrato de persistencia para el catálogo
// de eventos Holmes-Rahe.
type StressEventRepository interface {
	Create(ctx context.Context, event domain.StressEvent) error
	GetByID(ctx context.Context, id string) (domain.StressEvent, error)
	ListActive(ctx context.Context) ([]domain.StressEvent, error)
	ListAll(ctx context.Context) ([]domain.StressEvent, error)
	Update(ctx context.Context, event domain.StressEvent) error
	Delete(ctx context.Context, id string) error
}

const stressEventColumns = `id, name, description, points, category, is_active, created_at, updated_at`

// PgStressEventRepository implementa StressEventRepository usando pgxpool.
type PgStressEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgStressEventRepository(pool *pgxpool.Pool) *PgStressEventRepository {
	return &PgStressEventRepository{pool: pool}
}

func (r *PgStressEventRepository) Create(ctx context.Context, event domain.StressEvent) error {
	const query = `
		INSERT INTO stress_events (` + stressEventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Points,
		event.Category,
		event.IsActive,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return err
}

func (r *PgStressEventRepository) GetByID(ctx context.Context, id string) (domain.StressEvent, error) {
	const query = `SELECT ` + stressEventColumns + ` FROM stress_events WHERE id = $1`
	var e domain.StressEvent
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.Points, &e.Category, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return domain.StressEvent{}, err
	}
	return e, nil
}

// ListActive devuelve el catálogo activo ordenado por categoría y puntos.
func (r *PgStressEventRepository) ListActive(ctx context.Context) ([]domain.StressEvent, error) {
	const query = `
		SELECT ` + stressEventColumns + `
		FROM stress_events
		WHERE is_active
		ORDER BY category ASC, points DESC
	`
	return r.queryEvents(ctx, query)
}

func (r *PgStressEventRepository) ListAll(ctx context.Context) ([]domain.StressEvent, error) {
	const query = `
		SELECT ` + stressEventColumns + `
		FROM stress_events
		ORDER BY category ASC, points DESC
	`
	return r.queryEvents(ctx, query)
}

func (r *PgStressEventRepository) queryEvents(ctx context.Context, query string) ([]domain.StressEvent, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.StressEvent, 0, 48)
	for rows.Next() {
		var e domain.StressEvent
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Points, &e.Category, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *PgStressEventRepository) Update(ctx context.Context, event domain.StressEvent) error {
	const query = `
		UPDATE stress_events
		SET name = $2, description = $3, points = $4, category = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Points,
		event.Category,
		event.IsActive,
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgStressEventRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM stress_events WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
