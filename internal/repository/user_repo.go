package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// UserFilter restringe el listado paginado de usuarios.
type UserFilter struct {
	Search string
	Role   string
	Page   int
	Limit  int
}

// SchoolCount es una fila del ranking de escuelas.
type SchoolCount struct {
	School string `json:"ecole"`
	Count  int    `json:"count"`
}

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordDiagnostic(ctx context.Context, id, stressLevel string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	CountAll(ctx context.Context) (int, error)
	CountActive(ctx context.Context, active bool) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	TopSchools(ctx context.Context, limit int) ([]SchoolCount, error)
}

const userColumns = `id, email, password_hash, first_name, last_name, role, is_active,
	date_of_birth, school, promotion, city, level, exercises_completed, stress_level,
	created_at, updated_at`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.DateOfBirth,
		user.School,
		user.Promotion,
		user.City,
		user.Level,
		user.ExercisesCompleted,
		user.StressLevel,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *PgUserRepository) scanUser(ctx context.Context, query string, args ...any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.IsActive,
		&u.DateOfBirth,
		&u.School,
		&u.Promotion,
		&u.City,
		&u.Level,
		&u.ExercisesCompleted,
		&u.StressLevel,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *PgUserRepository) Update(ctx context.Context, user domain.User) error {
	const query = `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, role = $5, is_active = $6,
			date_of_birth = $7, school = $8, promotion = $9, city = $10, updated_at = $11
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.IsActive,
		user.DateOfBirth,
		user.School,
		user.Promotion,
		user.City,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordDiagnostic actualiza el nivel de stress denormalizado e incrementa el
// contador de ejercicios completados.
func (r *PgUserRepository) RecordDiagnostic(ctx context.Context, id, stressLevel string) error {
	const query = `
		UPDATE users
		SET stress_level = $2, exercises_completed = exercises_completed + 1, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, stressLevel)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if filter.Role != "" && filter.Role != "all" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM users"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(
		"SELECT "+userColumns+" FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		whereClause, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.IsActive,
			&u.DateOfBirth, &u.School, &u.Promotion, &u.City, &u.Level, &u.ExercisesCompleted,
			&u.StressLevel, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *PgUserRepository) CountAll(ctx context.Context) (int, error) {
	return r.countWhere(ctx, "SELECT count(*) FROM users")
}

func (r *PgUserRepository) CountActive(ctx context.Context, active bool) (int, error) {
	return r.countWhere(ctx, "SELECT count(*) FROM users WHERE is_active = $1", active)
}

func (r *PgUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	return r.countWhere(ctx, "SELECT count(*) FROM users WHERE role = $1", role)
}

func (r *PgUserRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return r.countWhere(ctx, "SELECT count(*) FROM users WHERE created_at >= $1", since)
}

func (r *PgUserRepository) TopSchools(ctx context.Context, limit int) ([]SchoolCount, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT school, count(*) AS total
		FROM users
		WHERE school <> ''
		GROUP BY school
		ORDER BY total DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SchoolCount, 0, limit)
	for rows.Next() {
		var sc SchoolCount
		if err := rows.Scan(&sc.School, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *PgUserRepository) countWhere(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}
