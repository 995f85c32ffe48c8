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
	"golang.org/x/crypto/bcrypt"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	bcryptCost int
	nowFn      func() time.Time
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrPasswordMismatch   = errors.New("password confirmation mismatch")
	ErrWrongPassword      = errors.New("current password incorrect")
	ErrSelfModification   = errors.New("cannot modify own account")
	ErrInvalidUserInput   = errors.New("invalid user input")
)

const minPasswordLength = 6

func NewUserService(logger *zap.Logger, users repository.UserRepository, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		logger:     logger,
		users:      users,
		bcryptCost: bcryptCost,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateUserInput agrupa los datos de registro. Los campos opcionales quedan
// vacíos cuando no se informan.
type CreateUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        string
	DateOfBirth string
	School      string
	Promotion   string
	City        string
}

// hashPassword es el paso explícito de hashing previo a cualquier escritura.
// No existen hooks implícitos: quien persiste una contraseña pasa por acá.
func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register crea una cuenta nueva de estudiante (o admin si Role lo indica).
func (s *UserService) Register(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidUserInput
	}
	if len(input.Password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	role := strings.TrimSpace(input.Role)
	if role != domain.RoleAdmin {
		role = domain.RoleStudent
	}

	now := s.nowFn()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
		DateOfBirth:  strings.TrimSpace(input.DateOfBirth),
		School:       strings.TrimSpace(input.School),
		Promotion:    strings.TrimSpace(input.Promotion),
		City:         strings.TrimSpace(input.City),
		Level:        1,
		StressLevel:  domain.DefaultStressLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate valida credenciales y devuelve la cuenta.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID devuelve una cuenta por id.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ProfileInput son los campos del perfil editables por el propio usuario.
type ProfileInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	School      string
	Promotion   string
	City        string
}

// UpdateProfile actualiza los datos de perfil del usuario autenticado.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidUserInput
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.DateOfBirth = strings.TrimSpace(input.DateOfBirth)
	user.School = strings.TrimSpace(input.School)
	user.Promotion = strings.TrimSpace(input.Promotion)
	user.City = strings.TrimSpace(input.City)
	user.UpdatedAt = s.nowFn()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword verifica la contraseña actual y guarda la nueva.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, passwordHash)
}

// ResetPassword reemplaza la contraseña de cualquier cuenta (admin).
func (s *UserService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// AdminUpdateInput son los campos editables por un administrador.
type AdminUpdateInput struct {
	Email       string
	FirstName   string
	LastName    string
	Role        string
	DateOfBirth string
	School      string
	Promotion   string
	City        string
	IsActive    bool
}

// AdminUpdate reemplaza los datos de una cuenta (admin).
func (s *UserService) AdminUpdate(ctx context.Context, userID string, input AdminUpdateInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if emailAddr == "" || firstName == "" || lastName == "" {
		return domain.User{}, ErrInvalidUserInput
	}
	role := strings.TrimSpace(input.Role)
	if role != domain.RoleAdmin && role != domain.RoleStudent {
		return domain.User{}, ErrInvalidUserInput
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user.Email = emailAddr
	user.FirstName = firstName
	user.LastName = lastName
	user.Role = role
	user.DateOfBirth = strings.TrimSpace(input.DateOfBirth)
	user.School = strings.TrimSpace(input.School)
	user.Promotion = strings.TrimSpace(input.Promotion)
	user.City = strings.TrimSpace(input.City)
	user.IsActive = input.IsActive
	user.UpdatedAt = s.nowFn()

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// SetActive activa o desactiva una cuenta. Un admin no puede desactivarse
// a sí mismo.
func (s *UserService) SetActive(ctx context.Context, actorID, userID string, active bool) (domain.User, error) {
	if !active && actorID == userID {
		return domain.User{}, ErrSelfModification
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.GetByID(ctx, userID)
}

// Delete elimina una cuenta. Un admin no puede eliminarse a sí mismo.
func (s *UserService) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrSelfModification
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// List devuelve usuarios paginados con filtros de búsqueda y rol (admin).
func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	return s.users.List(ctx, filter)
}

// UserStats resume las cuentas para el panel admin.
type UserStats struct {
	TotalUsers    int                      `json:"totalUsers"`
	ActiveUsers   int                      `json:"activeUsers"`
	InactiveUsers int                      `json:"inactiveUsers"`
	AdminUsers    int                      `json:"adminUsers"`
	StudentUsers  int                      `json:"studentUsers"`
	RecentUsers   int                      `json:"recentUsers"`
	SchoolStats   []repository.SchoolCount `json:"schoolStats"`
}

// Stats agrega contadores de cuentas para el panel admin.
func (s *UserService) Stats(ctx context.Context) (UserStats, error) {
	total, err := s.users.CountAll(ctx)
	if err != nil {
		return UserStats{}, err
	}
	active, err := s.users.CountActive(ctx, true)
	if err != nil {
		return UserStats{}, err
	}
	inactive, err := s.users.CountActive(ctx, false)
	if err != nil {
		return UserStats{}, err
	}
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return UserStats{}, err
	}
	students, err := s.users.CountByRole(ctx, domain.RoleStudent)
	if err != nil {
		return UserStats{}, err
	}
	recent, err := s.users.CountCreatedSince(ctx, s.nowFn().AddDate(0, 0, -30))
	if err != nil {
		return UserStats{}, err
	}
	schools, err := s.users.TopSchools(ctx, 10)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		TotalUsers:    total,
		ActiveUsers:   active,
		InactiveUsers: inactive,
		AdminUsers:    admins,
		StudentUsers:  students,
		RecentUsers:   recent,
		SchoolStats:   schools,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
