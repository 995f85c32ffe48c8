package domain

import "time"

// Roles disponibles para una cuenta.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// DefaultStressLevel es el valor denormalizado antes del primer diagnóstico.
const DefaultStressLevel = "Normal"

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Role               string    `json:"role"`
	IsActive           bool      `json:"isActive"`
	DateOfBirth        string    `json:"dateOfBirth,omitempty"`
	School             string    `json:"ecole,omitempty"`
	Promotion          string    `json:"promotion,omitempty"`
	City               string    `json:"ville,omitempty"`
	Level              int       `json:"level"`
	ExercisesCompleted int       `json:"exercicesCompleted"`
	StressLevel        string    `json:"stressLevel"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsAdmin indica si la cuenta tiene rol de administrador.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
