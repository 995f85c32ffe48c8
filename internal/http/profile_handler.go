package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// ProfileHandler mantiene dependencias para endpoints del perfil propio.
type ProfileHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewProfileHandler(logger *zap.Logger, userServ *service.UserService) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// profileView es la vista compacta consumida por el dashboard.
type profileView struct {
	Name               string `json:"name"`
	Status             string `json:"status"`
	Level              int    `json:"level"`
	ExercisesCompleted int    `json:"exercicesCompleted"`
	StressLevel        string `json:"stressLevel"`
	School             string `json:"ecole"`
	Promotion          string `json:"promotion"`
	City               string `json:"ville"`
	DateOfBirth        string `json:"dateOfBirth"`
	Email              string `json:"email"`
}

func statusLabel(user domain.User) string {
	if user.IsAdmin() {
		return "Administrateur"
	}
	return "Étudiant CESI"
}

// GetProfile maneja GET /api/profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profileView{
		Name:               user.FirstName + " " + user.LastName,
		Status:             statusLabel(user),
		Level:              user.Level,
		ExercisesCompleted: user.ExercisesCompleted,
		StressLevel:        user.StressLevel,
		School:             user.School,
		Promotion:          user.Promotion,
		City:               user.City,
		DateOfBirth:        user.DateOfBirth,
		Email:              user.Email,
	}})
}

// GetFullProfile maneja GET /api/profile/full.
func (h *ProfileHandler) GetFullProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile maneja PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName" binding:"required"`
		DateOfBirth string `json:"dateOfBirth"`
		School      string `json:"ecole"`
		Promotion   string `json:"promotion"`
		City        string `json:"ville"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.UpdateProfile(c.Request.Context(), claims.UserID, service.ProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		School:      req.School,
		Promotion:   req.Promotion,
		City:        req.City,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		case errors.Is(err, service.ErrInvalidUserInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("update profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePassword maneja PUT /api/profile/password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.userServ.ChangePassword(c.Request.Context(), claims.UserID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrWrongPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			h.logger.Error("change password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not change password"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

func (h *ProfileHandler) currentUser(c *gin.Context) (domain.User, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return domain.User{}, false
	}
	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return domain.User{}, false
		}
		h.logger.Error("load user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return domain.User{}, false
	}
	return user, true
}
