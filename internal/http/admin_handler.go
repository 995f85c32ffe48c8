package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
	"cesizen/internal/service"
)

// AdminHandler mantiene dependencias para la gestión de cuentas (admin).
type AdminHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
}

func NewAdminHandler(logger *zap.Logger, userServ *service.UserService) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		userServ: userServ,
	}
}

// UserStats maneja GET /api/admin/users/stats.
func (h *AdminHandler) UserStats(c *gin.Context) {
	stats, err := h.userServ.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("user stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListUsers maneja GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := repository.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	users, total, err := h.userServ.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": newPagination(filter.Page, filter.Limit, total),
	})
}

// CreateUser maneja POST /api/admin/users. Permite fijar el rol.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName" binding:"required"`
		Role        string `json:"role"`
		DateOfBirth string `json:"dateOfBirth"`
		School      string `json:"ecole"`
		Promotion   string `json:"promotion"`
		City        string `json:"ville"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		DateOfBirth: req.DateOfBirth,
		School:      req.School,
		Promotion:   req.Promotion,
		City:        req.City,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already in use"})
			return
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidUserInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("admin create user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// UpdateUser maneja PUT /api/admin/users/:id.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName" binding:"required"`
		Role        string `json:"role" binding:"required"`
		DateOfBirth string `json:"dateOfBirth"`
		School      string `json:"ecole"`
		Promotion   string `json:"promotion"`
		City        string `json:"ville"`
		IsActive    *bool  `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := h.userServ.AdminUpdate(c.Request.Context(), c.Param("id"), service.AdminUpdateInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		DateOfBirth: req.DateOfBirth,
		School:      req.School,
		Promotion:   req.Promotion,
		City:        req.City,
		IsActive:    active,
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
			h.logger.Error("admin update user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeactivateUser maneja PATCH /api/admin/users/:id/deactivate.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

// ActivateUser maneja PATCH /api/admin/users/:id/activate.
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

func (h *AdminHandler) setActive(c *gin.Context, active bool) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.SetActive(c.Request.Context(), claims.UserID, c.Param("id"), active)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfModification):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate own account"})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			h.logger.Error("set active failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ResetUserPassword maneja PATCH /api/admin/users/:id/reset-password.
func (h *AdminHandler) ResetUserPassword(c *gin.Context) {
	var req struct {
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.userServ.ResetPassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			h.logger.Error("reset password failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset password"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_reset"})
}

// DeleteUser maneja DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.userServ.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfModification):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
			return
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			h.logger.Error("delete user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete user"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
