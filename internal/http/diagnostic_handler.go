package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/service"
)

// signInPrompt invita al visitante anónimo a crear cuenta tras calcular.
const signInPrompt = "Connectez-vous pour sauvegarder votre diagnostic et accéder à l'historique"

// DiagnosticHandler mantiene dependencias para el cuestionario Holmes-Rahe.
type DiagnosticHandler struct {
	logger   *zap.Logger
	diagServ *service.DiagnosticService
}

func NewDiagnosticHandler(logger *zap.Logger, diagServ *service.DiagnosticService) *DiagnosticHandler {
	return &DiagnosticHandler{
		logger:   logger,
		diagServ: diagServ,
	}
}

// evaluationView es la vista compacta de una evaluación, sin snapshot completo.
type evaluationView struct {
	TotalScore          int       `json:"totalScore"`
	RiskLevel           string    `json:"riskLevel"`
	StressLevel         string    `json:"stressLevel"`
	Recommendations     []string  `json:"recommendations"`
	SelectedEventsCount int       `json:"selectedEventsCount"`
	CompletedAt         time.Time `json:"completedAt"`
}

// ListEvents maneja GET /api/holmes-rahe/events.
func (h *DiagnosticHandler) ListEvents(c *gin.Context) {
	events, err := h.diagServ.ActiveEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

// ListEventsByCategory maneja GET /api/holmes-rahe/events/categories.
func (h *DiagnosticHandler) ListEventsByCategory(c *gin.Context) {
	groups, err := h.diagServ.EventsByCategory(c.Request.Context())
	if err != nil {
		h.logger.Error("list events by category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": groups})
}

// Calculate maneja POST /api/holmes-rahe/calculate: evaluación anónima,
// sin persistencia.
func (h *DiagnosticHandler) Calculate(c *gin.Context) {
	var req struct {
		SelectedEvents []string `json:"selectedEvents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	eval, err := h.diagServ.Calculate(c.Request.Context(), req.SelectedEvents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySelection), errors.Is(err, service.ErrUnknownEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("calculate failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not calculate"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"result": evaluationView{
			TotalScore:          eval.TotalScore,
			RiskLevel:           string(eval.RiskLevel),
			StressLevel:         service.StressLevelLabel(eval.RiskLevel),
			Recommendations:     eval.Recommendations,
			SelectedEventsCount: len(eval.SelectedEvents),
			CompletedAt:         eval.CompletedAt,
		},
		"message": signInPrompt,
	})
}

// Submit maneja POST /api/holmes-rahe/submit: evalúa y persiste.
func (h *DiagnosticHandler) Submit(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SelectedEvents []string `json:"selectedEvents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.diagServ.Submit(c.Request.Context(), claims.UserID, req.SelectedEvents)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySelection), errors.Is(err, service.ErrUnknownEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("submit diagnostic failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not submit"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"result": evaluationView{
		TotalScore:          result.TotalScore,
		RiskLevel:           string(result.RiskLevel),
		StressLevel:         service.StressLevelLabel(result.RiskLevel),
		Recommendations:     result.Recommendations,
		SelectedEventsCount: len(result.SelectedEvents),
		CompletedAt:         result.CompletedAt,
	}})
}

// History maneja GET /api/holmes-rahe/results.
func (h *DiagnosticHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	results, err := h.diagServ.History(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("diagnostic history failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return
	}
	if results == nil {
		results = []domain.DiagnosticResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

// Latest maneja GET /api/holmes-rahe/results/latest.
func (h *DiagnosticHandler) Latest(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	result, err := h.diagServ.Latest(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no diagnostic result"})
			return
		}
		h.logger.Error("latest diagnostic failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// AdminListEvents maneja GET /api/holmes-rahe/admin/events.
func (h *DiagnosticHandler) AdminListEvents(c *gin.Context) {
	events, err := h.diagServ.AllEvents(c.Request.Context())
	if err != nil {
		h.logger.Error("admin list events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

type eventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Points      int    `json:"points" binding:"required"`
	Category    string `json:"category" binding:"required"`
	IsActive    *bool  `json:"isActive"`
}

func (r eventRequest) toInput() service.EventInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return service.EventInput{
		Name:        r.Name,
		Description: r.Description,
		Points:      r.Points,
		Category:    r.Category,
		IsActive:    active,
	}
}

// AdminCreateEvent maneja POST /api/holmes-rahe/admin/events.
func (h *DiagnosticHandler) AdminCreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event, err := h.diagServ.CreateEvent(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
			return
		}
		h.logger.Error("create event failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create event"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// AdminUpdateEvent maneja PUT /api/holmes-rahe/admin/events/:id.
func (h *DiagnosticHandler) AdminUpdateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	event, err := h.diagServ.UpdateEvent(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
			return
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		default:
			h.logger.Error("update event failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update event"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// AdminDeleteEvent maneja DELETE /api/holmes-rahe/admin/events/:id.
func (h *DiagnosticHandler) AdminDeleteEvent(c *gin.Context) {
	if err := h.diagServ.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		h.logger.Error("delete event failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AdminStats maneja GET /api/holmes-rahe/admin/stats.
func (h *DiagnosticHandler) AdminStats(c *gin.Context) {
	stats, err := h.diagServ.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("diagnostic stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
