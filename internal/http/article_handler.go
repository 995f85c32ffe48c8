package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cesizen/internal/domain"
	"cesizen/internal/repository"
	"cesizen/internal/service"
)

// ArticleHandler mantiene dependencias para endpoints de artículos.
type ArticleHandler struct {
	logger      *zap.Logger
	articleServ *service.ArticleService
}

func NewArticleHandler(logger *zap.Logger, articleServ *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		logger:      logger,
		articleServ: articleServ,
	}
}

// paginationView acompaña toda respuesta de listado paginado.
type paginationView struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	Total       int  `json:"total"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

func newPagination(page, limit, total int) paginationView {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := (total + limit - 1) / limit
	return paginationView{
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func articleFilterFromQuery(c *gin.Context) repository.ArticleFilter {
	filter := repository.ArticleFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 10),
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}
	if c.Query("featured") == "true" {
		filter.Featured = true
	}
	return filter
}

// ListPublic maneja GET /api/articles/public.
func (h *ArticleHandler) ListPublic(c *gin.Context) {
	filter := articleFilterFromQuery(c)
	articles, total, err := h.articleServ.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list public articles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"articles":   articles,
		"pagination": newPagination(filter.Page, filter.Limit, total),
	})
}

// Featured maneja GET /api/articles/public/featured.
func (h *ArticleHandler) Featured(c *gin.Context) {
	limit := queryInt(c, "limit", 3)
	if limit > 10 {
		limit = 10
	}
	articles, err := h.articleServ.Featured(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("featured articles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// GetPublic maneja GET /api/articles/public/:id. Solo artículos publicados.
func (h *ArticleHandler) GetPublic(c *gin.Context) {
	article, err := h.articleServ.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("get public article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Stats maneja GET /api/articles/admin/stats.
func (h *ArticleHandler) Stats(c *gin.Context) {
	stats, err := h.articleServ.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("article stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AdminList maneja GET /api/articles/admin. Incluye borradores.
func (h *ArticleHandler) AdminList(c *gin.Context) {
	filter := articleFilterFromQuery(c)
	if published := c.Query("published"); published == "true" || published == "false" {
		value := published == "true"
		filter.Published = &value
	}
	articles, total, err := h.articleServ.ListAdmin(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("admin list articles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list articles"})
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"articles":   articles,
		"pagination": newPagination(filter.Page, filter.Limit, total),
	})
}

// AdminGet maneja GET /api/articles/admin/:id.
func (h *ArticleHandler) AdminGet(c *gin.Context) {
	article, err := h.articleServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("get article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

type articleRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Excerpt     string   `json:"excerpt" binding:"required"`
	Author      string   `json:"author" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	IsPublished bool     `json:"isPublished"`
	IsFeatured  bool     `json:"isFeatured"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags"`
}

func (r articleRequest) toInput() service.ArticleInput {
	return service.ArticleInput{
		Title:       r.Title,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		Author:      r.Author,
		Category:    r.Category,
		IsPublished: r.IsPublished,
		IsFeatured:  r.IsFeatured,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
}

// Create maneja POST /api/articles/admin.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	article, err := h.articleServ.Create(c.Request.Context(), req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidArticle) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article"})
			return
		}
		h.logger.Error("create article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create article"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// Update maneja PUT /api/articles/admin/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	article, err := h.articleServ.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidArticle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article"})
			return
		case errors.Is(err, service.ErrArticleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		default:
			h.logger.Error("update article failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update article"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// TogglePublish maneja PATCH /api/articles/admin/:id/toggle-publish.
func (h *ArticleHandler) TogglePublish(c *gin.Context) {
	article, err := h.articleServ.TogglePublish(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("toggle publish failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle publish"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// Delete maneja DELETE /api/articles/admin/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articleServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("delete article failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete article"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
