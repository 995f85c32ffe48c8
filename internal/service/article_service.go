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

	"cesizen/internal/domain"
	"cesizen/internal/repository"
)

// ArticleService coordina el ciclo de vida editorial de los artículos.
type ArticleService struct {
	logger   *zap.Logger
	articles repository.ArticleRepository
	nowFn    func() time.Time
}

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrInvalidArticle  = errors.New("invalid article")
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 300
)

func NewArticleService(logger *zap.Logger, articles repository.ArticleRepository) *ArticleService {
	return &ArticleService{
		logger:   logger,
		articles: articles,
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
}

// ArticleInput agrupa los campos editables de un artículo.
type ArticleInput struct {
	Title       string
	Content     string
	Excerpt     string
	Author      string
	Category    string
	IsPublished bool
	IsFeatured  bool
	ImageURL    string
	Tags        []string
}

func validateArticleInput(input ArticleInput) (ArticleInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Excerpt = strings.TrimSpace(input.Excerpt)
	input.Author = strings.TrimSpace(input.Author)
	if input.Title == "" || input.Content == "" || input.Excerpt == "" || input.Author == "" {
		return ArticleInput{}, ErrInvalidArticle
	}
	if len([]rune(input.Title)) > maxTitleLength || len([]rune(input.Excerpt)) > maxExcerptLength {
		return ArticleInput{}, ErrInvalidArticle
	}
	if !domain.ValidArticleCategory(input.Category) {
		return ArticleInput{}, ErrInvalidArticle
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}
	return input, nil
}

// stampPublishedAtIfNeeded fija publishedAt en la primera publicación.
// Paso explícito en el flujo de escritura: no hay hooks ocultos de guardado.
func stampPublishedAtIfNeeded(article *domain.Article, now time.Time) {
	if article.IsPublished && article.PublishedAt == nil {
		article.PublishedAt = &now
	}
}

// Create agrega un artículo nuevo (admin).
func (s *ArticleService) Create(ctx context.Context, input ArticleInput) (domain.Article, error) {
	input, err := validateArticleInput(input)
	if err != nil {
		return domain.Article{}, err
	}
	now := s.nowFn()
	article := domain.Article{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		Author:      input.Author,
		Category:    input.Category,
		IsPublished: input.IsPublished,
		IsFeatured:  input.IsFeatured,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		Tags:        input.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stampPublishedAtIfNeeded(&article, now)
	if err := s.articles.Create(ctx, article); err != nil {
		return domain.Article{}, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// Update reemplaza los campos editables de un artículo (admin).
func (s *ArticleService) Update(ctx context.Context, id string, input ArticleInput) (domain.Article, error) {
	input, err := validateArticleInput(input)
	if err != nil {
		return domain.Article{}, err
	}
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	now := s.nowFn()
	article.Title = input.Title
	article.Content = input.Content
	article.Excerpt = input.Excerpt
	article.Author = input.Author
	article.Category = input.Category
	article.IsPublished = input.IsPublished
	article.IsFeatured = input.IsFeatured
	article.ImageURL = strings.TrimSpace(input.ImageURL)
	article.Tags = input.Tags
	article.UpdatedAt = now
	stampPublishedAtIfNeeded(&article, now)

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	return article, nil
}

// TogglePublish invierte el estado de publicación (admin).
func (s *ArticleService) TogglePublish(ctx context.Context, id string) (domain.Article, error) {
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	now := s.nowFn()
	article.IsPublished = !article.IsPublished
	article.UpdatedAt = now
	stampPublishedAtIfNeeded(&article, now)

	if err := s.articles.Update(ctx, article); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	return article, nil
}

// Delete elimina un artículo (admin).
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrArticleNotFound
		}
		return err
	}
	return nil
}

// GetByID devuelve un artículo con su contenido completo (admin).
func (s *ArticleService) GetByID(ctx context.Context, id string) (domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	return article, nil
}

// GetPublished devuelve un artículo publicado (vista pública).
func (s *ArticleService) GetPublished(ctx context.Context, id string) (domain.Article, error) {
	article, err := s.articles.GetPublishedByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Article{}, ErrArticleNotFound
		}
		return domain.Article{}, err
	}
	return article, nil
}

// ListPublic devuelve artículos publicados paginados (vista pública).
func (s *ArticleService) ListPublic(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, int, error) {
	published := true
	filter.Published = &published
	return s.articles.List(ctx, filter)
}

// ListAdmin devuelve artículos paginados sin restricción de publicación.
func (s *ArticleService) ListAdmin(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, int, error) {
	return s.articles.List(ctx, filter)
}

// Featured devuelve los artículos publicados en vedette.
func (s *ArticleService) Featured(ctx context.Context, limit int) ([]domain.Article, error) {
	return s.articles.ListFeatured(ctx, limit)
}

// ArticleStats resume el estado editorial para el panel admin.
type ArticleStats struct {
	Total      int                               `json:"total"`
	Published  int                               `json:"published"`
	Featured   int                               `json:"featured"`
	Drafts     int                               `json:"drafts"`
	ByCategory []repository.ArticleCategoryCount `json:"byCategory"`
}

// Stats agrega contadores editoriales para el panel admin.
func (s *ArticleService) Stats(ctx context.Context) (ArticleStats, error) {
	total, err := s.articles.CountAll(ctx)
	if err != nil {
		return ArticleStats{}, err
	}
	published, err := s.articles.CountPublished(ctx, true)
	if err != nil {
		return ArticleStats{}, err
	}
	featured, err := s.articles.CountFeatured(ctx)
	if err != nil {
		return ArticleStats{}, err
	}
	drafts, err := s.articles.CountPublished(ctx, false)
	if err != nil {
		return ArticleStats{}, err
	}
	byCategory, err := s.articles.CategoryCounts(ctx)
	if err != nil {
		return ArticleStats{}, err
	}
	return ArticleStats{
		Total:      total,
		Published:  published,
		Featured:   featured,
		Drafts:     drafts,
		ByCategory: byCategory,
	}, nil
}
