package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cesizen/internal/domain"
)

// ArticleFilter restringe el listado paginado de artículos.
type ArticleFilter struct {
	Category  string
	Featured  bool
	Published *bool
	Search    string
	Page      int
	Limit     int
}

// ArticleCategoryCount es una fila de estadísticas por categoría editorial.
type ArticleCategoryCount struct {
	Category  string `json:"category"`
	Count     int    `json:"count"`
	Published int    `json:"published"`
}

// ArticleRepository define el contrato de persistencia para artículos.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article) error
	GetByID(ctx context.Context, id string) (domain.Article, error)
	GetPublishedByID(ctx context.Context, id string) (domain.Article, error)
	Update(ctx context.Context, article domain.Article) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, int, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Article, error)
	CountAll(ctx context.Context) (int, error)
	CountPublished(ctx context.Context, published bool) (int, error)
	CountFeatured(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context) ([]ArticleCategoryCount, error)
}

const articleColumns = `id, title, content, excerpt, author, category, is_published,
	is_featured, image_url, tags, published_at, created_at, updated_at`

// Listados: el contenido completo se excluye para aligerar las respuestas.
const articleListColumns = `id, title, excerpt, author, category, is_published,
	is_featured, image_url, tags, published_at, created_at, updated_at`

// PgArticleRepository implementa ArticleRepository usando pgxpool.
type PgArticleRepository struct {
	pool *pgxpool.Pool
}

func NewPgArticleRepository(pool *pgxpool.Pool) *PgArticleRepository {
	return &PgArticleRepository{pool: pool}
}

func (r *PgArticleRepository) Create(ctx context.Context, article domain.Article) error {
	tags, err := marshalTags(article.Tags)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Excerpt,
		article.Author,
		article.Category,
		article.IsPublished,
		article.IsFeatured,
		article.ImageURL,
		tags,
		article.PublishedAt,
		article.CreatedAt,
		article.UpdatedAt,
	)
	return err
}

func (r *PgArticleRepository) GetByID(ctx context.Context, id string) (domain.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return r.scanArticle(ctx, query, id)
}

func (r *PgArticleRepository) GetPublishedByID(ctx context.Context, id string) (domain.Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND is_published`
	return r.scanArticle(ctx, query, id)
}

func (r *PgArticleRepository) scanArticle(ctx context.Context, query string, args ...any) (domain.Article, error) {
	var (
		a    domain.Article
		tags []byte
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.Title, &a.Content, &a.Excerpt, &a.Author, &a.Category,
		&a.IsPublished, &a.IsFeatured, &a.ImageURL, &tags, &a.PublishedAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}
	if err := json.Unmarshal(tags, &a.Tags); err != nil {
		return domain.Article{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	return a, nil
}

func (r *PgArticleRepository) Update(ctx context.Context, article domain.Article) error {
	tags, err := marshalTags(article.Tags)
	if err != nil {
		return err
	}
	const query = `
		UPDATE articles
		SET title = $2, content = $3, excerpt = $4, author = $5, category = $6,
			is_published = $7, is_featured = $8, image_url = $9, tags = $10,
			published_at = $11, updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Excerpt,
		article.Author,
		article.Category,
		article.IsPublished,
		article.IsFeatured,
		article.ImageURL,
		tags,
		article.PublishedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgArticleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM articles WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.Article, int, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if filter.Published != nil {
		args = append(args, *filter.Published)
		where = append(where, fmt.Sprintf("is_published = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured {
		where = append(where, "is_featured")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR excerpt ILIKE $%d OR author ILIKE $%d OR tags::text ILIKE $%d)", n, n, n, n))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM articles"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 6
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	// Artículos públicos ordenados por fecha de publicación; borradores por creación.
	order := "published_at DESC NULLS LAST"
	if filter.Published == nil {
		order = "created_at DESC"
	}
	query := fmt.Sprintf(
		"SELECT "+articleListColumns+" FROM articles%s ORDER BY %s LIMIT $%d OFFSET $%d",
		whereClause, order, len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles, err := scanArticleList(rows, limit)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (r *PgArticleRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 3
	}
	const query = `
		SELECT ` + articleListColumns + `
		FROM articles
		WHERE is_published AND is_featured
		ORDER BY published_at DESC NULLS LAST
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticleList(rows, limit)
}

func scanArticleList(rows pgx.Rows, capacity int) ([]domain.Article, error) {
	articles := make([]domain.Article, 0, capacity)
	for rows.Next() {
		var (
			a    domain.Article
			tags []byte
		)
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Excerpt, &a.Author, &a.Category, &a.IsPublished,
			&a.IsFeatured, &a.ImageURL, &tags, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(tags, &a.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *PgArticleRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM articles").Scan(&n)
	return n, err
}

func (r *PgArticleRepository) CountPublished(ctx context.Context, published bool) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM articles WHERE is_published = $1", published).Scan(&n)
	return n, err
}

func (r *PgArticleRepository) CountFeatured(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM articles WHERE is_featured").Scan(&n)
	return n, err
}

func (r *PgArticleRepository) CategoryCounts(ctx context.Context) ([]ArticleCategoryCount, error) {
	const query = `
		SELECT category, count(*), count(*) FILTER (WHERE is_published)
		FROM articles
		GROUP BY category
		ORDER BY category
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ArticleCategoryCount, 0, 4)
	for rows.Next() {
		var c ArticleCategoryCount
		if err := rows.Scan(&c.Category, &c.Count, &c.Published); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return data, nil
}
