package domain

import "time"

// Categorías editoriales para artículos.
const (
	ArticleCategoryNews   = "actualite"
	ArticleCategoryAdvice = "conseil"
	ArticleCategoryEvent  = "evenement"
	ArticleCategoryHealth = "sante"
)

// ArticleCategories lista las categorías editoriales válidas.
var ArticleCategories = []string{
	ArticleCategoryNews,
	ArticleCategoryAdvice,
	ArticleCategoryEvent,
	ArticleCategoryHealth,
}

// ValidArticleCategory indica si la categoría editorial es válida.
func ValidArticleCategory(category string) bool {
	for _, c := range ArticleCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content,omitempty"`
	Excerpt     string     `json:"excerpt"`
	Author      string     `json:"author"`
	Category    string     `json:"category"`
	IsPublished bool       `json:"isPublished"`
	IsFeatured  bool       `json:"isFeatured"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
