package repository

import (
	"context"

	"healthquiz/internal/domain/entity"
)

// ArticleRepository persists ingested articles.
// Get and GetByURL return (nil, nil) when no row matches.
type ArticleRepository interface {
	// List returns the newest articles first, at most limit rows.
	List(ctx context.Context, limit int) ([]*entity.Article, error)
	Get(ctx context.Context, id string) (*entity.Article, error)
	GetByURL(ctx context.Context, url string) (*entity.Article, error)
	// Create inserts the article. It returns entity.ErrDuplicate when the url already exists.
	Create(ctx context.Context, article *entity.Article) error
}
