package article

import (
	"context"
	"fmt"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
)

// DefaultListLimit is the number of articles List returns.
const DefaultListLimit = 50

// Service provides article queries.
// It delegates persistence to the repository.
type Service struct {
	Repo repository.ArticleRepository
}

// List retrieves the newest articles, at most DefaultListLimit.
func (s *Service) List(ctx context.Context) ([]*entity.Article, error) {
	articles, err := s.Repo.List(ctx, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is malformed.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id string) (*entity.Article, error) {
	if entity.ValidateID("article_id", id) != nil {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}
