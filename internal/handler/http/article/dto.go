// Package article serves the public article listing.
package article

import (
	"time"

	"healthquiz/internal/domain/entity"
)

// DTO is the JSON shape of an article. The body text is not exposed.
type DTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDTO(a *entity.Article) DTO {
	return DTO{
		ID:          a.ID,
		Title:       a.Title,
		URL:         a.URL,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
	}
}
