// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Question and QuizSession,
// along with their state rules and domain-specific errors.
package entity

import "time"

// ArticleStatus is the review state of an ingested article.
type ArticleStatus string

// Article review states.
const (
	ArticleStatusPending   ArticleStatus = "pending"
	ArticleStatusProcessed ArticleStatus = "processed"
	ArticleStatusApproved  ArticleStatus = "approved"
	ArticleStatusRejected  ArticleStatus = "rejected"
)

// Valid reports whether s is a known article status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusPending, ArticleStatusProcessed, ArticleStatusApproved, ArticleStatusRejected:
		return true
	}
	return false
}

// Article represents an ingested healthcare article.
// URL is unique across all articles; the row is immutable after ingestion.
type Article struct {
	ID          string
	URL         string
	Title       string
	Source      string
	PublishedAt time.Time
	CleanText   string
	Status      ArticleStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
