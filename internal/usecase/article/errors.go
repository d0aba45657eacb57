// Package article provides read access to ingested articles.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is not a UUID.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
