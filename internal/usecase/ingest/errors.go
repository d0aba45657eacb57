// Package ingest stores articles from scraped URLs or from structured
// submissions, applying the minimum-content gate and URL de-duplication.
package ingest

import "errors"

var (
	// ErrNoURLs is returned when IngestURLs receives an empty list.
	ErrNoURLs = errors.New("urls array is required")

	// ErrNoArticles is returned when IngestArticles receives an empty list.
	ErrNoArticles = errors.New("articles array is required")
)

// Per-item messages reported to callers.
const (
	MsgIngested         = "Article ingested successfully"
	MsgAlreadyExists    = "Article already exists"
	MsgValidationFailed = "Content validation failed - article too short or missing required fields"
)
