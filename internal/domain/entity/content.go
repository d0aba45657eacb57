package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"healthquiz/internal/utils/text"
)

// MinCleanTextLength is the exclusive lower bound on the character count of
// accepted article bodies. Paywalled stubs and navigation-only pages fall below it.
const MinCleanTextLength = 500

// ExtractedContent is the structured result of scraping an article page.
type ExtractedContent struct {
	Title       string
	CleanText   string
	Source      string
	PublishedAt time.Time
}

// ValidateContent is the minimum-content gate applied before an extracted
// article is stored. It returns a *ValidationError naming the first failing field.
func ValidateContent(c *ExtractedContent) error {
	if c == nil {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if c.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "source is required"}
	}
	if n := text.CountRunes(c.CleanText); n <= MinCleanTextLength {
		return &ValidationError{
			Field:   "clean_text",
			Message: fmt.Sprintf("clean text must exceed %d characters (got %d)", MinCleanTextLength, n),
		}
	}
	return nil
}

// SourceDomain is the article source derived from its URL: the lowercased
// hostname with a leading "www." removed.
func SourceDomain(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
