package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"healthquiz/internal/domain/entity"
)

var (
	// \p{Zs} covers non-breaking and other Unicode spaces that \s misses.
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	blankLineRun  = regexp.MustCompile(`\n[\s\p{Zs}]*\n`)
)

// NormalizeWhitespace collapses whitespace runs to one space, blank-line runs
// to one newline, and trims the ends.
func NormalizeWhitespace(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = blankLineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// SourceFromURL returns the hostname without a leading "www.".
func SourceFromURL(u *url.URL) string {
	return entity.SourceDomain(u)
}
