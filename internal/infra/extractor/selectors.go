package extractor

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"healthquiz/internal/utils/text"
)

// noiseSelector matches subtrees that never hold article text.
const noiseSelector = "script, style, nav, footer, header, aside, .advertisement, .ads, .social-share, .comments"

// untitled is used when no title rule yields text.
const untitled = "Untitled Article"

// fieldRule reads one candidate value from the matches of selector.
type fieldRule struct {
	selector string
	read     func(*goquery.Selection) string
}

func allText(s *goquery.Selection) string   { return strings.TrimSpace(s.Text()) }
func firstText(s *goquery.Selection) string { return strings.TrimSpace(s.First().Text()) }

func attr(name string) func(*goquery.Selection) string {
	return func(s *goquery.Selection) string {
		v, _ := s.Attr(name)
		return strings.TrimSpace(v)
	}
}

func attrOrText(name string) func(*goquery.Selection) string {
	return func(s *goquery.Selection) string {
		if v := attr(name)(s); v != "" {
			return v
		}
		return allText(s)
	}
}

// Rule order is priority order.
var (
	titleRules = []fieldRule{
		{"h1", firstText},
		{"title", allText},
		{`meta[property="og:title"]`, attr("content")},
	}

	bodySelectors = []string{
		"article",
		".article-content",
		".post-content",
		".entry-content",
		".content",
		"main",
		".main-content",
	}

	dateRules = []fieldRule{
		{"time[datetime]", attrOrText("datetime")},
		{".published-date", allText},
		{".post-date", allText},
		{`meta[property="article:published_time"]`, attr("content")},
		{`meta[name="publish-date"]`, attr("content")},
	}
)

// stripNoise removes navigation, ads and other chrome in place.
func stripNoise(doc *goquery.Document) {
	doc.Find(noiseSelector).Remove()
}

// inferTitle returns the first non-empty title rule value.
func inferTitle(doc *goquery.Document) string {
	for _, r := range titleRules {
		if v := r.read(doc.Find(r.selector)); v != "" {
			return v
		}
	}
	return untitled
}

// bodyCandidates returns the concatenated text of each body selector, in order.
func bodyCandidates(doc *goquery.Document) []string {
	out := make([]string, 0, len(bodySelectors))
	for _, sel := range bodySelectors {
		out = append(out, allText(doc.Find(sel)))
	}
	return out
}

// Longest returns the candidate with the most characters. Ties keep the
// earlier candidate; an all-empty list yields "".
func Longest(candidates []string) string {
	best, bestLen := "", 0
	for _, c := range candidates {
		if n := text.CountRunes(c); n > bestLen {
			best, bestLen = c, n
		}
	}
	return best
}

// inferPublishedAt returns the first rule value that parses as a date, or now.
// Values without a zone are read as UTC.
func inferPublishedAt(doc *goquery.Document, now time.Time) time.Time {
	for _, r := range dateRules {
		raw := r.read(doc.Find(r.selector))
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseIn(raw, time.UTC); err == nil && !t.IsZero() {
			return t
		}
	}
	return now
}
