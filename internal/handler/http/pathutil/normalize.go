package pathutil

import (
	"regexp"
	"strings"
)

const uuidPattern = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the routes that carry IDs, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/admin/questions/` + uuidPattern + `/archive$`), Template: "/admin/questions/:id/archive"},
	{Pattern: regexp.MustCompile(`^/admin/questions/` + uuidPattern + `/restore$`), Template: "/admin/questions/:id/restore"},
	{Pattern: regexp.MustCompile(`^/admin/questions/[^/]+/(archive|restore)$`), Template: "/admin/questions/:invalid"},
}

// NormalizePath maps paths containing IDs onto their route template so
// metric labels and span names keep a bounded cardinality.
//
//	NormalizePath("/admin/questions/3f2b6a8e-3c1d-4b7a-9a55-0d1f6f0f9c11/archive") // "/admin/questions/:id/archive"
//	NormalizePath("/quiz/respond?x=1")                                           // "/quiz/respond"
//	NormalizePath("/health/")                                                    // "/health"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
