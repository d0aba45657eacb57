// Package pathutil parses and normalizes request paths.
package pathutil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID validates a UUID path segment and returns it in canonical form.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// PathID reads the named wildcard from a ServeMux pattern and validates it.
//
//	mux.Handle("POST /admin/questions/{id}/archive", h)
//	id, err := pathutil.PathID(r, "id")
func PathID(r *http.Request, name string) (string, error) {
	return ParseID(r.PathValue(name))
}
