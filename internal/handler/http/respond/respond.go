// Package respond writes JSON responses. Error helpers never expose internal
// error text: only validation failures and explicit user messages reach the
// client, everything else is logged (sanitized) and reported generically.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"healthquiz/internal/domain/entity"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Message writes {"error": msg}. msg must be safe to show to users.
func Message(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, map[string]string{"error": msg})
}

// SafeError maps err to a response.
//
//   - *entity.ValidationError: 400 with its message
//   - entity.ErrNotFound: 404
//   - entity.ErrInvalidInput, entity.ErrValidationFailed: 400
//   - anything else: code (500 when code < 400) with "internal server error"
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		Message(w, http.StatusBadRequest, ve.Message)
		return
	case errors.Is(err, entity.ErrNotFound):
		Message(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrValidationFailed):
		Message(w, http.StatusBadRequest, err.Error())
		return
	}

	if code < 400 {
		code = http.StatusInternalServerError
	}
	if code < 500 {
		Message(w, code, err.Error())
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Message(w, code, "internal server error")
}

// DecodeJSON decodes the request body into v, rejecting unknown fields and
// bodies over maxBytes. It writes a 400 and returns false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Message(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Message(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
