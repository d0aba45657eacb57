// Package admin serves the JWT-protected operator endpoints: ingestion,
// question generation, the question lifecycle and archived question cleanup.
package admin

import (
	"log/slog"
	"net/http"

	"healthquiz/internal/common/pagination"
	"healthquiz/internal/handler/http/auth"
	"healthquiz/internal/usecase/generate"
	"healthquiz/internal/usecase/ingest"
	"healthquiz/internal/usecase/lifecycle"
	"healthquiz/internal/usecase/notify"
)

// maxBodyBytes caps admin request bodies. Structured ingestion batches are
// the largest payloads.
const maxBodyBytes = 4 << 20

// Handlers groups the admin use cases.
type Handlers struct {
	Ingest     *ingest.Service
	Generate   *generate.Service
	Lifecycle  *lifecycle.Service
	Pagination pagination.Config
	// Notifier receives cleanup reports; nil disables them.
	Notifier notify.Service
	Logger   *slog.Logger
}

// Register mounts every admin route behind requireAdmin.
func Register(mux *http.ServeMux, h *Handlers, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("POST /admin/ingest", requireAdmin(http.HandlerFunc(h.ingest)))
	mux.Handle("POST /admin/generate", requireAdmin(http.HandlerFunc(h.generate)))
	mux.Handle("GET /admin/questions", requireAdmin(http.HandlerFunc(h.listQuestions)))
	mux.Handle("POST /admin/questions/bulk", requireAdmin(http.HandlerFunc(h.bulk)))
	mux.Handle("POST /admin/questions/{id}/archive", requireAdmin(http.HandlerFunc(h.archive)))
	mux.Handle("POST /admin/questions/{id}/restore", requireAdmin(http.HandlerFunc(h.restore)))
	mux.Handle("POST /admin/cleanup", requireAdmin(http.HandlerFunc(h.cleanup)))
	mux.Handle("GET /admin/cleanup", requireAdmin(http.HandlerFunc(h.previewCleanup)))
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// actor picks the archive actor: the request body, then the token subject.
func actor(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return auth.UserFromContext(r.Context())
}
