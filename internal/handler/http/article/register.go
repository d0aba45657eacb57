package article

import (
	"log/slog"
	"net/http"

	artUC "healthquiz/internal/usecase/article"
)

// Register mounts the public article routes.
func Register(mux *http.ServeMux, svc *artUC.Service, logger *slog.Logger) {
	mux.Handle("GET /articles", ListHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /articles/{id}", GetHandler{Svc: svc})
}
