package article

import (
	"log/slog"
	"net/http"

	"healthquiz/internal/handler/http/respond"
	"healthquiz/internal/observability/logging"
	artUC "healthquiz/internal/usecase/article"
)

// ListHandler serves GET /articles.
type ListHandler struct {
	Svc    *artUC.Service
	Logger *slog.Logger
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithRequestID(ctx, h.logger())

	articles, err := h.Svc.List(ctx)
	if err != nil {
		logger.Error("failed to list articles", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]DTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, toDTO(a))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"articles": out})
}

func (h ListHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
