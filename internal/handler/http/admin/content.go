package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/handler/http/respond"
	"healthquiz/internal/observability/logging"
	"healthquiz/internal/usecase/generate"
	"healthquiz/internal/usecase/ingest"
)

type ingestRequest struct {
	URLs     []string              `json:"urls"`
	Articles []ingest.ArticleInput `json:"articles"`
}

// ingest accepts either {"urls": [...]} or {"articles": [...]}.
func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	var (
		batch *ingest.BatchResult
		err   error
	)
	switch {
	case req.URLs != nil:
		batch, err = h.Ingest.IngestURLs(r.Context(), req.URLs)
	case req.Articles != nil:
		batch, err = h.Ingest.IngestArticles(r.Context(), req.Articles)
	default:
		respond.Message(w, http.StatusBadRequest, "Either urls array or articles array is required")
		return
	}
	if err != nil {
		if errors.Is(err, ingest.ErrNoURLs) || errors.Is(err, ingest.ErrNoArticles) {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	logging.WithRequestID(r.Context(), h.logger()).Info("admin ingestion",
		slog.Int("total", batch.Summary.Total),
		slog.Int("success", batch.Summary.Success))
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Ingestion completed",
		"results": batch.Results,
		"summary": batch.Summary,
	})
}

type generateRequest struct {
	ArticleID string `json:"article_id"`
}

func (h *Handlers) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	if err := entity.ValidateID("article_id", req.ArticleID); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Generate.GenerateForArticle(r.Context(), req.ArticleID)
	switch {
	case errors.Is(err, generate.ErrArticleNotFound):
		respond.Message(w, http.StatusNotFound, "Article not found")
		return
	case errors.Is(err, generate.ErrNoDrafts):
		respond.Message(w, http.StatusBadGateway, "Question generator returned no questions")
		return
	case err != nil:
		logging.WithRequestID(r.Context(), h.logger()).Error("question generation failed",
			slog.String("article_id", req.ArticleID),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	if res.AlreadyExists {
		respond.JSON(w, http.StatusOK, map[string]any{
			"message":        "Questions already exist for this article",
			"already_exists": true,
			"questionCount":  res.Count,
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":      "Questions generated",
		"articleId":    res.ArticleID,
		"articleTitle": res.ArticleTitle,
		"results":      res.Items,
	})
}
