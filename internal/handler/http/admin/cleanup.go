package admin

import (
	"log/slog"
	"net/http"
	"time"

	"healthquiz/internal/handler/http/respond"
	"healthquiz/internal/observability/logging"
	"healthquiz/internal/usecase/notify"
)

// cleanup serves POST /admin/cleanup. Partial failures still report the
// deletions that succeeded.
func (h *Handlers) cleanup(w http.ResponseWriter, r *http.Request) {
	logger := logging.WithRequestID(r.Context(), h.logger())

	report, err := h.Lifecycle.Sweep(r.Context())
	if report == nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if err != nil {
		logger.Warn("cleanup finished with failures",
			slog.Int("failed_count", report.Failed),
			slog.String("error", respond.SanitizeError(err)))
	}

	if h.Notifier != nil {
		_ = h.Notifier.NotifyReport(r.Context(), notify.NewSweepReport(notify.SweepSummary{
			Trigger:    "admin",
			Candidates: report.Candidates,
			Deleted:    report.Deleted,
			Protected:  report.Protected,
			Failed:     report.Failed,
			Duration:   report.Duration,
		}))
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message":         "Cleanup completed successfully",
		"deleted_count":   report.Deleted,
		"protected_count": report.Protected,
		"failed_count":    report.Failed,
		"cleanup_date":    time.Now().UTC(),
	})
}

// previewCleanup serves GET /admin/cleanup.
func (h *Handlers) previewCleanup(w http.ResponseWriter, r *http.Request) {
	preview, err := h.Lifecycle.PreviewSweep(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"preview":                      true,
		"questions_ready_for_deletion": preview.Eligible,
		"protected_questions":          preview.Protected,
		"unchecked_questions":          preview.Unchecked,
		"total_archived":               preview.TotalArchived,
	})
}
