package admin

import (
	"errors"
	"net/http"
	"time"

	"healthquiz/internal/common/pagination"
	"healthquiz/internal/domain/entity"
	"healthquiz/internal/handler/http/pathutil"
	"healthquiz/internal/handler/http/respond"
	"healthquiz/internal/repository"
	"healthquiz/internal/usecase/lifecycle"
)

// QuestionDTO is a question as shown in the admin listing.
type QuestionDTO struct {
	ID                  string     `json:"id"`
	ArticleID           string     `json:"article_id"`
	Prompt              string     `json:"prompt"`
	Explanation         string     `json:"explanation"`
	Difficulty          string     `json:"difficulty"`
	Tags                []string   `json:"tags"`
	Reviewed            bool       `json:"reviewed"`
	Status              string     `json:"status"`
	ArchivedAt          *time.Time `json:"archived_at"`
	ArchivedBy          string     `json:"archived_by,omitempty"`
	ArchivedReason      string     `json:"archived_reason,omitempty"`
	ScheduledDeletionAt *time.Time `json:"scheduled_deletion_at"`
	CreatedAt           time.Time  `json:"created_at"`
	ArticleTitle        string     `json:"article_title"`
	ArticleSource       string     `json:"article_source"`
	RecentResponseCount int        `json:"recent_response_count"`
	TotalResponseCount  int        `json:"total_response_count"`
}

func toQuestionDTO(s repository.QuestionWithStats) QuestionDTO {
	q := s.Question
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return QuestionDTO{
		ID:                  q.ID,
		ArticleID:           q.ArticleID,
		Prompt:              q.Prompt,
		Explanation:         q.Explanation,
		Difficulty:          string(q.Difficulty),
		Tags:                tags,
		Reviewed:            q.Reviewed,
		Status:              string(q.Status),
		ArchivedAt:          q.ArchivedAt,
		ArchivedBy:          q.ArchivedBy,
		ArchivedReason:      q.ArchivedReason,
		ScheduledDeletionAt: q.ScheduledDeletionAt,
		CreatedAt:           q.CreatedAt,
		ArticleTitle:        s.ArticleTitle,
		ArticleSource:       s.ArticleSource,
		RecentResponseCount: s.RecentResponseCount,
		TotalResponseCount:  s.TotalResponseCount,
	}
}

// listQuestions serves GET /admin/questions?status=&page=&limit=.
// status "all" or empty lists every status, deleted included.
func (h *Handlers) listQuestions(w http.ResponseWriter, r *http.Request) {
	var status *entity.QuestionStatus
	if s := r.URL.Query().Get("status"); s != "" && s != "all" {
		st := entity.QuestionStatus(s)
		if !st.Valid() {
			respond.Message(w, http.StatusBadRequest, "status must be one of all, active, archived, deleted")
			return
		}
		status = &st
	}

	page, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.Lifecycle.List(r.Context(), lifecycle.ListParams{Status: status, Page: page})
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]QuestionDTO, 0, len(res.Questions))
	for _, q := range res.Questions {
		out = append(out, toQuestionDTO(q))
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"questions":  out,
		"pagination": res.Pagination,
	})
}

type archiveRequest struct {
	Reason     string `json:"reason"`
	ArchivedBy string `json:"archived_by"`
}

// archive serves POST /admin/questions/{id}/archive. The body is optional.
func (h *Handlers) archive(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Question ID is required")
		return
	}
	var req archiveRequest
	if r.ContentLength != 0 && !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	ok, err := h.Lifecycle.Archive(r.Context(), id, req.Reason, actor(r, req.ArchivedBy))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		respond.Message(w, http.StatusNotFound, "Question not found or already archived")
		return
	}

	now := time.Now().UTC()
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":               "Question archived successfully",
		"archived_at":           now,
		"scheduled_deletion_at": now.Add(entity.RetentionPeriod),
	})
}

// restore serves POST /admin/questions/{id}/restore.
func (h *Handlers) restore(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Question ID is required")
		return
	}

	ok, err := h.Lifecycle.Restore(r.Context(), id)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		respond.Message(w, http.StatusNotFound, "Question not found or not archived")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":     "Question restored successfully",
		"restored_at": time.Now().UTC(),
	})
}

type bulkRequest struct {
	Action      string   `json:"action"`
	QuestionIDs []string `json:"question_ids"`
	Reason      string   `json:"reason"`
	ArchivedBy  string   `json:"archived_by"`
}

// bulk serves POST /admin/questions/bulk.
func (h *Handlers) bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	res, err := h.Lifecycle.BulkApply(r.Context(), entity.Transition(req.Action), req.QuestionIDs, req.Reason, actor(r, req.ArchivedBy))
	if err != nil {
		if errors.Is(err, lifecycle.ErrUnsupportedAction) || errors.Is(err, lifecycle.ErrNoQuestionIDs) {
			respond.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Bulk " + req.Action + " completed",
		"summary": map[string]int{
			"total":   res.Total(),
			"success": res.SuccessCount,
			"errors":  res.ErrorCount,
		},
		"results": res.Results,
	})
}
