package quiz

import (
	"errors"
	"log/slog"
	"net/http"

	"healthquiz/internal/handler/http/respond"
	"healthquiz/internal/observability/logging"
	quizUC "healthquiz/internal/usecase/quiz"
)

// Register mounts the quiz routes.
func Register(mux *http.ServeMux, svc *quizUC.Service) {
	mux.Handle("GET /quiz", DrawHandler{svc})
	mux.Handle("POST /quiz/sessions", StartHandler{svc})
	mux.Handle("POST /quiz/respond", RespondHandler{svc})
	mux.Handle("POST /quiz/finish", FinishHandler{svc})
}

// writeError maps quiz use case errors to responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizUC.ErrNoQuestions):
		respond.Message(w, http.StatusNotFound, "No questions available")
	case errors.Is(err, quizUC.ErrSessionNotFound):
		respond.Message(w, http.StatusNotFound, "Quiz session not found")
	case errors.Is(err, quizUC.ErrQuestionNotFound):
		respond.Message(w, http.StatusNotFound, "Question not found")
	case errors.Is(err, quizUC.ErrSessionFinished):
		respond.Message(w, http.StatusConflict, "Quiz session already finished")
	case errors.Is(err, quizUC.ErrChoiceMismatch):
		respond.Message(w, http.StatusBadRequest, "Choice does not belong to question")
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

// DrawHandler serves GET /quiz.
type DrawHandler struct{ Svc *quizUC.Service }

func (h DrawHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	questions, err := h.Svc.Draw(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]QuestionDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionDTO(q))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"questions": out})
}

// StartHandler serves POST /quiz/sessions.
type StartHandler struct{ Svc *quizUC.Service }

func (h StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Svc.StartSession(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, SessionDTO{
		SessionID:      sess.ID,
		TotalQuestions: sess.TotalQuestions,
		StartedAt:      sess.StartedAt,
	})
}

// RespondHandler serves POST /quiz/respond.
type RespondHandler struct{ Svc *quizUC.Service }

func (h RespondHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	ans, err := h.Svc.Respond(r.Context(), req.SessionID, req.QuestionID, req.ChoiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ans)
}

// FinishHandler serves POST /quiz/finish. A failed result email is logged
// by the use case and never changes the response.
type FinishHandler struct{ Svc *quizUC.Service }

func (h FinishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !respond.DecodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	res, err := h.Svc.Finish(r.Context(), req.SessionID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	logging.FromContext(r.Context()).Info("quiz finished",
		slog.String("session_id", res.SessionID),
		slog.Int("percentage", res.Percentage))
	respond.JSON(w, http.StatusOK, toResultDTO(res))
}
