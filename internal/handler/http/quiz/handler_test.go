package quiz_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	quizhttp "healthquiz/internal/handler/http/quiz"
	"healthquiz/internal/repository"
	quizUC "healthquiz/internal/usecase/quiz"
)

const (
	questionID = "11111111-1111-4111-8111-111111111111"
	rightID    = "22222222-2222-4222-8222-222222222222"
	wrongID    = "33333333-3333-4333-8333-333333333333"
	otherID    = "44444444-4444-4444-8444-444444444444"
)

type memQuestions struct {
	repository.QuestionRepository
	questions []*entity.Question
}

func (m *memQuestions) ListForQuiz(context.Context, int) ([]*entity.Question, error) {
	return append([]*entity.Question(nil), m.questions...), nil
}

func (m *memQuestions) Get(_ context.Context, id string) (*entity.Question, error) {
	for _, q := range m.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

type memQuizzes struct {
	repository.QuizRepository
	mu        sync.Mutex
	sessions  map[string]*entity.QuizSession
	responses map[string]*entity.Response
}

func (m *memQuizzes) CreateSession(_ context.Context, s *entity.QuizSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memQuizzes) GetSession(_ context.Context, id string) (*entity.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memQuizzes) FinishSession(_ context.Context, id, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id].FinishedAt = &at
	m.sessions[id].Email = email
	return nil
}

func (m *memQuizzes) GetResponse(_ context.Context, sessionID, questionID string) (*entity.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responses[sessionID+"|"+questionID], nil
}

func (m *memQuizzes) RecordResponse(_ context.Context, r *entity.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[r.SessionID+"|"+r.QuestionID] = r
	if r.IsCorrect {
		m.sessions[r.SessionID].CorrectAnswers++
	}
	return nil
}

func (m *memQuizzes) CountResponses(_ context.Context, sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.responses {
		if strings.HasPrefix(k, sessionID+"|") {
			n++
		}
	}
	return n, nil
}

func (m *memQuizzes) ListResponseDetails(_ context.Context, sessionID string) ([]repository.ResponseDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.ResponseDetail
	for k, r := range m.responses {
		if strings.HasPrefix(k, sessionID+"|") {
			out = append(out, repository.ResponseDetail{QuestionID: r.QuestionID, IsCorrect: r.IsCorrect, Prompt: "What is it?"})
		}
	}
	return out, nil
}

func newServer(t *testing.T, questions ...*entity.Question) *http.ServeMux {
	t.Helper()
	svc := quizUC.NewService(&memQuestions{questions: questions},
		&memQuizzes{sessions: map[string]*entity.QuizSession{}, responses: map[string]*entity.Response{}},
		nil, 2)
	mux := http.NewServeMux()
	quizhttp.Register(mux, svc)
	return mux
}

func sampleQuestion() *entity.Question {
	return &entity.Question{
		ID:         questionID,
		Prompt:     "What is it?",
		Difficulty: entity.DifficultyMedium,
		Status:     entity.QuestionStatusActive,
		Reviewed:   true,
		Choices: []entity.Choice{
			{ID: wrongID, Text: "Wrong", OrderIndex: 1},
			{ID: rightID, Text: "Right", IsCorrect: true, OrderIndex: 0},
		},
	}
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestDraw_HidesCorrectFlag(t *testing.T) {
	rec := do(t, newServer(t, sampleQuestion()), http.MethodGet, "/quiz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "is_correct")
	assert.NotContains(t, rec.Body.String(), "IsCorrect")

	var body struct {
		Questions []quizhttp.QuestionDTO `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Questions, 1)
	require.Len(t, body.Questions[0].Choices, 2)
	assert.Equal(t, "Right", body.Questions[0].Choices[0].Text, "choices follow order_index")
}

func TestDraw_NoQuestions(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/quiz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func startSession(t *testing.T, mux http.Handler) string {
	t.Helper()
	rec := do(t, mux, http.MethodPost, "/quiz/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var s quizhttp.SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, 2, s.TotalQuestions)
	return s.SessionID
}

func TestQuizFlow(t *testing.T) {
	mux := newServer(t, sampleQuestion())
	sid := startSession(t, mux)

	rec := do(t, mux, http.MethodPost, "/quiz/respond",
		`{"session_id":"`+sid+`","question_id":"`+questionID+`","choice_id":"`+rightID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var ans quizUC.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.True(t, ans.IsCorrect)
	assert.Equal(t, rightID, ans.CorrectChoiceID)
	assert.Equal(t, quizUC.Score{Correct: 1, Answered: 1, Total: 2}, ans.RunningScore)

	rec = do(t, mux, http.MethodPost, "/quiz/respond",
		`{"session_id":"`+sid+`","question_id":"`+questionID+`","choice_id":"`+wrongID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ans))
	assert.True(t, ans.AlreadyAnswered)
	assert.True(t, ans.IsCorrect, "first answer stands")

	rec = do(t, mux, http.MethodPost, "/quiz/finish", `{"session_id":"`+sid+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res quizhttp.ResultDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 50, res.Percentage)
	assert.Equal(t, entity.ScoreMessage(50), res.Message)
	assert.False(t, res.EmailQueued)
	assert.Len(t, res.Details, 1)

	rec = do(t, mux, http.MethodPost, "/quiz/respond",
		`{"session_id":"`+sid+`","question_id":"`+questionID+`","choice_id":"`+rightID+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRespond_Errors(t *testing.T) {
	mux := newServer(t, sampleQuestion())
	sid := startSession(t, mux)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown field", `{"session":"x"}`, http.StatusBadRequest},
		{"bad session id", `{"session_id":"x","question_id":"` + questionID + `","choice_id":"` + rightID + `"}`, http.StatusBadRequest},
		{"unknown session", `{"session_id":"` + otherID + `","question_id":"` + questionID + `","choice_id":"` + rightID + `"}`, http.StatusNotFound},
		{"unknown question", `{"session_id":"` + sid + `","question_id":"` + otherID + `","choice_id":"` + rightID + `"}`, http.StatusNotFound},
		{"foreign choice", `{"session_id":"` + sid + `","question_id":"` + questionID + `","choice_id":"` + otherID + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPost, "/quiz/respond", tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestFinish_InvalidEmail(t *testing.T) {
	mux := newServer(t, sampleQuestion())
	sid := startSession(t, mux)

	rec := do(t, mux, http.MethodPost, "/quiz/finish", `{"session_id":"`+sid+`","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
