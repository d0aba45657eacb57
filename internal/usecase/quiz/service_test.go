package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
	"healthquiz/internal/usecase/notify"
	"healthquiz/internal/usecase/quiz"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type stubQuestions struct {
	repository.QuestionRepository
	questions []*entity.Question
	listErr   error
	limit     int
}

func (s *stubQuestions) ListForQuiz(_ context.Context, limit int) ([]*entity.Question, error) {
	s.limit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*entity.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

func (s *stubQuestions) Get(_ context.Context, id string) (*entity.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

type stubQuizzes struct {
	mu        sync.Mutex
	sessions  map[string]*entity.QuizSession
	responses map[string]*entity.Response // session|question
	details   []repository.ResponseDetail
	finishes  int
}

func newStubQuizzes() *stubQuizzes {
	return &stubQuizzes{
		sessions:  map[string]*entity.QuizSession{},
		responses: map[string]*entity.Response{},
	}
}

func (s *stubQuizzes) CreateSession(_ context.Context, sess *entity.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *stubQuizzes) GetSession(_ context.Context, id string) (*entity.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *stubQuizzes) FinishSession(_ context.Context, id, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishes++
	s.sessions[id].FinishedAt = &at
	s.sessions[id].Email = email
	return nil
}

func (s *stubQuizzes) GetResponse(_ context.Context, sessionID, questionID string) (*entity.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responses[sessionID+"|"+questionID], nil
}

func (s *stubQuizzes) RecordResponse(_ context.Context, r *entity.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.SessionID + "|" + r.QuestionID
	if _, ok := s.responses[key]; ok {
		return entity.ErrDuplicate
	}
	s.responses[key] = r
	if r.IsCorrect {
		s.sessions[r.SessionID].CorrectAnswers++
	}
	return nil
}

func (s *stubQuizzes) CountResponses(_ context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.responses {
		if r.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (s *stubQuizzes) ListResponseDetails(_ context.Context, _ string) ([]repository.ResponseDetail, error) {
	return s.details, nil
}

type stubNotifier struct {
	notify.Service
	results []*notify.QuizResult
	err     error
}

func (s *stubNotifier) NotifyQuizResult(_ context.Context, r *notify.QuizResult) error {
	s.results = append(s.results, r)
	return s.err
}

func question(prompt string) *entity.Question {
	q := &entity.Question{ID: entity.NewID(), Prompt: prompt, Status: entity.QuestionStatusActive, Reviewed: true}
	// stored out of display order
	for _, i := range []int{2, 0, 3, 1} {
		q.Choices = append(q.Choices, entity.Choice{
			ID:         entity.NewID(),
			QuestionID: q.ID,
			Text:       prompt + string(rune('A'+i)),
			IsCorrect:  i == 1,
			OrderIndex: i,
		})
	}
	return q
}

func choiceAt(q *entity.Question, order int) string {
	for _, c := range q.Choices {
		if c.OrderIndex == order {
			return c.ID
		}
	}
	return ""
}

func newService(qs *stubQuestions, qz *stubQuizzes, n notify.Service) *quiz.Service {
	svc := quiz.NewService(qs, qz, n, 3)
	svc.Now = func() time.Time { return now }
	svc.Shuffle = func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	return svc
}

func TestDraw(t *testing.T) {
	qs := &stubQuestions{}
	for _, p := range []string{"q1", "q2", "q3", "q4", "q5"} {
		qs.questions = append(qs.questions, question(p))
	}
	svc := newService(qs, newStubQuizzes(), nil)

	got, err := svc.Draw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, qs.limit)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"q5", "q4", "q3"}, []string{got[0].Prompt, got[1].Prompt, got[2].Prompt})
	for _, q := range got {
		for i, c := range q.Choices {
			assert.Equal(t, i, c.OrderIndex)
		}
	}
}

func TestDraw_Errors(t *testing.T) {
	svc := newService(&stubQuestions{}, newStubQuizzes(), nil)
	_, err := svc.Draw(context.Background())
	assert.ErrorIs(t, err, quiz.ErrNoQuestions)

	boom := errors.New("db down")
	svc = newService(&stubQuestions{listErr: boom}, newStubQuizzes(), nil)
	_, err = svc.Draw(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStartSession(t *testing.T) {
	qz := newStubQuizzes()
	svc := newService(&stubQuestions{}, qz, nil)

	sess, err := svc.StartSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sess.TotalQuestions)
	assert.Equal(t, now, sess.StartedAt)
	assert.Contains(t, qz.sessions, sess.ID)

	svc.QuestionsPerSession = 0
	sess, err = svc.StartSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, quiz.DefaultQuestionsPerSession, sess.TotalQuestions)
}

func TestRespond(t *testing.T) {
	q1, q2 := question("q1"), question("q2")
	qz := newStubQuizzes()
	svc := newService(&stubQuestions{questions: []*entity.Question{q1, q2}}, qz, nil)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)

	ans, err := svc.Respond(ctx, sess.ID, q1.ID, choiceAt(q1, 1))
	require.NoError(t, err)
	assert.Equal(t, &quiz.Answer{
		IsCorrect:       true,
		CorrectChoiceID: choiceAt(q1, 1),
		RunningScore:    quiz.Score{Correct: 1, Answered: 1, Total: 3},
	}, ans)

	ans, err = svc.Respond(ctx, sess.ID, q2.ID, choiceAt(q2, 3))
	require.NoError(t, err)
	assert.False(t, ans.IsCorrect)
	assert.Equal(t, choiceAt(q2, 1), ans.CorrectChoiceID)
	assert.Equal(t, quiz.Score{Correct: 1, Answered: 2, Total: 3}, ans.RunningScore)

	t.Run("repeat keeps first answer", func(t *testing.T) {
		ans, err := svc.Respond(ctx, sess.ID, q2.ID, choiceAt(q2, 1))
		require.NoError(t, err)
		assert.True(t, ans.AlreadyAnswered)
		assert.False(t, ans.IsCorrect)
		assert.Equal(t, quiz.Score{Correct: 1, Answered: 2, Total: 3}, ans.RunningScore)
	})

	t.Run("choice from another question", func(t *testing.T) {
		q3 := question("q3")
		svc.Questions.(*stubQuestions).questions = append(svc.Questions.(*stubQuestions).questions, q3)
		_, err := svc.Respond(ctx, sess.ID, q3.ID, choiceAt(q1, 1))
		assert.ErrorIs(t, err, quiz.ErrChoiceMismatch)
	})
}

func TestRespond_Errors(t *testing.T) {
	q := question("q")
	archived := question("old")
	archived.Status = entity.QuestionStatusArchived
	qz := newStubQuizzes()
	svc := newService(&stubQuestions{questions: []*entity.Question{q, archived}}, qz, nil)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = svc.Respond(ctx, "nope", q.ID, choiceAt(q, 0))
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "session_id", ve.Field)

	_, err = svc.Respond(ctx, entity.NewID(), q.ID, choiceAt(q, 0))
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)

	_, err = svc.Respond(ctx, sess.ID, entity.NewID(), choiceAt(q, 0))
	assert.ErrorIs(t, err, quiz.ErrQuestionNotFound)

	_, err = svc.Respond(ctx, sess.ID, archived.ID, choiceAt(archived, 0))
	assert.ErrorIs(t, err, quiz.ErrQuestionNotFound)

	_, err = svc.Finish(ctx, sess.ID, "")
	require.NoError(t, err)
	_, err = svc.Respond(ctx, sess.ID, q.ID, choiceAt(q, 0))
	assert.ErrorIs(t, err, quiz.ErrSessionFinished)
}

func TestFinish(t *testing.T) {
	q1, q2 := question("q1"), question("q2")
	qz := newStubQuizzes()
	qz.details = []repository.ResponseDetail{{QuestionID: q1.ID, Prompt: "q1", IsCorrect: true}}
	n := &stubNotifier{}
	svc := newService(&stubQuestions{questions: []*entity.Question{q1, q2}}, qz, n)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, sess.ID, q1.ID, choiceAt(q1, 1))
	require.NoError(t, err)
	_, err = svc.Respond(ctx, sess.ID, q2.ID, choiceAt(q2, 1))
	require.NoError(t, err)

	res, err := svc.Finish(ctx, sess.ID, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 67, res.Percentage)
	assert.Equal(t, entity.ScoreMessage(67), res.Message)
	assert.Equal(t, now, res.FinishedAt)
	assert.True(t, res.EmailQueued)
	assert.Len(t, res.Details, 1)

	require.Len(t, n.results, 1)
	assert.Equal(t, "reader@example.com", n.results[0].Email)
	assert.Equal(t, 67, n.results[0].Percentage)

	again, err := svc.Finish(ctx, sess.ID, "someone@else.org")
	require.NoError(t, err)
	assert.Equal(t, res.Percentage, again.Percentage)
	assert.Equal(t, "reader@example.com", again.Email)
	assert.False(t, again.EmailQueued)
	assert.Equal(t, 1, qz.finishes)
	assert.Len(t, n.results, 1, "finishing twice sends one email")
}

func TestFinish_NotifierFailureIsNotFatal(t *testing.T) {
	qz := newStubQuizzes()
	n := &stubNotifier{err: errors.New("queue closed")}
	svc := newService(&stubQuestions{}, qz, n)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)

	res, err := svc.Finish(ctx, sess.ID, "a@b.co")
	require.NoError(t, err)
	assert.False(t, res.EmailQueued)
	assert.Equal(t, 0, res.Percentage)
}

func TestFinish_Validation(t *testing.T) {
	svc := newService(&stubQuestions{}, newStubQuizzes(), nil)
	ctx := context.Background()

	_, err := svc.Finish(ctx, entity.NewID(), "not-an-email")
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.Finish(ctx, entity.NewID(), "")
	assert.ErrorIs(t, err, quiz.ErrSessionNotFound)

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	res, err := svc.Finish(ctx, sess.ID, "")
	require.NoError(t, err)
	assert.False(t, res.EmailQueued)
}
