package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/observability/metrics"
	"healthquiz/internal/repository"
	"healthquiz/internal/usecase/notify"
)

const (
	// DefaultQuestionsPerSession is used when QuestionsPerSession is unset.
	DefaultQuestionsPerSession = 10
	// drawPoolSize bounds how many candidates Draw shuffles.
	drawPoolSize = 50
)

// Score is the running tally of a session.
type Score struct {
	Correct  int `json:"correct"`
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Answer is the outcome of Respond.
type Answer struct {
	IsCorrect       bool   `json:"is_correct"`
	CorrectChoiceID string `json:"correct_choice_id"`
	AlreadyAnswered bool   `json:"already_answered,omitempty"`
	RunningScore    Score  `json:"running_score"`
}

// Result is the outcome of Finish.
type Result struct {
	SessionID   string
	Correct     int
	Total       int
	Percentage  int
	Message     string
	Email       string
	FinishedAt  time.Time
	Details     []repository.ResponseDetail
	EmailQueued bool
}

// Service runs quiz sessions.
type Service struct {
	Questions repository.QuestionRepository
	Quizzes   repository.QuizRepository
	// Notifier receives result emails; nil disables them.
	Notifier notify.Service

	QuestionsPerSession int

	Now     func() time.Time
	Shuffle func(n int, swap func(i, j int))
}

// NewService returns a Service drawing perSession questions per quiz.
func NewService(questions repository.QuestionRepository, quizzes repository.QuizRepository, notifier notify.Service, perSession int) *Service {
	return &Service{
		Questions:           questions,
		Quizzes:             quizzes,
		Notifier:            notifier,
		QuestionsPerSession: perSession,
		Now:                 time.Now,
		Shuffle:             rand.Shuffle,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) perSession() int {
	if s.QuestionsPerSession <= 0 {
		return DefaultQuestionsPerSession
	}
	return s.QuestionsPerSession
}

// Draw returns a random selection of reviewed active questions with their
// choices in display order.
func (s *Service) Draw(ctx context.Context) ([]*entity.Question, error) {
	pool, err := s.Questions.ListForQuiz(ctx, drawPoolSize)
	if err != nil {
		return nil, fmt.Errorf("draw questions: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}

	shuffle := s.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if n := s.perSession(); len(pool) > n {
		pool = pool[:n]
	}
	for _, q := range pool {
		sort.SliceStable(q.Choices, func(i, j int) bool {
			return q.Choices[i].OrderIndex < q.Choices[j].OrderIndex
		})
	}
	return pool, nil
}

// StartSession opens a new anonymous session.
func (s *Service) StartSession(ctx context.Context) (*entity.QuizSession, error) {
	sess := &entity.QuizSession{
		ID:             entity.NewID(),
		StartedAt:      s.now(),
		TotalQuestions: s.perSession(),
	}
	if err := s.Quizzes.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	metrics.RecordQuizSessionStarted()
	slog.Info("quiz session started", slog.String("session_id", sess.ID))
	return sess, nil
}

// Respond records the answer choiceID to questionID. Answering the same
// question twice is not an error: the first answer stands and the result is
// flagged AlreadyAnswered.
func (s *Service) Respond(ctx context.Context, sessionID, questionID, choiceID string) (*Answer, error) {
	ids := [][2]string{{"session_id", sessionID}, {"question_id", questionID}, {"choice_id", choiceID}}
	for _, f := range ids {
		if err := entity.ValidateID(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Finished() {
		return nil, ErrSessionFinished
	}

	q, err := s.Questions.Get(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("get question %s: %w", questionID, err)
	}
	if q == nil || q.Status != entity.QuestionStatusActive {
		return nil, ErrQuestionNotFound
	}
	correct := q.CorrectChoice()
	if correct == nil {
		return nil, fmt.Errorf("question %s has no correct choice", questionID)
	}

	prev, err := s.Quizzes.GetResponse(ctx, sessionID, questionID)
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	if prev != nil {
		return s.repeated(ctx, sessionID, prev, correct.ID)
	}

	var chosen *entity.Choice
	for i := range q.Choices {
		if q.Choices[i].ID == choiceID {
			chosen = &q.Choices[i]
			break
		}
	}
	if chosen == nil {
		return nil, ErrChoiceMismatch
	}

	r := &entity.Response{
		ID:         entity.NewID(),
		SessionID:  sessionID,
		QuestionID: questionID,
		ChoiceID:   choiceID,
		IsCorrect:  chosen.IsCorrect,
		AnsweredAt: s.now(),
	}
	if err := s.Quizzes.RecordResponse(ctx, r); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			prev, gerr := s.Quizzes.GetResponse(ctx, sessionID, questionID)
			if gerr == nil && prev != nil {
				return s.repeated(ctx, sessionID, prev, correct.ID)
			}
		}
		return nil, fmt.Errorf("record response: %w", err)
	}
	metrics.RecordQuizResponse(r.IsCorrect)

	score, err := s.score(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Answer{IsCorrect: r.IsCorrect, CorrectChoiceID: correct.ID, RunningScore: score}, nil
}

func (s *Service) repeated(ctx context.Context, sessionID string, prev *entity.Response, correctID string) (*Answer, error) {
	score, err := s.score(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Answer{
		IsCorrect:       prev.IsCorrect,
		CorrectChoiceID: correctID,
		AlreadyAnswered: true,
		RunningScore:    score,
	}, nil
}

func (s *Service) score(ctx context.Context, sessionID string) (Score, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return Score{}, err
	}
	answered, err := s.Quizzes.CountResponses(ctx, sessionID)
	if err != nil {
		return Score{}, fmt.Errorf("count responses: %w", err)
	}
	return Score{Correct: sess.CorrectAnswers, Answered: answered, Total: sess.TotalQuestions}, nil
}

func (s *Service) session(ctx context.Context, id string) (*entity.QuizSession, error) {
	sess, err := s.Quizzes.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Finish closes the session and scores it. When email is given the result is
// mailed in the background; delivery problems are only logged. Finishing an
// already finished session returns the stored result without sending again.
func (s *Service) Finish(ctx context.Context, sessionID, email string) (*Result, error) {
	if err := entity.ValidateID("session_id", sessionID); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail(email); err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	first := !sess.Finished()
	if first {
		at := s.now()
		if err := s.Quizzes.FinishSession(ctx, sessionID, email, at); err != nil {
			return nil, fmt.Errorf("finish session: %w", err)
		}
		sess.FinishedAt = &at
		sess.Email = email
		metrics.RecordQuizSessionFinished()
	}

	details, err := s.Quizzes.ListResponseDetails(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list response details: %w", err)
	}

	pct := sess.Percentage()
	res := &Result{
		SessionID:  sess.ID,
		Correct:    sess.CorrectAnswers,
		Total:      sess.TotalQuestions,
		Percentage: pct,
		Message:    entity.ScoreMessage(pct),
		Email:      sess.Email,
		FinishedAt: *sess.FinishedAt,
		Details:    details,
	}

	if first && email != "" && s.Notifier != nil {
		err := s.Notifier.NotifyQuizResult(ctx, &notify.QuizResult{
			SessionID:  res.SessionID,
			Email:      email,
			Percentage: res.Percentage,
			Correct:    res.Correct,
			Total:      res.Total,
			Message:    res.Message,
			Responses:  details,
		})
		if err != nil {
			slog.Warn("quiz result email not queued",
				slog.String("session_id", sessionID),
				slog.Any("error", err))
		} else {
			res.EmailQueued = true
		}
	}

	slog.Info("quiz session finished",
		slog.String("session_id", sessionID),
		slog.Int("percentage", pct),
		slog.Bool("first", first))
	return res, nil
}
