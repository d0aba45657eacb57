package repository

import (
	"context"
	"time"

	"healthquiz/internal/domain/entity"
)

// ResponseDetail is one answered question as shown in a result summary.
type ResponseDetail struct {
	QuestionID  string
	Prompt      string
	Explanation string
	ChosenText  string
	CorrectText string
	IsCorrect   bool
	AnsweredAt  time.Time

	ArticleTitle string
	ArticleURL   string
}

// QuizRepository persists quiz sessions and their responses.
// Getters return (nil, nil) when nothing matches.
type QuizRepository interface {
	CreateSession(ctx context.Context, s *entity.QuizSession) error
	GetSession(ctx context.Context, id string) (*entity.QuizSession, error)
	// FinishSession stamps finished_at and the optional email.
	FinishSession(ctx context.Context, id, email string, at time.Time) error

	GetResponse(ctx context.Context, sessionID, questionID string) (*entity.Response, error)
	// RecordResponse inserts r and bumps the session's correct_answers when r is correct.
	// It returns entity.ErrDuplicate if the question was already answered in the session.
	RecordResponse(ctx context.Context, r *entity.Response) error
	CountResponses(ctx context.Context, sessionID string) (int, error)
	ListResponseDetails(ctx context.Context, sessionID string) ([]ResponseDetail, error)
}
