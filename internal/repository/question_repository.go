package repository

import (
	"context"
	"time"

	"healthquiz/internal/domain/entity"
)

// QuestionFilter narrows admin question listings.
type QuestionFilter struct {
	Status *entity.QuestionStatus // nil = every status
	Offset int
	Limit  int
}

// QuestionWithStats is a question joined with its article and response counts.
type QuestionWithStats struct {
	Question            *entity.Question
	ArticleTitle        string
	ArticleSource       string
	RecentResponseCount int
	TotalResponseCount  int
}

// QuestionRepository persists questions and their choices.
//
// Status changes are conditional updates keyed on the current status, so each
// transition method reports whether a row actually moved. A false result with
// a nil error means the question is missing or in the wrong state.
type QuestionRepository interface {
	// Create inserts the question and its choices atomically.
	Create(ctx context.Context, q *entity.Question) error
	// Get returns the question with choices ordered by order_index, or (nil, nil).
	Get(ctx context.Context, id string) (*entity.Question, error)
	CountByArticle(ctx context.Context, articleID string) (int, error)
	// ListForQuiz returns up to limit reviewed active questions with their choices.
	ListForQuiz(ctx context.Context, limit int) ([]*entity.Question, error)
	// List returns questions matching f newest first; recentSince bounds RecentResponseCount.
	List(ctx context.Context, f QuestionFilter, recentSince time.Time) ([]QuestionWithStats, error)
	Count(ctx context.Context, f QuestionFilter) (int64, error)

	// Archive moves an active question to archived and schedules its deletion.
	Archive(ctx context.Context, id, reason, actor string, at, deleteAt time.Time) (bool, error)
	// Restore moves an archived question back to active and clears the archive fields.
	Restore(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkDeleted moves an archived question to deleted when its deletion time
	// is before now and it has no response answered at or after recentSince.
	MarkDeleted(ctx context.Context, id string, now, recentSince time.Time) (bool, error)

	// ListExpired returns archived questions with scheduled_deletion_at before now.
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Question, error)
	// CountResponsesSince counts responses to the question answered at or after since.
	CountResponsesSince(ctx context.Context, questionID string, since time.Time) (int, error)
	CountByStatus(ctx context.Context, status entity.QuestionStatus) (int64, error)
}
