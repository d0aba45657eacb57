package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
)

const questionColumns = `id, article_id, prompt, explanation, source_span, difficulty, tags, reviewed, status,
       archived_at, archived_by, archived_reason, scheduled_deletion_at, created_at, updated_at`

// psql builds the dynamic admin queries with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type QuestionRepo struct{ db *sql.DB }

func NewQuestionRepo(db *sql.DB) repository.QuestionRepository {
	return &QuestionRepo{db: db}
}

func scanQuestion(s interface{ Scan(...any) error }, extra ...any) (*entity.Question, error) {
	var (
		q                             entity.Question
		difficulty, status            string
		archivedAt, scheduledDeletion sql.NullTime
		archivedBy, archivedReason    sql.NullString
	)
	dest := []any{
		&q.ID, &q.ArticleID, &q.Prompt, &q.Explanation, &q.SourceSpan,
		&difficulty, pq.Array(&q.Tags), &q.Reviewed, &status,
		&archivedAt, &archivedBy, &archivedReason, &scheduledDeletion,
		&q.CreatedAt, &q.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	q.Difficulty = entity.Difficulty(difficulty)
	q.Status = entity.QuestionStatus(status)
	q.ArchivedAt = timePtr(archivedAt)
	q.ArchivedBy = archivedBy.String
	q.ArchivedReason = archivedReason.String
	q.ScheduledDeletionAt = timePtr(scheduledDeletion)
	return &q, nil
}

func (repo *QuestionRepo) Create(ctx context.Context, q *entity.Question) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuestion = `
INSERT INTO questions
       (id, article_id, prompt, explanation, source_span, difficulty, tags, reviewed, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err = tx.ExecContext(ctx, insertQuestion,
		q.ID, q.ArticleID, q.Prompt, q.Explanation, q.SourceSpan,
		string(q.Difficulty), pq.Array(q.Tags), q.Reviewed, string(q.Status),
		q.CreatedAt, q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Create: insert question: %w", err)
	}

	const insertChoice = `
INSERT INTO choices (id, question_id, text, is_correct, order_index)
VALUES ($1, $2, $3, $4, $5)`
	for _, c := range q.Choices {
		if _, err = tx.ExecContext(ctx, insertChoice,
			c.ID, q.ID, c.Text, c.IsCorrect, c.OrderIndex); err != nil {
			return fmt.Errorf("Create: insert choice: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Create: Commit: %w", err)
	}
	return nil
}

func (repo *QuestionRepo) Get(ctx context.Context, id string) (*entity.Question, error) {
	const query = `
SELECT ` + questionColumns + `
FROM questions
WHERE id = $1`
	q, err := scanQuestion(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if err := repo.attachChoices(ctx, []*entity.Question{q}); err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return q, nil
}

func (repo *QuestionRepo) CountByArticle(ctx context.Context, articleID string) (int, error) {
	const query = `SELECT COUNT(*) FROM questions WHERE article_id = $1 AND status <> 'deleted'`
	var n int
	if err := repo.db.QueryRowContext(ctx, query, articleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountByArticle: %w", err)
	}
	return n, nil
}

func (repo *QuestionRepo) ListForQuiz(ctx context.Context, limit int) ([]*entity.Question, error) {
	const query = `
SELECT ` + questionColumns + `
FROM questions
WHERE status = $1 AND reviewed = TRUE
ORDER BY created_at DESC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, string(entity.QuestionStatusActive), limit)
	if err != nil {
		return nil, fmt.Errorf("ListForQuiz: %w", err)
	}
	defer func() { _ = rows.Close() }()

	questions := make([]*entity.Question, 0, limit)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("ListForQuiz: Scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListForQuiz: rows.Err: %w", err)
	}

	if err := repo.attachChoices(ctx, questions); err != nil {
		return nil, fmt.Errorf("ListForQuiz: %w", err)
	}
	return questions, nil
}

// attachChoices loads choices for all questions in one round trip.
func (repo *QuestionRepo) attachChoices(ctx context.Context, questions []*entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Question, len(questions))
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
		ids = append(ids, q.ID)
	}

	const query = `
SELECT id, question_id, text, is_correct, order_index
FROM choices
WHERE question_id = ANY($1)
ORDER BY question_id, order_index`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("choices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c entity.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.IsCorrect, &c.OrderIndex); err != nil {
			return fmt.Errorf("choices: Scan: %w", err)
		}
		if q, ok := byID[c.QuestionID]; ok {
			q.Choices = append(q.Choices, c)
		}
	}
	return rows.Err()
}

func (repo *QuestionRepo) listQuery(f repository.QuestionFilter) sq.SelectBuilder {
	b := psql.Select().From("questions q")
	if f.Status != nil {
		b = b.Where(sq.Eq{"q.status": string(*f.Status)})
	}
	return b
}

func (repo *QuestionRepo) List(ctx context.Context, f repository.QuestionFilter, recentSince time.Time) ([]repository.QuestionWithStats, error) {
	b := repo.listQuery(f).
		Columns(
			"q.id", "q.article_id", "q.prompt", "q.explanation", "q.source_span", "q.difficulty",
			"q.tags", "q.reviewed", "q.status", "q.archived_at", "q.archived_by", "q.archived_reason",
			"q.scheduled_deletion_at", "q.created_at", "q.updated_at",
			"COALESCE(a.title, '')", "COALESCE(a.source, '')",
		).
		Column(sq.Expr("(SELECT COUNT(*) FROM responses r WHERE r.question_id = q.id AND r.answered_at >= ?)", recentSince)).
		Column("(SELECT COUNT(*) FROM responses r WHERE r.question_id = q.id)").
		LeftJoin("articles a ON a.id = q.article_id").
		OrderBy("q.created_at DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("List: ToSql: %w", err)
	}
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]repository.QuestionWithStats, 0, f.Limit)
	for rows.Next() {
		var w repository.QuestionWithStats
		q, err := scanQuestion(rows, &w.ArticleTitle, &w.ArticleSource, &w.RecentResponseCount, &w.TotalResponseCount)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		w.Question = q
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return out, nil
}

func (repo *QuestionRepo) Count(ctx context.Context, f repository.QuestionFilter) (int64, error) {
	query, args, err := repo.listQuery(f).Column("COUNT(*)").ToSql()
	if err != nil {
		return 0, fmt.Errorf("Count: ToSql: %w", err)
	}
	var n int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *QuestionRepo) Archive(ctx context.Context, id, reason, actor string, at, deleteAt time.Time) (bool, error) {
	from, to, _ := entity.TransitionArchive.Edge()
	const query = `
UPDATE questions
SET status = $2,
    archived_at = $3,
    archived_by = $4,
    archived_reason = $5,
    scheduled_deletion_at = $6,
    updated_at = $3
WHERE id = $1 AND status = $7`
	res, err := repo.db.ExecContext(ctx, query,
		id, string(to), at, nullString(actor), nullString(reason), deleteAt, string(from))
	if err != nil {
		return false, fmt.Errorf("Archive: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("Archive: RowsAffected: %w", err)
	}
	return ok, nil
}

func (repo *QuestionRepo) Restore(ctx context.Context, id string, at time.Time) (bool, error) {
	from, to, _ := entity.TransitionRestore.Edge()
	const query = `
UPDATE questions
SET status = $2,
    archived_at = NULL,
    archived_by = NULL,
    archived_reason = NULL,
    scheduled_deletion_at = NULL,
    updated_at = $3
WHERE id = $1 AND status = $4`
	res, err := repo.db.ExecContext(ctx, query, id, string(to), at, string(from))
	if err != nil {
		return false, fmt.Errorf("Restore: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("Restore: RowsAffected: %w", err)
	}
	return ok, nil
}

func (repo *QuestionRepo) MarkDeleted(ctx context.Context, id string, now, recentSince time.Time) (bool, error) {
	from, to, _ := entity.TransitionSweep.Edge()
	// protection is re-checked in the same statement so a response landing
	// between preview and delete still wins
	const query = `
UPDATE questions q
SET status = $2,
    updated_at = $3
WHERE q.id = $1
  AND q.status = $4
  AND q.scheduled_deletion_at < $3
  AND NOT EXISTS (
      SELECT 1 FROM responses r
      WHERE r.question_id = q.id AND r.answered_at >= $5
  )`
	res, err := repo.db.ExecContext(ctx, query, id, string(to), now, string(from), recentSince)
	if err != nil {
		return false, fmt.Errorf("MarkDeleted: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return false, fmt.Errorf("MarkDeleted: RowsAffected: %w", err)
	}
	return ok, nil
}

func (repo *QuestionRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Question, error) {
	const query = `
SELECT ` + questionColumns + `
FROM questions
WHERE status = $1 AND scheduled_deletion_at < $2
ORDER BY scheduled_deletion_at`
	rows, err := repo.db.QueryContext(ctx, query, string(entity.QuestionStatusArchived), now)
	if err != nil {
		return nil, fmt.Errorf("ListExpired: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []*entity.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("ListExpired: Scan: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListExpired: rows.Err: %w", err)
	}
	return questions, nil
}

func (repo *QuestionRepo) CountResponsesSince(ctx context.Context, questionID string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM responses WHERE question_id = $1 AND answered_at >= $2`
	var n int
	if err := repo.db.QueryRowContext(ctx, query, questionID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountResponsesSince: %w", err)
	}
	return n, nil
}

func (repo *QuestionRepo) CountByStatus(ctx context.Context, status entity.QuestionStatus) (int64, error) {
	const query = `SELECT COUNT(*) FROM questions WHERE status = $1`
	var n int64
	if err := repo.db.QueryRowContext(ctx, query, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountByStatus: %w", err)
	}
	return n, nil
}
