package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/repository"
)

type QuizRepo struct{ db *sql.DB }

func NewQuizRepo(db *sql.DB) repository.QuizRepository {
	return &QuizRepo{db: db}
}

func (repo *QuizRepo) CreateSession(ctx context.Context, s *entity.QuizSession) error {
	const query = `
INSERT INTO quiz_sessions (id, started_at, total_questions, correct_answers)
VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query,
		s.ID, s.StartedAt, s.TotalQuestions, s.CorrectAnswers); err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

func (repo *QuizRepo) GetSession(ctx context.Context, id string) (*entity.QuizSession, error) {
	const query = `
SELECT id, started_at, finished_at, email, total_questions, correct_answers
FROM quiz_sessions
WHERE id = $1`
	var (
		s          entity.QuizSession
		finishedAt sql.NullTime
		email      sql.NullString
	)
	err := repo.db.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.StartedAt, &finishedAt, &email, &s.TotalQuestions, &s.CorrectAnswers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetSession: %w", err)
	}
	s.FinishedAt = timePtr(finishedAt)
	s.Email = email.String
	return &s, nil
}

func (repo *QuizRepo) FinishSession(ctx context.Context, id, email string, at time.Time) error {
	const query = `
UPDATE quiz_sessions
SET finished_at = $2,
    email = COALESCE($3, email)
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, at, nullString(email))
	if err != nil {
		return fmt.Errorf("FinishSession: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return fmt.Errorf("FinishSession: RowsAffected: %w", err)
	}
	if !ok {
		return fmt.Errorf("FinishSession: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *QuizRepo) GetResponse(ctx context.Context, sessionID, questionID string) (*entity.Response, error) {
	const query = `
SELECT id, session_id, question_id, choice_id, is_correct, answered_at
FROM responses
WHERE session_id = $1 AND question_id = $2`
	var r entity.Response
	err := repo.db.QueryRowContext(ctx, query, sessionID, questionID).
		Scan(&r.ID, &r.SessionID, &r.QuestionID, &r.ChoiceID, &r.IsCorrect, &r.AnsweredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetResponse: %w", err)
	}
	return &r, nil
}

func (repo *QuizRepo) RecordResponse(ctx context.Context, r *entity.Response) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("RecordResponse: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `
INSERT INTO responses (id, session_id, question_id, choice_id, is_correct, answered_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (session_id, question_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insert,
		r.ID, r.SessionID, r.QuestionID, r.ChoiceID, r.IsCorrect, r.AnsweredAt)
	if err != nil {
		return fmt.Errorf("RecordResponse: insert: %w", err)
	}
	inserted, err := affectedOne(res)
	if err != nil {
		return fmt.Errorf("RecordResponse: RowsAffected: %w", err)
	}
	if !inserted {
		err = fmt.Errorf("RecordResponse: %w", entity.ErrDuplicate)
		return err
	}

	if r.IsCorrect {
		const bump = `UPDATE quiz_sessions SET correct_answers = correct_answers + 1 WHERE id = $1`
		if _, err = tx.ExecContext(ctx, bump, r.SessionID); err != nil {
			return fmt.Errorf("RecordResponse: bump score: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("RecordResponse: Commit: %w", err)
	}
	return nil
}

func (repo *QuizRepo) CountResponses(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM responses WHERE session_id = $1`
	var n int
	if err := repo.db.QueryRowContext(ctx, query, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountResponses: %w", err)
	}
	return n, nil
}

func (repo *QuizRepo) ListResponseDetails(ctx context.Context, sessionID string) ([]repository.ResponseDetail, error) {
	const query = `
SELECT r.question_id, q.prompt, q.explanation, chosen.text, COALESCE(correct.text, ''), r.is_correct, r.answered_at,
       a.title, a.url
FROM responses r
JOIN questions q ON q.id = r.question_id
JOIN articles a ON a.id = q.article_id
JOIN choices chosen ON chosen.id = r.choice_id
LEFT JOIN choices correct ON correct.question_id = r.question_id AND correct.is_correct
WHERE r.session_id = $1
ORDER BY r.answered_at`
	rows, err := repo.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("ListResponseDetails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repository.ResponseDetail
	for rows.Next() {
		var d repository.ResponseDetail
		if err := rows.Scan(&d.QuestionID, &d.Prompt, &d.Explanation, &d.ChosenText,
			&d.CorrectText, &d.IsCorrect, &d.AnsweredAt, &d.ArticleTitle, &d.ArticleURL); err != nil {
			return nil, fmt.Errorf("ListResponseDetails: Scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListResponseDetails: rows.Err: %w", err)
	}
	return out, nil
}
