package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/domain/entity"
	pg "healthquiz/internal/infra/adapter/persistence/postgres"
	"healthquiz/internal/repository"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var questionCols = []string{
	"id", "article_id", "prompt", "explanation", "source_span", "difficulty",
	"tags", "reviewed", "status", "archived_at", "archived_by", "archived_reason",
	"scheduled_deletion_at", "created_at", "updated_at",
}

const (
	qID = "7d1c8a0e-4b9f-4e8b-9a3a-5e2f1d6c7b80"
	aID = "0b6f3a52-1c1e-4d55-9a6b-0d7c2b8f9e01"
)

func activeQuestionRow(id string, now time.Time) []driver.Value {
	return []driver.Value{
		id, aID, "Which vaccine is given yearly?", "Flu strains change.", "get a flu vaccine every year",
		"medium", "{vaccines,flu}", true, "active", nil, nil, nil, nil, now, now,
	}
}

/* ─────────────────────────── 1. Archive ─────────────────────────── */

func TestQuestionRepo_Archive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	deleteAt := at.Add(entity.RetentionPeriod)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE questions")).
		WithArgs(qID, "archived", at, "admin", "outdated", deleteAt, "active").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := pg.NewQuestionRepo(db).Archive(context.Background(), qID, "outdated", "admin", at, deleteAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepo_Archive_WrongState(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = $7")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := pg.NewQuestionRepo(db).Archive(context.Background(), qID, "r", "a", time.Now(), time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuestionRepo_Archive_StorageError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE questions").WillReturnError(errors.New("connection reset"))

	ok, err := pg.NewQuestionRepo(db).Archive(context.Background(), qID, "r", "a", time.Now(), time.Now())
	assert.Error(t, err)
	assert.False(t, ok)
}

/* ─────────────────────────── 2. Restore ─────────────────────────── */

func TestQuestionRepo_Restore(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("archived_at = NULL")).
		WithArgs(qID, "active", at, "archived").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := pg.NewQuestionRepo(db).Restore(context.Background(), qID, at)
	require.NoError(t, err)
	assert.True(t, ok)
}

/* ─────────────────────────── 3. MarkDeleted ─────────────────────────── */

func TestQuestionRepo_MarkDeleted(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	since := now.Add(-entity.ProtectionWindow)

	mock.ExpectExec(regexp.QuoteMeta("NOT EXISTS")).
		WithArgs(qID, "deleted", now, "archived", since).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("NOT EXISTS")).
		WithArgs(qID, "deleted", now, "archived", since).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := pg.NewQuestionRepo(db)
	ok, err := repo.MarkDeleted(context.Background(), qID, now, since)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkDeleted(context.Background(), qID, now, since)
	require.NoError(t, err)
	assert.False(t, ok)
}

/* ─────────────────────────── 4. ListExpired ─────────────────────────── */

func TestQuestionRepo_ListExpired(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	archivedAt := now.Add(-40 * 24 * time.Hour)
	deleteAt := archivedAt.Add(entity.RetentionPeriod)

	rows := sqlmock.NewRows(questionCols).AddRow(
		qID, aID, "p", "e", "s", "easy", "{}", true, "archived",
		archivedAt, "admin", "stale", deleteAt, archivedAt, archivedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("scheduled_deletion_at < $2")).
		WithArgs("archived", now).
		WillReturnRows(rows)

	got, err := pg.NewQuestionRepo(db).ListExpired(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.QuestionStatusArchived, got[0].Status)
	assert.Equal(t, "admin", got[0].ArchivedBy)
	require.NotNil(t, got[0].ScheduledDeletionAt)
	assert.Equal(t, deleteAt, *got[0].ScheduledDeletionAt)
	assert.Empty(t, got[0].Tags)
}

/* ─────────────────────────── 5. Get ─────────────────────────── */

func TestQuestionRepo_Get_WithChoices(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(qID).
		WillReturnRows(sqlmock.NewRows(questionCols).AddRow(activeQuestionRow(qID, now)...))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE question_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "text", "is_correct", "order_index"}).
			AddRow("c0", qID, "Flu", true, 0).
			AddRow("c1", qID, "Measles", false, 1))

	q, err := pg.NewQuestionRepo(db).Get(context.Background(), qID)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, []string{"vaccines", "flu"}, q.Tags)
	assert.Nil(t, q.ArchivedAt)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "c0", q.CorrectChoice().ID)
}

func TestQuestionRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM questions").WillReturnRows(sqlmock.NewRows(questionCols))

	q, err := pg.NewQuestionRepo(db).Get(context.Background(), qID)
	assert.NoError(t, err)
	assert.Nil(t, q)
}

/* ─────────────────────────── 6. Create ─────────────────────────── */

func TestQuestionRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	q := &entity.Question{
		ID: qID, ArticleID: aID, Prompt: "p", Difficulty: entity.DifficultyMedium,
		Reviewed: true, Status: entity.QuestionStatusActive, CreatedAt: now, UpdatedAt: now,
		Choices: []entity.Choice{
			{ID: "c0", Text: "A", IsCorrect: true, OrderIndex: 0},
			{ID: "c1", Text: "B", OrderIndex: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO questions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO choices").WithArgs("c0", qID, "A", true, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO choices").WithArgs("c1", qID, "B", false, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, pg.NewQuestionRepo(db).Create(context.Background(), q))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepo_Create_RollsBackOnChoiceError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO questions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO choices").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := pg.NewQuestionRepo(db).Create(context.Background(), &entity.Question{
		ID: qID, Choices: []entity.Choice{{ID: "c0"}},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ─────────────────────────── 7. List (admin) ─────────────────────────── */

func TestQuestionRepo_List_StatusFilter(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	since := now.Add(-entity.ProtectionWindow)
	status := entity.QuestionStatusActive

	cols := append(append([]string{}, questionCols...), "title", "source", "recent", "total")
	row := append(activeQuestionRow(qID, now), "Flu basics", "cdc.gov", int64(3), int64(12))

	mock.ExpectQuery(regexp.QuoteMeta("FROM questions q LEFT JOIN articles a ON a.id = q.article_id WHERE q.status = $2")).
		WithArgs(since, "active").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(row...))

	got, err := pg.NewQuestionRepo(db).List(context.Background(),
		repository.QuestionFilter{Status: &status, Limit: 50}, since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Flu basics", got[0].ArticleTitle)
	assert.Equal(t, 3, got[0].RecentResponseCount)
	assert.Equal(t, 12, got[0].TotalResponseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepo_Count_AllStatuses(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM questions q")).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := pg.NewQuestionRepo(db).Count(context.Background(), repository.QuestionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

/* ─────────────────────────── 8. Counters ─────────────────────────── */

func TestQuestionRepo_CountResponsesSince(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	since := time.Now().Add(-entity.ProtectionWindow)
	mock.ExpectQuery(regexp.QuoteMeta("answered_at >= $2")).
		WithArgs(qID, since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := pg.NewQuestionRepo(db).CountResponsesSince(context.Background(), qID, since)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
