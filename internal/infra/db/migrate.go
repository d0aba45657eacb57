package db

import (
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []struct {
	name string
	stmt string
}{
	{"articles", `
CREATE TABLE IF NOT EXISTS articles (
    id           UUID PRIMARY KEY,
    url          TEXT NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    source       TEXT NOT NULL,
    published_at TIMESTAMPTZ NOT NULL,
    clean_text   TEXT NOT NULL,
    status       VARCHAR(20) NOT NULL DEFAULT 'pending'
                 CHECK (status IN ('pending', 'processed', 'approved', 'rejected')),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"questions", `
CREATE TABLE IF NOT EXISTS questions (
    id                    UUID PRIMARY KEY,
    article_id            UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    prompt                TEXT NOT NULL,
    explanation           TEXT NOT NULL DEFAULT '',
    source_span           TEXT NOT NULL DEFAULT '',
    difficulty            VARCHAR(10) NOT NULL DEFAULT 'medium'
                          CHECK (difficulty IN ('easy', 'medium', 'hard')),
    tags                  TEXT[] NOT NULL DEFAULT '{}',
    reviewed              BOOLEAN NOT NULL DEFAULT FALSE,
    status                VARCHAR(10) NOT NULL DEFAULT 'active'
                          CHECK (status IN ('active', 'archived', 'deleted')),
    archived_at           TIMESTAMPTZ,
    archived_by           TEXT,
    archived_reason       TEXT,
    scheduled_deletion_at TIMESTAMPTZ,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"choices", `
CREATE TABLE IF NOT EXISTS choices (
    id          UUID PRIMARY KEY,
    question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
    text        TEXT NOT NULL,
    is_correct  BOOLEAN NOT NULL DEFAULT FALSE,
    order_index INTEGER NOT NULL
)`},
	{"quiz_sessions", `
CREATE TABLE IF NOT EXISTS quiz_sessions (
    id              UUID PRIMARY KEY,
    started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at     TIMESTAMPTZ,
    email           TEXT,
    total_questions INTEGER NOT NULL,
    correct_answers INTEGER NOT NULL DEFAULT 0
)`},
	{"responses", `
CREATE TABLE IF NOT EXISTS responses (
    id          UUID PRIMARY KEY,
    session_id  UUID NOT NULL REFERENCES quiz_sessions(id) ON DELETE CASCADE,
    question_id UUID NOT NULL REFERENCES questions(id),
    choice_id   UUID NOT NULL REFERENCES choices(id),
    is_correct  BOOLEAN NOT NULL,
    answered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (session_id, question_id)
)`},
	{"idx_articles_created_at", `CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC)`},
	{"idx_questions_article_id", `CREATE INDEX IF NOT EXISTS idx_questions_article_id ON questions(article_id)`},
	{"idx_questions_status", `CREATE INDEX IF NOT EXISTS idx_questions_status ON questions(status)`},
	// sweep candidates
	{"idx_questions_scheduled_deletion", `
CREATE INDEX IF NOT EXISTS idx_questions_scheduled_deletion
    ON questions(scheduled_deletion_at) WHERE status = 'archived'`},
	{"idx_choices_question_id", `CREATE INDEX IF NOT EXISTS idx_choices_question_id ON choices(question_id, order_index)`},
	// protection lookups
	{"idx_responses_question_answered", `CREATE INDEX IF NOT EXISTS idx_responses_question_answered ON responses(question_id, answered_at DESC)`},
}

// MigrateUp creates tables and indexes that do not yet exist.
func MigrateUp(db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.Exec(s.stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.name, err)
		}
	}
	return nil
}

// MigrateDown drops every table. All data is lost.
func MigrateDown(db *sql.DB) error {
	for _, table := range []string{"responses", "quiz_sessions", "choices", "questions", "articles"} {
		if _, err := db.Exec(`DROP TABLE IF EXISTS ` + table + ` CASCADE`); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
