package entity

import "time"

const (
	// RetentionPeriod is how long an archived question waits before it becomes
	// eligible for deletion.
	RetentionPeriod = 30 * 24 * time.Hour

	// ProtectionWindow is the look-back window for responses that keep an
	// archived question from being deleted.
	ProtectionWindow = 90 * 24 * time.Hour
)

// QuestionStatus is the lifecycle state of a question.
type QuestionStatus string

// Question lifecycle states. Deleted is terminal.
const (
	QuestionStatusActive   QuestionStatus = "active"
	QuestionStatusArchived QuestionStatus = "archived"
	QuestionStatusDeleted  QuestionStatus = "deleted"
)

// Valid reports whether s is a known question status.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusActive, QuestionStatusArchived, QuestionStatusDeleted:
		return true
	}
	return false
}

// Transition names a lifecycle edge.
type Transition string

// Lifecycle transitions.
const (
	TransitionArchive Transition = "archive"
	TransitionRestore Transition = "restore"
	TransitionSweep   Transition = "sweep"
)

type edge struct {
	from QuestionStatus
	to   QuestionStatus
}

// transitions is the complete lifecycle table. Anything absent is illegal.
var transitions = map[Transition]edge{
	TransitionArchive: {from: QuestionStatusActive, to: QuestionStatusArchived},
	TransitionRestore: {from: QuestionStatusArchived, to: QuestionStatusActive},
	TransitionSweep:   {from: QuestionStatusArchived, to: QuestionStatusDeleted},
}

// Edge returns the required source state and the resulting state of t.
// ok is false for unknown transitions.
func (t Transition) Edge() (from, to QuestionStatus, ok bool) {
	e, ok := transitions[t]
	return e.from, e.to, ok
}

// CanApply reports whether t is legal from s.
func (s QuestionStatus) CanApply(t Transition) bool {
	e, ok := transitions[t]
	return ok && e.from == s
}

// Difficulty grades a question.
type Difficulty string

// Question difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a multiple-choice question generated from an article.
type Question struct {
	ID          string
	ArticleID   string
	Prompt      string
	Explanation string
	SourceSpan  string
	Difficulty  Difficulty
	Tags        []string
	Reviewed    bool
	Status      QuestionStatus

	ArchivedAt          *time.Time
	ArchivedBy          string
	ArchivedReason      string
	ScheduledDeletionAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Choices []Choice
}

// Apply performs transition t in memory at time now. It returns false and
// leaves q untouched when t is not legal from the current status.
func (q *Question) Apply(t Transition, now time.Time, reason, actor string) bool {
	if !q.Status.CanApply(t) {
		return false
	}
	_, to, _ := t.Edge()
	switch t {
	case TransitionArchive:
		at := now
		deleteAt := now.Add(RetentionPeriod)
		q.ArchivedAt = &at
		q.ArchivedBy = actor
		q.ArchivedReason = reason
		q.ScheduledDeletionAt = &deleteAt
	case TransitionRestore:
		q.ArchivedAt = nil
		q.ArchivedBy = ""
		q.ArchivedReason = ""
		q.ScheduledDeletionAt = nil
	}
	q.Status = to
	q.UpdatedAt = now
	return true
}

// Expired reports whether q is archived and past its scheduled deletion time.
func (q *Question) Expired(now time.Time) bool {
	return q.Status == QuestionStatusArchived &&
		q.ScheduledDeletionAt != nil &&
		q.ScheduledDeletionAt.Before(now)
}

// Choice is one answer option of a question.
type Choice struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
	OrderIndex int
}

// CorrectChoice returns the correct option, or nil when none is flagged.
func (q *Question) CorrectChoice() *Choice {
	for i := range q.Choices {
		if q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}
