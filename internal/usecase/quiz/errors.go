// Package quiz runs anonymous quiz sessions: drawing questions, recording
// answers and scoring finished sessions.
package quiz

import "errors"

var (
	// ErrNoQuestions is returned by Draw when no reviewed active question exists.
	ErrNoQuestions = errors.New("no questions available")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("quiz session not found")

	// ErrSessionFinished is returned by Respond once the session is closed.
	ErrSessionFinished = errors.New("quiz session already finished")

	// ErrQuestionNotFound is returned when the question is missing or no longer active.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrChoiceMismatch is returned when the choice does not belong to the question.
	ErrChoiceMismatch = errors.New("choice does not belong to question")
)
