package entity

import (
	"math"
	"time"
)

// QuizSession is one anonymous run through a quiz.
type QuizSession struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     *time.Time
	Email          string
	TotalQuestions int
	CorrectAnswers int
}

// Finished reports whether the session has been closed.
func (s *QuizSession) Finished() bool { return s.FinishedAt != nil }

// Percentage returns the rounded score out of 100.
func (s *QuizSession) Percentage() int {
	if s.TotalQuestions <= 0 {
		return 0
	}
	return int(math.Round(float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100))
}

// Response records one answered question within a session.
type Response struct {
	ID         string
	SessionID  string
	QuestionID string
	ChoiceID   string
	IsCorrect  bool
	AnsweredAt time.Time
}

// ScoreMessage returns the feedback line shown for a percentage score.
func ScoreMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Excellent! You have strong healthcare knowledge."
	case percentage >= 80:
		return "Great job! Your healthcare knowledge is quite good."
	case percentage >= 70:
		return "Good work! You have a solid foundation."
	case percentage >= 60:
		return "Not bad! Consider reviewing some healthcare topics."
	default:
		return "Keep learning! Healthcare knowledge is important for everyone."
	}
}
