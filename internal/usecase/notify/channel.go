// Package notify dispatches notifications asynchronously to delivery channels:
// operator reports (sweep and ingestion summaries) to Slack and Discord, and
// quiz result emails to quiz takers. Delivery failures are logged and counted,
// never returned to the caller.
package notify

import (
	"context"

	"healthquiz/internal/repository"
)

// Kind distinguishes what a notification carries.
type Kind string

const (
	KindReport     Kind = "report"
	KindQuizResult Kind = "quiz_result"
)

// ReportField is one labelled value in a report.
type ReportField struct {
	Name  string
	Value string
}

// Report is an operator-facing summary.
type Report struct {
	Title   string
	Summary string
	Fields  []ReportField
	// Alert flags reports that need attention, such as a sweep with failures.
	Alert bool
}

// QuizResult is a finished quiz to be emailed to its taker.
type QuizResult struct {
	SessionID  string
	Email      string
	Percentage int
	Correct    int
	Total      int
	Message    string
	Responses  []repository.ResponseDetail
}

// Notification carries exactly one of Report or QuizResult.
type Notification struct {
	Report     *Report
	QuizResult *QuizResult
}

// Kind reports what n carries.
func (n *Notification) Kind() Kind {
	if n.QuizResult != nil {
		return KindQuizResult
	}
	return KindReport
}

// Channel is a notification delivery channel (Slack, Discord, email).
// Implementations handle their own rate limiting and retries and must be
// safe for concurrent use.
type Channel interface {
	// Name is a lowercase identifier used in logs, metrics and health output.
	Name() string
	IsEnabled() bool
	// Accepts reports whether the channel delivers notifications of kind k.
	Accepts(k Kind) bool
	Send(ctx context.Context, n *Notification) error
}
