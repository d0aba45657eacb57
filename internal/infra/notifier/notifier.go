// Package notifier delivers outbound messages: operator reports to Slack and
// Discord webhooks, and quiz result emails through the Resend API.
//
// Every implementation applies its own rate limit and retries transient
// failures. Callers get a single error after all attempts are exhausted.
package notifier

import "context"

// Field is a labelled value shown alongside a report.
type Field struct {
	Name  string
	Value string
}

// Message is an operator-facing report such as a sweep summary.
type Message struct {
	Title  string
	Text   string
	Fields []Field
	// Alert marks a report that needs attention (partial failure, errors).
	Alert bool
}

// Notifier posts operator reports.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

// Email is one outgoing email.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	// RefID is sent as X-Entity-Ref-ID so repeated sends thread together.
	RefID string
}

// Mailer sends emails.
type Mailer interface {
	SendEmail(ctx context.Context, email *Email) error
}
