package notifier

import "context"

// NoOpNotifier discards reports and emails. It stands in for disabled channels.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Notify does nothing.
func (n *NoOpNotifier) Notify(context.Context, *Message) error { return nil }

// SendEmail does nothing.
func (n *NoOpNotifier) SendEmail(context.Context, *Email) error { return nil }
