package notify

import (
	"context"

	"healthquiz/internal/infra/notifier"
)

// toMessage converts a report for the webhook notifiers.
func toMessage(r *Report) *notifier.Message {
	msg := &notifier.Message{Title: r.Title, Text: r.Summary, Alert: r.Alert}
	for _, f := range r.Fields {
		msg.Fields = append(msg.Fields, notifier.Field{Name: f.Name, Value: f.Value})
	}
	return msg
}

// webhookChannel delivers reports through a webhook notifier.
type webhookChannel struct {
	name     string
	notifier notifier.Notifier
	enabled  bool
}

func (c *webhookChannel) Name() string        { return c.name }
func (c *webhookChannel) IsEnabled() bool     { return c.enabled }
func (c *webhookChannel) Accepts(k Kind) bool { return k == KindReport }

func (c *webhookChannel) Send(ctx context.Context, n *Notification) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if n == nil || n.Report == nil {
		return ErrUnsupportedNotification
	}
	return c.notifier.Notify(ctx, toMessage(n.Report))
}

// NewSlackChannel creates the Slack report channel. A disabled config gets a
// no-op notifier so the channel is always usable.
func NewSlackChannel(config notifier.SlackConfig) Channel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewSlackNotifier(config)
	}
	return &webhookChannel{name: "slack", notifier: n, enabled: config.Enabled}
}
