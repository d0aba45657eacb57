package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// SlackNotifier posts reports to a Slack Incoming Webhook.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retryPolicy
}

// NewSlackNotifier creates a SlackNotifier limited to 1 request/second,
// the Slack webhook limit.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(1.0, 1),
		retry:       defaultRetryPolicy,
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Fields   []SlackTextObject `json:"fields,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxFallbackLength    = 150
	maxSectionFields     = 10

	slackTruncationSuffix = "..."
)

// buildBlockKitPayload renders msg as a header section, an optional fields
// section and a context line with the report time.
func (s *SlackNotifier) buildBlockKitPayload(msg *Message, at time.Time) SlackWebhookPayload {
	title := msg.Title
	if msg.Alert {
		title = ":warning: " + title
	}

	sectionText := fmt.Sprintf("*%s*", title)
	if msg.Text != "" {
		sectionText += "\n\n" + msg.Text
	}

	blocks := []SlackBlock{{
		Type: "section",
		Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(sectionText, maxSectionTextLength, slackTruncationSuffix)},
	}}

	if len(msg.Fields) > 0 {
		fields := make([]SlackTextObject, 0, len(msg.Fields))
		for i, f := range msg.Fields {
			if i == maxSectionFields {
				break
			}
			fields = append(fields, SlackTextObject{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", f.Name, f.Value)})
		}
		blocks = append(blocks, SlackBlock{Type: "section", Fields: fields})
	}

	blocks = append(blocks, SlackBlock{
		Type:     "context",
		Elements: []SlackTextObject{{Type: "mrkdwn", Text: "healthquiz • " + at.UTC().Format(time.RFC3339)}},
	})

	return SlackWebhookPayload{
		Text:   truncate(strings.TrimSpace(msg.Title), maxFallbackLength, slackTruncationSuffix),
		Blocks: blocks,
	}
}

// Notify implements Notifier.
func (s *SlackNotifier) Notify(ctx context.Context, msg *Message) error {
	payload := s.buildBlockKitPayload(msg, time.Now())
	return deliver(ctx, "Slack", s.rateLimiter, s.retry, func(ctx context.Context) error {
		return postJSON(ctx, s.httpClient, "Slack", s.config.WebhookURL, payload, nil)
	})
}
