package notifier

import (
	"context"
	"net/http"
	"time"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	Timeout time.Duration
}

// DiscordNotifier posts reports to a Discord webhook.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retryPolicy
}

// NewDiscordNotifier creates a DiscordNotifier limited to 0.5 requests/second
// with a burst of 3 (Discord allows 30 requests per minute per webhook).
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	return &DiscordNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(0.5, 3),
		retry:       defaultRetryPolicy,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is one inline name/value pair.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxEmbedFields       = 25
	maxFieldValueLength  = 1024
	truncationSuffix     = "..."

	discordBlueColor = 5793266  // #5865F2
	discordRedColor  = 15548997 // #ED4245
)

func (d *DiscordNotifier) buildEmbedPayload(msg *Message, at time.Time) DiscordWebhookPayload {
	color := discordBlueColor
	if msg.Alert {
		color = discordRedColor
	}

	embed := DiscordEmbed{
		Title:       truncate(msg.Title, maxTitleLength, truncationSuffix),
		Description: truncate(msg.Text, maxDescriptionLength, truncationSuffix),
		Color:       color,
		Footer:      DiscordEmbedFooter{Text: "healthquiz"},
		Timestamp:   at.UTC().Format(time.RFC3339),
	}
	for i, f := range msg.Fields {
		if i == maxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, DiscordEmbedField{
			Name:   truncate(f.Name, maxTitleLength, truncationSuffix),
			Value:  truncate(f.Value, maxFieldValueLength, truncationSuffix),
			Inline: true,
		})
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// Notify implements Notifier.
func (d *DiscordNotifier) Notify(ctx context.Context, msg *Message) error {
	payload := d.buildEmbedPayload(msg, time.Now())
	return deliver(ctx, "Discord", d.rateLimiter, d.retry, func(ctx context.Context) error {
		return postJSON(ctx, d.httpClient, "Discord", d.config.WebhookURL, payload, nil)
	})
}
