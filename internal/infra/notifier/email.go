package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultResendBaseURL is the Resend API endpoint.
const DefaultResendBaseURL = "https://api.resend.com"

// EmailConfig configures delivery through the Resend HTTP API.
type EmailConfig struct {
	Enabled bool
	APIKey  string
	From    string
	// BaseURL defaults to DefaultResendBaseURL.
	BaseURL string
	Timeout time.Duration

	// RatePerSecond and Burst bound outgoing emails.
	RatePerSecond float64
	Burst         int
}

// EmailNotifier sends emails through Resend.
type EmailNotifier struct {
	config      EmailConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retry       retryPolicy
}

// NewEmailNotifier creates an EmailNotifier.
func NewEmailNotifier(config EmailConfig) *EmailNotifier {
	if config.BaseURL == "" {
		config.BaseURL = DefaultResendBaseURL
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = 2
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &EmailNotifier{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(config.RatePerSecond, config.Burst),
		retry:       retryPolicy{maxAttempts: 3, baseDelay: 2 * time.Second},
	}
}

type resendPayload struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers,omitempty"`
}

// SendEmail implements Mailer.
func (e *EmailNotifier) SendEmail(ctx context.Context, email *Email) error {
	if email == nil || strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("email recipient is required")
	}

	payload := resendPayload{
		From:    e.config.From,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	}
	if email.RefID != "" {
		payload.Headers = map[string]string{"X-Entity-Ref-ID": email.RefID}
	}
	headers := map[string]string{"Authorization": "Bearer " + e.config.APIKey}
	url := strings.TrimRight(e.config.BaseURL, "/") + "/emails"

	return deliver(ctx, "Resend", e.rateLimiter, e.retry, func(ctx context.Context) error {
		return postJSON(ctx, e.httpClient, "Resend", url, payload, headers)
	})
}
