package notify

import (
	"context"
	"fmt"

	"healthquiz/internal/infra/notifier"
)

// EmailChannel emails quiz results to the address given at finish time.
type EmailChannel struct {
	mailer  notifier.Mailer
	enabled bool
	appURL  string
}

// NewEmailChannel creates the result email channel. appURL is linked from the
// email as the place to take another quiz.
func NewEmailChannel(config notifier.EmailConfig, appURL string) *EmailChannel {
	var m notifier.Mailer = notifier.NewNoOpNotifier()
	if config.Enabled {
		m = notifier.NewEmailNotifier(config)
	}
	return &EmailChannel{mailer: m, enabled: config.Enabled, appURL: appURL}
}

// Name returns "email".
func (c *EmailChannel) Name() string { return "email" }

// IsEnabled reports whether EMAIL_ENABLED was set with an API key.
func (c *EmailChannel) IsEnabled() bool { return c.enabled }

// Accepts only quiz results.
func (c *EmailChannel) Accepts(k Kind) bool { return k == KindQuizResult }

// Send renders and sends the result email.
func (c *EmailChannel) Send(ctx context.Context, n *Notification) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	if n == nil || n.QuizResult == nil {
		return ErrUnsupportedNotification
	}
	r := n.QuizResult

	data := &notifier.QuizResult{
		SessionID:  r.SessionID,
		To:         r.Email,
		Percentage: r.Percentage,
		Correct:    r.Correct,
		Total:      r.Total,
		Message:    r.Message,
		AppURL:     c.appURL,
	}
	for _, d := range r.Responses {
		data.Items = append(data.Items, notifier.QuizResultItem{
			Question:       d.Prompt,
			SelectedAnswer: d.ChosenText,
			IsCorrect:      d.IsCorrect,
			Explanation:    d.Explanation,
			ArticleTitle:   d.ArticleTitle,
			ArticleURL:     d.ArticleURL,
		})
	}

	email, err := notifier.RenderQuizResult(data)
	if err != nil {
		return fmt.Errorf("render quiz result email: %w", err)
	}
	return c.mailer.SendEmail(ctx, email)
}
