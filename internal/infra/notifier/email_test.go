package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sampleResult() *QuizResult {
	return &QuizResult{
		SessionID:  "s-1",
		To:         "reader@example.com",
		Percentage: 50,
		Correct:    1,
		Total:      2,
		Message:    "Keep learning! Healthcare knowledge is important for everyone.",
		AppURL:     "https://quiz.example.com",
		Items: []QuizResultItem{
			{Question: "Wash hands for?", SelectedAnswer: "20 seconds", IsCorrect: true, Explanation: "CDC guidance.", ArticleTitle: "Hand Hygiene", ArticleURL: "https://cdc.gov/hands"},
			{Question: "Flu shot <when>?", SelectedAnswer: "Never", Explanation: "Every year.", ArticleTitle: "Flu"},
		},
	}
}

func TestRenderQuizResult(t *testing.T) {
	email, err := RenderQuizResult(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if email.Subject != "Your C.R.A.P. Healthcare Quiz Results - 50% Score" {
		t.Errorf("subject = %q", email.Subject)
	}
	if email.RefID != "quiz-results-s-1" {
		t.Errorf("ref id = %q", email.RefID)
	}
	if !strings.Contains(email.HTML, "1 out of 2 correct") {
		t.Error("html should contain the score line")
	}
	if !strings.Contains(email.HTML, "Flu shot &lt;when&gt;?") {
		t.Error("html should escape question text")
	}
	if !strings.Contains(email.HTML, `href="https://cdc.gov/hands"`) {
		t.Error("html should link the source article")
	}
	if !strings.Contains(email.HTML, "#DC2626") {
		t.Error("a 50% score should be shown in red")
	}
	if !strings.HasPrefix(email.Text, "C.R.A.P. HEALTHCARE QUIZ RESULTS") {
		t.Errorf("unexpected text start %q", email.Text[:40])
	}
	if !strings.Contains(email.Text, "Question 2: INCORRECT ✗") {
		t.Error("text should mark the second answer incorrect")
	}
	if !strings.Contains(email.Text, "Source: Hand Hygiene - https://cdc.gov/hands") {
		t.Error("text should cite the source url")
	}
}

func TestEmailNotifier_SendEmail(t *testing.T) {
	var got resendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = io.WriteString(w, `{"id":"email-1"}`)
	}))
	defer srv.Close()

	n := NewEmailNotifier(EmailConfig{Enabled: true, APIKey: "re_test", From: "quiz@example.com", BaseURL: srv.URL, Timeout: time.Second})
	email, _ := RenderQuizResult(sampleResult())

	if err := n.SendEmail(context.Background(), email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.From != "quiz@example.com" || len(got.To) != 1 || got.To[0] != "reader@example.com" {
		t.Errorf("unexpected envelope %+v", got)
	}
	if got.Headers["X-Entity-Ref-ID"] != "quiz-results-s-1" {
		t.Errorf("missing ref header: %+v", got.Headers)
	}
}

func TestEmailNotifier_RequiresRecipient(t *testing.T) {
	n := NewEmailNotifier(EmailConfig{APIKey: "k"})
	if err := n.SendEmail(context.Background(), &Email{Subject: "x"}); err == nil {
		t.Error("expected an error without a recipient")
	}
}

func TestLoadEmailConfig(t *testing.T) {
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("RESEND_API_KEY", "")

	if LoadEmailConfig().Enabled {
		t.Error("email must stay disabled without an API key")
	}

	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("EMAIL_RATE_LIMIT", "5")
	cfg := LoadEmailConfig()
	if !cfg.Enabled || cfg.RatePerSecond != 5 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
