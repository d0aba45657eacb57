package notifier

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

// QuizResultItem is one answered question in a result email.
type QuizResultItem struct {
	Question       string
	SelectedAnswer string
	IsCorrect      bool
	Explanation    string
	ArticleTitle   string
	ArticleURL     string
}

// QuizResult is the data rendered into a result email.
type QuizResult struct {
	SessionID  string
	To         string
	Percentage int
	Correct    int
	Total      int
	Message    string
	Items      []QuizResultItem
	// AppURL is linked as "Take Another Quiz".
	AppURL string
}

// ScoreColor returns the headline colour for the score.
func (r *QuizResult) ScoreColor() string {
	switch {
	case r.Percentage >= 80:
		return "#059669"
	case r.Percentage >= 60:
		return "#D97706"
	default:
		return "#DC2626"
	}
}

var quizHTML = htmltemplate.Must(htmltemplate.New("quiz-result").Funcs(htmltemplate.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Your Healthcare Quiz Results</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #1F2937; margin-bottom: 10px;">Healthcare Quiz Results</h1>
    <p style="color: #6B7280; font-size: 16px;">Thank you for taking our healthcare knowledge quiz!</p>
  </div>
  <div style="background: #F9FAFB; border-radius: 8px; padding: 30px; margin-bottom: 30px; text-align: center;">
    <div style="font-size: 48px; font-weight: bold; color: {{.ScoreColor}}; margin-bottom: 10px;">{{.Percentage}}%</div>
    <div style="font-size: 18px; color: #6B7280; margin-bottom: 15px;">{{.Correct}} out of {{.Total}} correct</div>
    <p style="font-size: 16px; color: #374151; margin: 0;">{{.Message}}</p>
  </div>
  <div style="margin-bottom: 30px;">
    <h2 style="color: #1F2937; border-bottom: 2px solid #E5E7EB; padding-bottom: 10px;">Question Review</h2>
    {{range $i, $r := .Items}}
    <div style="border: 1px solid {{if $r.IsCorrect}}#D1FAE5{{else}}#FEE2E2{{end}}; background: {{if $r.IsCorrect}}#F0FDF4{{else}}#FEF2F2{{end}}; border-radius: 6px; padding: 15px; margin-bottom: 15px;">
      <p><strong style="color: #374151;">Question {{inc $i}}</strong> {{if $r.IsCorrect}}&#9989;{{else}}&#10060;{{end}}</p>
      <p style="margin-bottom: 10px; color: #374151;"><strong>Q:</strong> {{$r.Question}}</p>
      <p style="margin-bottom: 10px; padding: 8px; background: #FFF; border-left: 3px solid #E5E7EB;"><strong>Your answer:</strong> {{$r.SelectedAnswer}}</p>
      <p style="margin-bottom: 10px; padding: 8px; background: #EFF6FF; border-left: 3px solid #3B82F6;"><strong>Explanation:</strong> {{$r.Explanation}}</p>
      <p style="font-size: 12px; color: #6B7280; margin: 0;"><strong>Source:</strong> {{if $r.ArticleURL}}<a href="{{$r.ArticleURL}}" target="_blank" rel="noopener noreferrer" style="color: #3B82F6;">{{$r.ArticleTitle}}</a>{{else}}{{$r.ArticleTitle}}{{end}}</p>
    </div>
    {{end}}
  </div>
  <div style="text-align: center; padding: 20px; background: #F3F4F6; border-radius: 8px; margin-bottom: 20px;">
    <h3 style="color: #1F2937; margin-bottom: 15px;">Keep Learning!</h3>
    <p style="color: #6B7280; margin-bottom: 15px;">Want to improve your healthcare knowledge? Take another quiz or explore our resources.</p>
    <a href="{{.AppURL}}" style="display: inline-block; background: #3B82F6; color: white; padding: 10px 20px; text-decoration: none; border-radius: 6px;">Take Another Quiz</a>
  </div>
  <div style="text-align: center; color: #9CA3AF; font-size: 14px;">
    <p>This email was sent because you requested your quiz results.</p>
    <p>Healthcare Quiz App - Improving health literacy one question at a time.</p>
  </div>
</body>
</html>
`))

var quizText = texttemplate.Must(texttemplate.New("quiz-result").Funcs(texttemplate.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`C.R.A.P. HEALTHCARE QUIZ RESULTS
================================

Your Score: {{.Percentage}}% ({{.Correct}} out of {{.Total}} correct)
{{.Message}}

QUESTION REVIEW
===============
{{range $i, $r := .Items}}
Question {{inc $i}}: {{if $r.IsCorrect}}CORRECT ✓{{else}}INCORRECT ✗{{end}}

Q: {{$r.Question}}

Your answer: {{$r.SelectedAnswer}}

Explanation: {{$r.Explanation}}

Source: {{$r.ArticleTitle}}{{if $r.ArticleURL}} - {{$r.ArticleURL}}{{end}}
{{end}}
Thank you for taking the C.R.A.P. Healthcare Quiz!
Visit {{.AppURL}} to take another quiz.

This email was sent because you requested your quiz results.
Healthcare Quiz App - Improving health literacy one question at a time.
`))

// RenderQuizResult builds the result email for r.
func RenderQuizResult(r *QuizResult) (*Email, error) {
	var html, txt bytes.Buffer
	if err := quizHTML.Execute(&html, r); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := quizText.Execute(&txt, r); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	return &Email{
		To:      r.To,
		Subject: fmt.Sprintf("Your C.R.A.P. Healthcare Quiz Results - %d%% Score", r.Percentage),
		HTML:    html.String(),
		Text:    strings.TrimSpace(txt.String()),
		RefID:   "quiz-results-" + r.SessionID,
	}, nil
}
