package entity

import (
	"fmt"
	"strings"
)

// ChoicesPerQuestion is the fixed number of options on every question.
const ChoicesPerQuestion = 4

// QuestionDraft is a generated multiple-choice question before it is stored.
type QuestionDraft struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
	SourceQuote string   `json:"source_quote"`
}

// Validate checks the draft has a prompt, exactly four non-empty choices and
// an answer index pointing at one of them.
func (d *QuestionDraft) Validate() error {
	if strings.TrimSpace(d.Prompt) == "" {
		return &ValidationError{Field: "prompt", Message: "is required"}
	}
	if len(d.Choices) != ChoicesPerQuestion {
		return &ValidationError{Field: "choices", Message: fmt.Sprintf("must have exactly %d entries, got %d", ChoicesPerQuestion, len(d.Choices))}
	}
	for i, c := range d.Choices {
		if strings.TrimSpace(c) == "" {
			return &ValidationError{Field: "choices", Message: fmt.Sprintf("choice %d is empty", i)}
		}
	}
	if d.AnswerIndex < 0 || d.AnswerIndex >= ChoicesPerQuestion {
		return &ValidationError{Field: "answer_index", Message: fmt.Sprintf("must be between 0 and %d, got %d", ChoicesPerQuestion-1, d.AnswerIndex)}
	}
	return nil
}

// Question builds an active, reviewed medium question for articleID.
// Choice ids are assigned here so the caller can insert them as-is.
func (d *QuestionDraft) Question(articleID string) *Question {
	q := &Question{
		ID:          NewID(),
		ArticleID:   articleID,
		Prompt:      d.Prompt,
		Explanation: d.Explanation,
		SourceSpan:  d.SourceQuote,
		Difficulty:  DifficultyMedium,
		Tags:        []string{},
		Reviewed:    true,
		Status:      QuestionStatusActive,
		Choices:     make([]Choice, 0, len(d.Choices)),
	}
	for i, text := range d.Choices {
		q.Choices = append(q.Choices, Choice{
			ID:         NewID(),
			QuestionID: q.ID,
			Text:       text,
			IsCorrect:  i == d.AnswerIndex,
			OrderIndex: i,
		})
	}
	return q
}

// Verdict is the advisory outcome of reviewing a draft.
type Verdict string

// Review verdicts.
const (
	VerdictApproved      Verdict = "approved"
	VerdictNeedsRevision Verdict = "needs_revision"
	VerdictError         Verdict = "error"
)

// ParseVerdict maps a reviewer reply to a verdict. Any reply mentioning
// APPROVED counts as approval.
func ParseVerdict(reply string) Verdict {
	if strings.Contains(reply, "APPROVED") {
		return VerdictApproved
	}
	return VerdictNeedsRevision
}
