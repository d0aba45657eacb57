package generator

import (
	"context"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/usecase/generate"
)

// NoOp produces one fixed comprehension question per article without calling
// any model. It is used in development and when GENERATOR_TYPE=noop.
type NoOp struct{}

// NewNoOp creates a NoOp generator.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Generate returns a single question about the article's title.
func (NoOp) Generate(_ context.Context, in generate.ArticleInput) ([]entity.QuestionDraft, error) {
	return []entity.QuestionDraft{{
		Prompt: "Which topic does the article \"" + in.Title + "\" cover?",
		Choices: []string{
			in.Title,
			"Automotive maintenance",
			"Professional sports results",
			"Stock market forecasts",
		},
		AnswerIndex: 0,
		Explanation: "The article's title names its topic.",
		SourceQuote: in.Title,
	}}, nil
}

// Verify approves every draft.
func (NoOp) Verify(context.Context, entity.QuestionDraft) (entity.Verdict, error) {
	return entity.VerdictApproved, nil
}
