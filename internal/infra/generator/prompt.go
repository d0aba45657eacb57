// Package generator provides LLM-backed question generation and review.
// It includes adapters for OpenAI and Claude (Anthropic) with circuit breaker
// and retry protection, plus a no-op implementation for development.
package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/usecase/generate"
	"healthquiz/internal/utils/text"
)

// GenerationPrompt is the system prompt for drafting questions.
const GenerationPrompt = `You are creating healthcare literacy MCQs from healthcare articles. Your goal is to help people understand healthcare topics better through educational quizzes.

Guidelines:
- Generate 2-3 questions per article
- Focus on factual information from the article
- Avoid providing medical advice or treatment recommendations
- Each question must have exactly 4 choices (A, B, C, D)
- Only ONE choice should be correct
- Include a brief explanation (1-2 sentences) for why the correct answer is right
- Include a source quote or section reference from the article
- Questions should test comprehension and retention of key healthcare concepts

Output the response in this exact JSON schema only:
{
  "article_url": "<string>",
  "questions": [{
    "prompt": "<single clear question>",
    "choices": ["Choice A text", "Choice B text", "Choice C text", "Choice D text"],
    "answer_index": 0,
    "explanation": "Why the correct answer is correct, 1-2 sentences",
    "source_quote": "Short quote or section reference"
  }]
}

IMPORTANT: The answer_index should be 0, 1, 2, or 3 corresponding to the correct choice. Vary this randomly across questions - do not always use the same index.`

// VerificationPrompt is the system prompt for reviewing one draft.
const VerificationPrompt = `You are reviewing healthcare MCQs for quality and accuracy. Verify that:

1. Each question has exactly one correct answer
2. The correct answer is factually accurate based on the source material
3. Incorrect options are plausible but clearly wrong
4. The explanation is clear and educational
5. No medical advice is being given - only educational information

For each question, respond with:
- "APPROVED" if the question meets all criteria
- "NEEDS_REVISION: [specific issue]" if there are problems

Review this MCQ:`

// userPrompt renders the article for the generation request, truncating the
// body to maxRunes.
func userPrompt(in generate.ArticleInput, maxRunes int) string {
	return fmt.Sprintf(`Article URL: %s
Article Title: %s

Article Content:
%s

Generate 2-3 educational MCQs based on this healthcare article. Focus on key facts and concepts that would help readers better understand the healthcare topic.`,
		in.URL, in.Title, text.Truncate(in.CleanText, maxRunes))
}

type draftEnvelope struct {
	ArticleURL string                 `json:"article_url"`
	Questions  []entity.QuestionDraft `json:"questions"`
}

// parseDrafts decodes the generation reply. Models sometimes wrap the JSON in
// prose or code fences, so only the outermost object is decoded.
func parseDrafts(reply string) ([]entity.QuestionDraft, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}
	var env draftEnvelope
	if err := json.Unmarshal([]byte(reply[start:end+1]), &env); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}
	return env.Questions, nil
}

// reviewPayload renders a draft the way the reviewer expects it.
func reviewPayload(d entity.QuestionDraft) (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
