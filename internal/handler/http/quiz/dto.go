// Package quiz serves the public quiz endpoints. Correct answers are never
// sent with a drawn question; they are revealed one at a time by respond.
package quiz

import (
	"time"

	"healthquiz/internal/domain/entity"
	quizUC "healthquiz/internal/usecase/quiz"
)

// maxBodyBytes caps quiz request bodies.
const maxBodyBytes = 16 << 10

// ChoiceDTO is an answer option without its correctness flag.
type ChoiceDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionDTO is a drawn question.
type QuestionDTO struct {
	ID         string      `json:"id"`
	ArticleID  string      `json:"article_id"`
	Prompt     string      `json:"prompt"`
	Difficulty string      `json:"difficulty"`
	Choices    []ChoiceDTO `json:"choices"`
}

func toQuestionDTO(q *entity.Question) QuestionDTO {
	out := QuestionDTO{
		ID:         q.ID,
		ArticleID:  q.ArticleID,
		Prompt:     q.Prompt,
		Difficulty: string(q.Difficulty),
		Choices:    make([]ChoiceDTO, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		out.Choices = append(out.Choices, ChoiceDTO{ID: c.ID, Text: c.Text})
	}
	return out
}

// SessionDTO is returned when a session starts.
type SessionDTO struct {
	SessionID      string    `json:"session_id"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

type respondRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	ChoiceID   string `json:"choice_id"`
}

type finishRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

// DetailDTO is one answered question in a finished quiz.
type DetailDTO struct {
	QuestionID   string `json:"question_id"`
	Prompt       string `json:"prompt"`
	YourAnswer   string `json:"your_answer"`
	CorrectAns   string `json:"correct_answer"`
	IsCorrect    bool   `json:"is_correct"`
	Explanation  string `json:"explanation,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	ArticleURL   string `json:"article_url,omitempty"`
}

// ResultDTO is the body of a finished quiz.
type ResultDTO struct {
	SessionID   string      `json:"session_id"`
	Correct     int         `json:"correct"`
	Total       int         `json:"total"`
	Percentage  int         `json:"percentage"`
	Message     string      `json:"message"`
	FinishedAt  time.Time   `json:"finished_at"`
	EmailQueued bool        `json:"email_queued"`
	Details     []DetailDTO `json:"details"`
}

func toResultDTO(r *quizUC.Result) ResultDTO {
	out := ResultDTO{
		SessionID:   r.SessionID,
		Correct:     r.Correct,
		Total:       r.Total,
		Percentage:  r.Percentage,
		Message:     r.Message,
		FinishedAt:  r.FinishedAt,
		EmailQueued: r.EmailQueued,
		Details:     make([]DetailDTO, 0, len(r.Details)),
	}
	for _, d := range r.Details {
		out.Details = append(out.Details, DetailDTO{
			QuestionID:   d.QuestionID,
			Prompt:       d.Prompt,
			YourAnswer:   d.ChosenText,
			CorrectAns:   d.CorrectText,
			IsCorrect:    d.IsCorrect,
			Explanation:  d.Explanation,
			ArticleTitle: d.ArticleTitle,
			ArticleURL:   d.ArticleURL,
		})
	}
	return out
}
