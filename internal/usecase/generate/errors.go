// Package generate turns stored articles into multiple-choice questions using
// an LLM generator and an advisory verifier.
package generate

import "errors"

var (
	// ErrArticleNotFound is returned when the requested article does not exist.
	ErrArticleNotFound = errors.New("article not found")

	// ErrNoDrafts is returned when the generator produced no usable question.
	ErrNoDrafts = errors.New("generator returned no questions")
)
