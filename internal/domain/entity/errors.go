package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrValidationFailed matches every *ValidationError under errors.Is.
	ErrValidationFailed = errors.New("validation failed")
	// ErrDuplicate is a unique constraint hit: article url or a repeated session answer.
	ErrDuplicate = errors.New("duplicate entity")
)

// ValidationError names the field that failed a content or input check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
