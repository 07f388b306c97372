package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired   = errors.New("id is required")
	ErrNotFound     = errors.New("session not found")
	ErrFileNotFound = errors.New("file not found")
	ErrNotCompleted = errors.New("analysis not completed yet")
	ErrNoFiles      = errors.New("no files in session")
	ErrQueueFull    = errors.New("processing queue is full")
	ErrConflict     = errors.New("file already finished processing")
	ErrValidation   = errors.New("validation failed")
)

// ValidationError is a rejected upload. Message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// PanicError is returned by ProcessSession when the pipeline panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("processor: panic: %v", e.Value)
}
