package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres) inside this directory.

import "errors"

var (
	// ErrNotFound is returned for unknown session, file or object key lookups.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidTransition is returned when an update would leave a terminal
	// status or attach a result to a file that is not completed.
	ErrInvalidTransition = errors.New("invalid status transition")
)
