package services

import (
	"errors"

	"flashquiz-backend/internal/repository"
	"flashquiz-backend/internal/store"
)

type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "Validation error"
	}
	return e.Message
}

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// WriteError means the store accepted a write or delete but reported no
// affected row.
type WriteError struct {
	Message string
	Err     error
}

func (e *WriteError) Error() string { return e.Message }
func (e *WriteError) Unwrap() error { return e.Err }

type StoreUnavailableError struct{ Err error }

func (e *StoreUnavailableError) Error() string { return "Store is unavailable, try again later" }
func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// writeFailure classifies an error from a repository write. Absence of rows
// and integrity violations become msg; anything else is an outage.
func writeFailure(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrNoRows),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, store.ErrConstraint):
		return &WriteError{Message: msg, Err: err}
	default:
		return &StoreUnavailableError{Err: err}
	}
}

// readFailure classifies an error from a repository read.
func readFailure(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Message: msg}
	}
	return &StoreUnavailableError{Err: err}
}
