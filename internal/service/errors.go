package service

import (
	"errors"

	"github.com/lalith-99/happythoughts/internal/repository"
)

// Every service call fails with exactly one of these sentinels or a
// *StoreError. The API layer maps them 1:1 to HTTP statuses.
var (
	ErrInvalidID          = errors.New("invalid id format")
	ErrInvalidInput       = errors.New("invalid input")
	ErrClientIDMissing    = errors.New("client id missing")
	ErrInvalidToken       = errors.New("invalid authentication token")
	ErrAuthRequired       = errors.New("authentication missing or invalid")
	ErrForbidden          = errors.New("not allowed to delete this message")
	ErrMessageNotFound    = errors.New("message not found")
	ErrAlreadyLiked       = errors.New("already liked this message")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// StoreError wraps an unexpected persistence failure. Its message is the
// underlying error's so callers can surface it without a stack.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// messageErr translates repository sentinels for message lookups.
func messageErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, repository.ErrNotFound):
		return ErrMessageNotFound
	case errors.Is(err, repository.ErrAlreadyLiked):
		return ErrAlreadyLiked
	}
	return &StoreError{Op: op, Err: err}
}
