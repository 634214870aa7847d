package services

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidID   = errors.New("invalid id")
)

// ValidationError reports input rejected before any write was attempted.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MutationError is a failed write. Title is the notification shown to the
// user; Err carries the backend's description.
type MutationError struct {
	Title string
	Err   error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Title, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
