// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy.
var (
	// ErrMissingSource means a grid or watch-list source could not be read.
	ErrMissingSource = errors.New("source unavailable")
	// ErrUnresolvedColumn means a semantic column role has no bound header.
	ErrUnresolvedColumn = errors.New("unresolved column")
	// ErrUnmatchedEntry means a watch-list entry has no spreadsheet row.
	ErrUnmatchedEntry = errors.New("unmatched watch-list entry")
	// ErrMalformedNumeric is never returned by coercion; it names the
	// condition in diagnostics.
	ErrMalformedNumeric = errors.New("malformed numeric value")
	// ErrPersistence means a snapshot, changelog, or history write failed.
	ErrPersistence = errors.New("persistence failure")
	// ErrForwarding means a best-effort upload or sync failed.
	ErrForwarding = errors.New("forwarding failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message to show for err: the friendly message of
// the outermost UserError, or the error text itself.
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return err.Error()
}

// IsFatal reports whether err must fail a pipeline run. Only persistence
// failures and total input unavailability propagate; everything else is
// absorbed where it happens.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrForwarding) || errors.Is(err, ErrUnmatchedEntry) || errors.Is(err, ErrUnresolvedColumn) {
		return false
	}
	return errors.Is(err, ErrPersistence) || errors.Is(err, ErrMissingSource)
}
