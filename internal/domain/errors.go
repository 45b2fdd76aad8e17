package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineUnavailable signals that the search engine could not be reached.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrEngineRejected signals that the search engine refused the query.
	ErrEngineRejected = errors.New("search engine rejected query")
	// ErrInvalidResponse signals an engine response that could not be decoded.
	ErrInvalidResponse = errors.New("invalid search engine response")
)

// EngineError wraps an engine failure with the HTTP status the engine returned.
type EngineError struct {
	Status int
	Reason string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: status %d", e.Err.Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Err.Error(), e.Status, e.Reason)
}

func (e *EngineError) Unwrap() error { return e.Err }

// NewEngineError classifies an engine status code: 4xx is a rejected query, anything else unavailability.
func NewEngineError(status int, reason string) error {
	sentinel := ErrEngineUnavailable
	if status >= 400 && status < 500 {
		sentinel = ErrEngineRejected
	}
	return &EngineError{Status: status, Reason: reason, Err: sentinel}
}
