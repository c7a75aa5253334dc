package models

import (
	"errors"
	"fmt"
)

const (
	ProviderErrQuota   = "quota"
	ProviderErrAuth    = "auth"
	ProviderErrNetwork = "network"
	ProviderErrInvalid = "invalid"
)

// ProviderError wraps an AI provider failure. It is always recovered inside
// the generation chain and never reaches a request handler.
type ProviderError struct {
	Provider string
	Kind     string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AssemblyError means the marker state of a generated body was malformed.
// The request still returns partial content.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly: %s", e.Reason)
}

// PublishError is a gateway rejection. Retried with backoff up to the
// ceiling, then the schedule goes terminal failed.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected (status %d): %s", e.StatusCode, e.Message)
}

// ErrSchedulingConflict is returned when a cancel arrives after the poller
// has already claimed the record.
var ErrSchedulingConflict = errors.New("publication already claimed for publishing")
