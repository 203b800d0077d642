package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Remote errors
	ErrAuthRequired = errors.New("authentication required")
	ErrRateLimited  = errors.New("rate limited by the platform")

	// Resolution errors
	ErrUnknownContest         = errors.New("unknown contest")
	ErrInsufficientCandidates = errors.New("not enough candidates to sample")
	ErrSuggestionsExhausted   = errors.New("suggestion pool exhausted")
)

// ConfigError reports a malformed configuration entry. Config errors are
// fatal and surface before any remote call is made.
type ConfigError struct {
	Entry string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config entry %q: %v", e.Entry, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err with the offending config entry.
func NewConfigError(entry string, err error) *ConfigError {
	return &ConfigError{Entry: entry, Err: err}
}

// ResolutionError reports a failure to expand a user spec into participants.
// Recoverable per game-creation attempt; fatal on standalone lookup paths.
type ResolutionError struct {
	SpecIndex int
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving spec %d: %v", e.SpecIndex, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewResolutionError wraps err with the index of the spec being resolved.
func NewResolutionError(specIndex int, err error) *ResolutionError {
	return &ResolutionError{SpecIndex: specIndex, Err: err}
}

// RemoteError reports a failed interaction with the platform.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError wraps err with the platform operation that failed.
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// SearchError terminates a history walk. Records yielded before the error
// remain valid to the consumer.
type SearchError struct {
	Page int
	Err  error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("history page %d: %v", e.Page, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must halt the whole run rather than the
// current attempt. Authentication failures and config errors qualify.
func IsFatal(err error) bool {
	if errors.Is(err, ErrAuthRequired) {
		return true
	}
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
