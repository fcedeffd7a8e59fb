package domain

import (
	"errors"
	"fmt"
)

// Structural errors terminate processing for the offending document only and
// are never retried. ErrValidation indicates an internal invariant violation
// and is always a defect.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrCorruptedDocument = errors.New("document structure is corrupted")
	ErrValidation        = errors.New("extraction batch failed invariant validation")
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrFileTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed      = errors.New("file upload to storage failed")
)

// ErrNoAnswer is returned by a generator when the retrieved candidates do not
// support any answer for the field. It marks the field unresolved and is not
// retried.
var ErrNoAnswer = errors.New("no answer supported by candidates")

// TransportError indicates a transient retrieval or generation transport
// failure. It is retryable with backoff, unlike the structural errors above.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failure: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err represents a transient transport failure.
func IsRetryable(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// GapFillUnavailableError is surfaced after bounded retries of a retryable
// retrieval or generation failure. Partial holds the pre-gap-fill batch so
// callers are not forced to discard successfully extracted structure.
type GapFillUnavailableError struct {
	Partial *ExtractionBatch
	Err     error
}

func (e *GapFillUnavailableError) Error() string {
	return fmt.Sprintf("gap filling unavailable: %v", e.Err)
}

func (e *GapFillUnavailableError) Unwrap() error {
	return e.Err
}
