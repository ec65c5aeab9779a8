package common

import (
	"errors"
	"fmt"
)

// FailureKind classifies pipeline failures for callers. Every stage returns
// exactly one kind; later stages never recover an earlier stage's failure.
type FailureKind string

const (
	// UnreadableDocument: the byte stream is not a well-formed PDF or has no
	// extractable text. Terminal; the caller must resubmit a different file.
	UnreadableDocument FailureKind = "UNREADABLE_DOCUMENT"

	// MissingNaturalKey: normalization could not produce a natural key.
	// Terminal; the caller must supply more identifying information.
	MissingNaturalKey FailureKind = "MISSING_NATURAL_KEY"

	// StoreUnavailable: the persistence gateway failed or timed out.
	// Retryable by the caller with backoff; the core performs no retries.
	StoreUnavailable FailureKind = "STORE_UNAVAILABLE"

	// IdentityUnavailable: the identity gateway failed or timed out. Retryable.
	IdentityUnavailable FailureKind = "IDENTITY_UNAVAILABLE"

	// CorruptEntity: a stored entity no longer matches its schema. Fatal;
	// requires manual repair and is never auto-healed.
	CorruptEntity FailureKind = "CORRUPT_ENTITY"
)

// Failure is the typed error every pipeline stage returns on failure. Field
// carries the offending field name when one is known, so callers see a
// specific explanation rather than a generic failure.
type Failure struct {
	Kind    FailureKind
	Field   string
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	msg := f.Message
	if f.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, f.Field)
	}
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, msg, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, msg)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Retryable reports whether the caller may retry the same upload unchanged.
func (f *Failure) Retryable() bool {
	return f.Kind == StoreUnavailable || f.Kind == IdentityUnavailable
}

// NewFailure builds a Failure with an optional cause.
func NewFailure(kind FailureKind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

// FieldFailure builds a Failure that names the field responsible.
func FieldFailure(kind FailureKind, field, message string) *Failure {
	return &Failure{Kind: kind, Field: field, Message: message}
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind of err, or "" for untyped errors.
func KindOf(err error) FailureKind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return ""
}

// ErrInvalidInput marks configuration and request-shape problems that are
// the caller's to fix.
var ErrInvalidInput = errors.New("invalid input")

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
