// Package errors provides error types and handling for Lokalise file-exchange
// operations. All errors surfaced by the module render deterministically as
// "<TypeName>: <message>", with the remote status code and any detail entries
// appended when present.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// LokaliseError represents an error returned by (or on behalf of) the remote
// Lokalise API. It carries the server message, the HTTP-ish status code, and
// an optional detail map.
type LokaliseError struct {
	// Message is the human-readable error message
	Message string

	// Code is the status code reported by the remote API (0 when absent)
	Code int

	// Details carries supplementary key/value context from the server
	Details map[string]any

	// cause is the wrapped underlying error, if any
	cause error
}

// Error implements the error interface with the canonical rendering.
func (e *LokaliseError) Error() string {
	return render("LokaliseError", e.Message, e.Code, e.Details)
}

// Unwrap returns the wrapped cause for error chaining support.
func (e *LokaliseError) Unwrap() error {
	return e.cause
}

// Retryable reports whether the error's status code is in the retryable set.
// Only request timeouts (408) and rate limiting (429) are worth retrying;
// everything else is a permanent failure from the client's point of view.
func (e *LokaliseError) Retryable() bool {
	return e.Code == 408 || e.Code == 429
}

// WithDetails attaches a detail map to an existing error.
func (e *LokaliseError) WithDetails(details map[string]any) *LokaliseError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error for errors.Is/As chains.
func (e *LokaliseError) WithCause(err error) *LokaliseError {
	e.cause = err
	return e
}

// NewLokaliseError creates a new LokaliseError with the given message and code.
func NewLokaliseError(message string, code int) *LokaliseError {
	return &LokaliseError{
		Message: message,
		Code:    code,
	}
}

// NewMaxRetriesError wraps a remote error once the retry budget is exhausted,
// preserving the original code and details.
func NewMaxRetriesError(orig *LokaliseError) *LokaliseError {
	return &LokaliseError{
		Message: "Maximum retries reached: " + orig.Message,
		Code:    orig.Code,
		Details: orig.Details,
		cause:   ErrMaxRetriesReached,
	}
}

// ValidationError indicates invalid configuration or input supplied by the
// caller. It is raised synchronously at construction time and is fatal.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return render("ValidationError", e.Message, 0, nil)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// SecurityError indicates a malicious archive entry (path traversal or an
// absolute path). It aborts extraction entirely and is non-recoverable.
type SecurityError struct {
	Message string
}

// Error implements the error interface.
func (e *SecurityError) Error() string {
	return render("SecurityError", e.Message, 0, nil)
}

// NewSecurityError creates a new SecurityError.
func NewSecurityError(format string, args ...any) *SecurityError {
	return &SecurityError{Message: fmt.Sprintf(format, args...)}
}

// TimeoutError indicates a download request exceeding its timeout or a poll
// budget running out. It is distinct from remote errors and always carries a
// reason detail so callers can tell it apart after serialization.
type TimeoutError struct {
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return render("TimeoutError", e.Message, 0, e.Details)
}

// NewTimeoutError creates a new TimeoutError with the reason detail set.
func NewTimeoutError(format string, args ...any) *TimeoutError {
	return &TimeoutError{
		Message: fmt.Sprintf(format, args...),
		Details: map[string]any{"reason": "timeout"},
	}
}

// Sentinel errors for common failure conditions.
// These can be used with errors.Is() for error checking.
var (
	// ErrMaxRetriesReached indicates the retry budget was exhausted
	ErrMaxRetriesReached = errors.New("lokalise: maximum retries reached")

	// ErrNoBundleURL indicates a finished download process without a usable URL
	ErrNoBundleURL = errors.New("lokalise: process finished without a bundle url")
)

// IsRetryable checks if an error is a remote error worth retrying.
func IsRetryable(err error) bool {
	var le *LokaliseError
	return errors.As(err, &le) && le.Retryable()
}

// IsTimeout checks if an error is a timeout, either of a download request or
// of a polling budget.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsValidation checks if an error is a configuration/input validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsSecurity checks if an error is an archive security violation.
func IsSecurity(err error) bool {
	var se *SecurityError
	return errors.As(err, &se)
}

// render produces the canonical string form shared by all error types.
// Detail entries are joined in sorted key order; Go maps carry no insertion
// order, so sorting is what keeps the rendering deterministic.
func render(name, message string, code int, details map[string]any) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(message)
	if code != 0 {
		fmt.Fprintf(&b, " (Code: %d)", code)
	}
	if len(details) > 0 {
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, details[k]))
		}
		b.WriteString(" | Details: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}
