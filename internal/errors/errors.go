// Package errors provides centralized error definitions and error handling
// utilities for termwatch. It defines sentinel errors, typed errors for the
// classifier and the monitor loop, and classification helpers.
//
// # Error Types
//
//   - ClassifierError: a failed classifier call, tagged with a Kind
//     (config, auth, transport, timeout, protocol)
//   - SessionError: a failure while evaluating a single monitored session
//   - ValidationError: invalid input or state
//
// # Usage
//
//	err := errors.NewClassifierError(errors.KindAuth, "request rejected", errors.ErrUnauthorized).
//		WithProvider("openai").
//		WithStatusCode(401)
//
//	if errors.IsUserFacing(err) {
//	    notifier.Show(ctx, msg)
//	}
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on a later tick
//   - UserFacing: errors worth surfacing to the user (auth failure, unreachable endpoint)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Classifier-related sentinel errors
var (
	// ErrNotConfigured indicates that the classifier endpoint or API key is missing.
	ErrNotConfigured = New("classifier not configured")
	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = New("unknown classifier provider")
	// ErrUnauthorized indicates the provider rejected the credentials (HTTP 401/403).
	ErrUnauthorized = New("classifier rejected credentials")
	// ErrUnreachable indicates the endpoint could not be reached (DNS, refused connection).
	ErrUnreachable = New("classifier endpoint unreachable")
	// ErrMalformedResponse indicates the reply did not match the provider contract.
	ErrMalformedResponse = New("malformed classifier response")
	// ErrEmptyReply indicates the provider answered with no text.
	ErrEmptyReply = New("empty classifier reply")
	// ErrUnexpectedStatus indicates a non-2xx status other than 401/403.
	ErrUnexpectedStatus = New("unexpected classifier status")
)

// Monitor-related sentinel errors
var (
	// ErrSessionNotFound indicates that a session is not tracked by the registry.
	ErrSessionNotFound = New("session not found")
	// ErrMonitorClosed indicates that the monitor loop has shut down.
	ErrMonitorClosed = New("monitor closed")
	// ErrMonitorDisabled indicates a check was requested while monitoring is off.
	ErrMonitorDisabled = New("monitoring is disabled")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// TermwatchError is the base interface implemented by all typed errors in
// this package.
type TermwatchError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient.
	IsRetryable() bool

	// IsUserFacing returns true if the error should be shown to the user.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Classifier Errors
// -----------------------------------------------------------------------------

// Kind classifies why a classifier call failed.
type Kind int

const (
	// KindConfig is a configuration problem (missing settings, unknown provider).
	KindConfig Kind = iota
	// KindAuth is an authentication failure (HTTP 401/403).
	KindAuth
	// KindTransport is a network failure (DNS, refused connection, reset).
	KindTransport
	// KindTimeout is a request that exceeded the transport timeout.
	KindTimeout
	// KindProtocol is an unexpected status or a reply that broke the provider contract.
	KindProtocol
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ClassifierError represents a failed classifier call.
//
// Example:
//
//	err := errors.NewClassifierError(errors.KindProtocol, "missing choices", errors.ErrMalformedResponse)
//	err = err.WithProvider("openai")
//	fmt.Println(err) // "classifier error [kind=protocol, provider=openai]: missing choices: malformed classifier response"
type ClassifierError struct {
	baseError
	Kind       Kind
	Provider   string
	StatusCode int
}

// NewClassifierError creates a new ClassifierError. Severity, retryability
// and user visibility are derived from the kind.
func NewClassifierError(kind Kind, message string, cause error) *ClassifierError {
	e := &ClassifierError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityWarning,
		},
		Kind: kind,
	}
	switch kind {
	case KindAuth:
		e.severity = SeverityError
		e.userFacing = true
	case KindTransport:
		e.retryable = true
		e.userFacing = Is(cause, ErrUnreachable)
	case KindTimeout:
		e.retryable = true
	case KindConfig:
		e.severity = SeverityError
	}
	return e
}

// WithProvider adds the provider name to the error context.
func (e *ClassifierError) WithProvider(name string) *ClassifierError {
	e.Provider = name
	return e
}

// WithStatusCode adds the HTTP status code to the error context.
func (e *ClassifierError) WithStatusCode(code int) *ClassifierError {
	e.StatusCode = code
	return e
}

// Error returns the formatted error message.
func (e *ClassifierError) Error() string {
	parts := []string{"kind=" + e.Kind.String()}
	if e.Provider != "" {
		parts = append(parts, "provider="+e.Provider)
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	prefix := fmt.Sprintf("classifier error [%s]", strings.Join(parts, ", "))
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Session Errors
// -----------------------------------------------------------------------------

// SessionError represents a failure while evaluating one monitored session.
type SessionError struct {
	baseError
	SessionID string
	Stage     string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithSessionID adds a session ID to the error context.
func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

// WithStage records which pipeline stage failed (e.g. "fingerprint", "classify").
func (e *SessionError) WithStage(stage string) *SessionError {
	e.Stage = stage
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	var parts []string
	if e.SessionID != "" {
		parts = append(parts, "session="+e.SessionID)
	}
	if e.Stage != "" {
		parts = append(parts, "stage="+e.Stage)
	}
	prefix := "session error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("session error [%s]", strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Validation Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			cause:      ErrInvalidInput,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField sets the offending field name.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue sets the offending value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.message
	}
	if e.Value != nil {
		return fmt.Sprintf("validation error [%s]: %s (got: %v)", e.Field, e.message, e.Value)
	}
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.message)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error is transient and the operation may
// succeed on a later attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te TermwatchError
	if As(err, &te) {
		return te.IsRetryable()
	}
	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error should be surfaced to the user
// rather than only logged.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var te TermwatchError
	if As(err, &te) {
		return te.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement TermwatchError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var te TermwatchError
	if As(err, &te) {
		return te.Severity()
	}
	return SeverityError
}

// KindOf returns the classifier error kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ce *ClassifierError
	if As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
