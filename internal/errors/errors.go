package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthSignupRejected ErrorCode = "AUTH-001"
	ErrCodeAuthLoginFailed    ErrorCode = "AUTH-002"
	ErrCodeAuthUnauthorized   ErrorCode = "AUTH-003"
	ErrCodeAuthNoSession      ErrorCode = "AUTH-004"
	ErrCodeAuthWrongStage     ErrorCode = "AUTH-005"
	ErrCodeAuthBusy           ErrorCode = "AUTH-006"

	// Organization errors (ORG-001 to ORG-099)
	ErrCodeOrgCreateFailed ErrorCode = "ORG-001"
	ErrCodeOrgJoinDenied   ErrorCode = "ORG-002"
	ErrCodeOrgNotFound     ErrorCode = "ORG-003"
	ErrCodeOrgJoinFailed   ErrorCode = "ORG-004"

	// Project errors (PROJECT-001 to PROJECT-099)
	ErrCodeProjectListFailed ErrorCode = "PROJECT-001"
	ErrCodeProjectNotFound   ErrorCode = "PROJECT-002"

	// User errors (USER-001 to USER-099)
	ErrCodeUserNotFound ErrorCode = "USER-001"

	// Network errors (NET-001 to NET-099)
	ErrCodeNetRequestFailed  ErrorCode = "NET-001"
	ErrCodeNetBadResponse    ErrorCode = "NET-002"
	ErrCodeNetUnexpectedCode ErrorCode = "NET-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// Kind classifies an error for presentation and recovery handling.
//
// The four kinds map directly to how the client reacts: validation errors are
// shown and dismissed, authorization errors invalidate the session and prompt
// re-authentication, not-found errors offer a navigation escape hatch, and
// network errors get a generic retry prompt.
type Kind int

const (
	// KindUnknown is an unclassified failure, treated like a network error
	KindUnknown Kind = iota
	// KindValidation is a user-correctable rejection (4xx with a message)
	KindValidation
	// KindAuthorization is a 401/403 outcome
	KindAuthorization
	// KindNotFound is a 404 outcome
	KindNotFound
	// KindNetwork is a transport failure or unexpected status
	KindNetwork
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ClientError represents an enhanced error with code, kind, suggestions, and cause
type ClientError struct {
	Code        ErrorCode
	Kind        Kind
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ClientError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// New creates a new ClientError
func New(code ErrorCode, kind Kind, message string) *ClientError {
	return &ClientError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new ClientError wrapping an existing error
func Wrap(code ErrorCode, kind Kind, message string, cause error) *ClientError {
	return &ClientError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ClientError) WithSuggestion(suggestion string) *ClientError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ClientError) WithSuggestions(suggestions ...string) *ClientError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// KindOf returns the kind of an error, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Kind
	}
	return KindUnknown
}

// IsAuthorization reports whether err is an authorization failure (401/403).
func IsAuthorization(err error) bool {
	return KindOf(err) == KindAuthorization
}

// IsNotFound reports whether err is a not-found failure (404).
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation reports whether err is a user-correctable rejection.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// Common error constructors for frequently used errors

// NewNoSessionError creates an error for protected operations without a session
func NewNoSessionError() *ClientError {
	return New(ErrCodeAuthNoSession, KindAuthorization, "not logged in").
		WithSuggestion("Run 'devtracker setup' to create an account and join an organization").
		WithSuggestion("Run 'devtracker auth login' if you already have an account")
}

// NewSessionExpiredError creates an error for a server-rejected token
func NewSessionExpiredError() *ClientError {
	return New(ErrCodeAuthUnauthorized, KindAuthorization, "session rejected by the server").
		WithSuggestion("Your saved session was cleared").
		WithSuggestion("Run 'devtracker auth login' to authenticate again")
}

// NewJoinDeniedError creates an error for a rejected organization join
func NewJoinDeniedError(orgID int64) *ClientError {
	return New(ErrCodeOrgJoinDenied, KindAuthorization, fmt.Sprintf("access denied joining organization %d", orgID)).
		WithSuggestion("Check the organization ID and passcode").
		WithSuggestion("Ask the organization owner for the current join passcode")
}

// NewOrgNotFoundError creates an error for a missing organization
func NewOrgNotFoundError(orgID int64) *ClientError {
	return New(ErrCodeOrgNotFound, KindNotFound, fmt.Sprintf("organization %d not found", orgID)).
		WithSuggestion("Check the organization ID").
		WithSuggestion("Use 'devtracker org create' to create a new organization instead")
}
