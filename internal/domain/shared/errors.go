// Package shared holds domain primitives used across bounded contexts.
package shared

import "fmt"

// DomainError is a coded error for business rule violations that need more
// context than a sentinel error carries. The HTTP layer translates the code
// into a status and API error code.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is and errors.As.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewDomainError creates a coded domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError attaches a code and message to an underlying error while
// keeping it reachable through errors.Is.
func WrapDomainError(code string, cause error, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}
