package core

import "fmt"

// Kind classifies an AppError for the external interface to map onto a
// transport-level status (HTTP, CLI exit code, etc.) without string matching.
type Kind string

const (
	KindInternal   Kind = "INTERNAL"
	KindNotFound   Kind = "NOT_FOUND"
	KindBadRequest Kind = "BAD_REQUEST"
	KindValidation Kind = "VALIDATION"
)

// AppError is the typed error every core operation returns on failure. It
// carries a Kind so callers can branch on error category without parsing
// messages, and wraps an optional underlying cause for %w-style chains.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func internalErr(msg string, cause error) error {
	return &AppError{Kind: KindInternal, Message: msg, Cause: cause}
}

func notFoundErr(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func badRequestErr(format string, args ...any) error {
	return &AppError{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func validationErr(format string, args ...any) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
