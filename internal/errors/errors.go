package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Folio error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"    // 401
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// FolioError represents a structured error with code, status, and details.
type FolioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for missing or malformed input.
func NewInvalidRequest(msg string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidField creates a 400 error naming the offending field.
func NewInvalidField(field, msg string) *FolioError {
	return &FolioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: fmt.Sprintf("%s: %s", field, msg),
		Details: map[string]any{"field": field},
	}
}

// NewUnauthorized creates a 401 error for mutations attempted without an admin session.
func NewUnauthorized() *FolioError {
	return &FolioError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "admin session required",
	}
}

// NewInvalidCredentials creates a 401 error for a failed login.
// It does not say whether the username or the password was wrong.
func NewInvalidCredentials() *FolioError {
	return &FolioError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "invalid username or password",
	}
}

// NewNotFound creates a 404 error for an absent entity.
func NewNotFound(kind, identifier string) *FolioError {
	return &FolioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates a 409 error when an identity is already taken.
func NewConflict(kind, field, value string) *FolioError {
	return &FolioError{
		Code:    ErrConflict,
		Status:  409,
		Message: fmt.Sprintf("%s with %s %q already exists", kind, field, value),
		Details: map[string]any{"kind": kind, "field": field, "value": value},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *FolioError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &FolioError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// As returns the FolioError in err's chain, if any.
func As(err error) (*FolioError, bool) {
	var fErr *FolioError
	if stderrors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}

// Is checks if an error (or anything it wraps) is a FolioError with the given code.
func Is(err error, code ErrorCode) bool {
	if fErr, ok := As(err); ok {
		return fErr.Code == code
	}
	return false
}
