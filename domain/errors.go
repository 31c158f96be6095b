package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable       ErrorCode = "UNAVAILABLE"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	// Field names the offending input for validation errors.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches domain errors by code and message so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError builds an INVALID error that points at a request field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Message: message, Field: field}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrAppointmentNotFound = NewError(ErrCodeNotFound, "appointment not found")
	ErrServiceNotFound     = NewError(ErrCodeNotFound, "service not found")
	ErrEmployeeNotFound    = NewError(ErrCodeNotFound, "employee not found")
	ErrUserNotFound        = NewError(ErrCodeNotFound, "user not found")
	ErrSessionNotFound     = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidCredentials  = NewError(ErrCodeUnauthorized, "invalid credentials")
	ErrForbidden           = NewError(ErrCodeForbidden, "staff role required")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrStorageUnavailable  = NewError(ErrCodeUnavailable, "storage unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AsStorageFailure leaves domain errors untouched and classifies anything else as a
// transient storage failure.
func AsStorageFailure(err error) error {
	if err == nil {
		return nil
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return err
	}
	return WrapError(ErrCodeUnavailable, ErrStorageUnavailable.Message, err)
}
