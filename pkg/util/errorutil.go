package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to transport and tests.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeDuplicateUser       = "DUPLICATE_USER"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeDependencyFailure   = "DEPENDENCY_FAILURE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewDuplicateUser(email string) error {
	return NewDomainError(CodeDuplicateUser, "email already registered", http.StatusConflict,
		map[string]any{"email": email})
}

// NewInvalidCredentials is deliberately generic: user-not-found and wrong-password
// must be indistinguishable to the caller.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
}

func NewInvalidRefreshToken(err error) error {
	return &DomainError{
		Code:       CodeInvalidRefreshToken,
		Message:    "invalid refresh token",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewUserNotFound(subject string) error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound,
		map[string]any{"subject": subject})
}

// NewDependencyFailure wraps infrastructure errors (store unreachable, hasher
// failure) so callers can tell "bad request" from "system unavailable".
func NewDependencyFailure(op string, err error) error {
	return &DomainError{
		Code:       CodeDependencyFailure,
		Message:    fmt.Sprintf("dependency failure: %s", op),
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError, preserving domain kinds.
func MapError(err error) error {
	return ToDomainError(err)
}
