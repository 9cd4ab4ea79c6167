// Package errors provides the unified application error type for the
// Connexa backend. Errors carry a machine-readable code, the HTTP status
// to respond with, and human-readable detail lines that end up in the
// response envelope.
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a short human-readable summary.
	Message string `json:"error"`
	// Details contains additional human-readable detail lines.
	Details []string `json:"details,omitempty"`
	// HTTPStatus is the HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, never exposed to clients.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails appends detail lines and returns the receiver.
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// --- Common Error Constructors ---

// Validation creates a 400 error with the given detail lines.
func Validation(details ...string) *AppError {
	return &AppError{
		Code: CodeValidationFailed, Message: "Validation failed",
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// MissingParam creates a 400 error for an absent request parameter.
func MissingParam(param string) *AppError {
	return &AppError{
		Code: CodeMissingParam, Message: "Bad request",
		HTTPStatus: http.StatusBadRequest,
		Details:    []string{fmt.Sprintf("Missing %s parameter", param)},
	}
}

// Unauthorized creates a 401 error with the given code.
func Unauthorized(code ErrorCode, message string, details ...string) *AppError {
	return &AppError{
		Code: code, Message: message,
		HTTPStatus: http.StatusUnauthorized, Details: details,
	}
}

// NoToken creates a 401 error for a missing authentication token.
func NoToken() *AppError {
	return Unauthorized(CodeNoToken, "Access denied", "No authentication token provided")
}

// TokenRevoked creates a 401 error for a revoked token.
func TokenRevoked() *AppError {
	return Unauthorized(CodeTokenRevoked, "Token revoked", "This token has been revoked")
}

// TokenExpired creates a 401 error for an expired token.
func TokenExpired() *AppError {
	return Unauthorized(CodeTokenExpired, "Authentication failed", "Token has expired")
}

// InvalidToken creates a 401 error for a token failing verification.
func InvalidToken() *AppError {
	return Unauthorized(CodeTokenInvalid, "Authentication failed", "Invalid authentication token")
}

// InvalidCredentials creates a 401 error for a failed login.
func InvalidCredentials() *AppError {
	return Unauthorized(CodeInvalidCredentials, "Authentication failed", "Invalid email or password")
}

// Forbidden creates a 403 error with the given code.
func Forbidden(code ErrorCode, details ...string) *AppError {
	return &AppError{
		Code: code, Message: "Access forbidden",
		HTTPStatus: http.StatusForbidden, Details: details,
	}
}

// InsufficientPermissions creates a 403 error naming the required roles.
func InsufficientPermissions(required ...string) *AppError {
	e := &AppError{
		Code: CodeInsufficientPermissions, Message: "Insufficient permissions",
		HTTPStatus: http.StatusForbidden,
	}
	if len(required) > 0 {
		e.Details = []string{fmt.Sprintf("Access denied. Required roles: %s", strings.Join(required, ", "))}
	}
	return e
}

// NotFound creates a 404 error for the named resource.
func NotFound(resource string) *AppError {
	return &AppError{
		Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// EmailExists creates a 409 error for a duplicate registration email.
func EmailExists() *AppError {
	return &AppError{
		Code: CodeEmailExists, Message: "Email already registered",
		HTTPStatus: http.StatusConflict,
		Details:    []string{"This email address is already in use. Please use a different email or try logging in."},
	}
}

// RateLimited creates a 429 error with the given code.
func RateLimited(code ErrorCode, details ...string) *AppError {
	return &AppError{
		Code: code, Message: "Too many requests",
		HTTPStatus: http.StatusTooManyRequests, Details: details,
	}
}

// Internal creates a 500 error wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: CodeInternal, Message: "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Details:    []string{"An unexpected error occurred"},
		Cause:      cause,
	}
}

// AuthServiceError creates a 500 error for infrastructure failures during
// authentication. Kept distinct from 401 so callers can tell a store outage
// from bad credentials.
func AuthServiceError(cause error) *AppError {
	return &AppError{
		Code: CodeAuthServiceError, Message: "Authentication service error",
		HTTPStatus: http.StatusInternalServerError,
		Details:    []string{"Unable to verify user status"},
		Cause:      cause,
	}
}
