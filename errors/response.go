package errors

import (
	stderrors "errors"
)

// Response is the JSON error envelope returned to clients:
//
//	{ "error": "...", "details": ["..."], "code": "..." }
type Response struct {
	Error   string    `json:"error"`
	Details []string  `json:"details,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}

// ToResponse converts an AppError to the client-facing envelope.
// The Cause is deliberately dropped.
func (e *AppError) ToResponse() Response {
	return Response{
		Error:   e.Message,
		Details: e.Details,
		Code:    e.Code,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
