// Package errors provides the structured error type returned by the music API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a structured application error.
type Error struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithError returns a copy of e wrapping err.
func (e *Error) WithError(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage returns a copy of e with a client-facing message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// New creates a new Error.
func New(code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error with error code and message.
func Wrap(err error, code, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Error codes
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeMissingToken       = "MISSING_TOKEN"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"

	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeSongNotFound     = "SONG_NOT_FOUND"
	ErrCodePlaylistNotFound = "PLAYLIST_NOT_FOUND"
	ErrCodeInvalidID        = "INVALID_ID"

	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeMissingFile      = "MISSING_FILE"

	ErrCodeUploadFailed = "UPLOAD_FAILED"
)

// Predefined errors. Status codes follow the public API contract: bad credentials
// are client errors (400) and duplicate registration is refused with 403.
var (
	ErrInternal        = New(ErrCodeInternal, "Internal Server Error", http.StatusInternalServerError)
	ErrNotFound        = New(ErrCodeNotFound, "Resource not found", http.StatusNotFound)
	ErrConflict        = New(ErrCodeConflict, "User with given email already Exist!", http.StatusForbidden)
	ErrForbidden       = New(ErrCodeForbidden, "You don't have access to this content!", http.StatusForbidden)
	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests)
)

var (
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "invalid email or password!", http.StatusBadRequest)
	ErrMissingToken       = New(ErrCodeMissingToken, "Access denied, no token provided.", http.StatusBadRequest)
	ErrTokenInvalid       = New(ErrCodeTokenInvalid, "invalid token", http.StatusBadRequest)
)

var (
	ErrUserNotFound     = New(ErrCodeUserNotFound, "User not found", http.StatusNotFound)
	ErrSongNotFound     = New(ErrCodeSongNotFound, "song does not exist", http.StatusNotFound)
	ErrPlaylistNotFound = New(ErrCodePlaylistNotFound, "Playlist not found", http.StatusNotFound)
	ErrInvalidID        = New(ErrCodeInvalidID, "Invalid ID.", http.StatusNotFound)
)

var (
	ErrValidationFailed = New(ErrCodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrMissingFile      = New(ErrCodeMissingFile, "Song file is required", http.StatusBadRequest)
	ErrUploadFailed     = New(ErrCodeUploadFailed, "Failed to upload song file", http.StatusBadGateway)
)

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsError checks if an error is a specific application error.
func IsError(err error, target *Error) bool {
	if err == nil {
		return false
	}
	appErr, ok := As(err)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}

// GetHTTPStatus returns the HTTP status code for an error.
// If the error is not an *Error, returns 500.
func GetHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}

// GetCode returns the error code for an error.
// If the error is not an *Error, returns INTERNAL_ERROR.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := As(err)
	if !ok {
		return ErrCodeInternal
	}
	return appErr.Code
}
