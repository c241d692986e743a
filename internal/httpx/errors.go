// Package httpx defines the typed API error taxonomy and the response
// envelope. Services return *Error values; the central Echo error handler
// maps anything else to a 500 without leaking internals.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API error carrying the HTTP status it maps to.
type Error struct {
	Status  int    `json:"statusCode"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

func newError(status int, msg string) *Error { return &Error{Status: status, Message: msg} }

func BadRequest(msg string) *Error   { return newError(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return newError(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return newError(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return newError(http.StatusNotFound, msg) }
func Conflict(msg string) *Error     { return newError(http.StatusConflict, msg) }
func Internal(msg string) *Error     { return newError(http.StatusInternalServerError, msg) }

func UnsupportedMediaType(msg string) *Error {
	return newError(http.StatusUnsupportedMediaType, msg)
}

func UnprocessableEntity(msg string) *Error {
	return newError(http.StatusUnprocessableEntity, msg)
}

// AsError extracts a typed API error, if err wraps one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
