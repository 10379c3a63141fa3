// Package errors defines the error kinds the CRM distinguishes when choosing
// which page to render.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Callers test with errors.Is; every AppError wraps exactly one.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

var kindStatus = []struct {
	kind   error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrAlreadyExists, http.StatusConflict},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
}

// AppError pairs a kind with a message that is safe to show on a page.
type AppError struct {
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(kind error, message string) *AppError {
	return &AppError{Message: message, Status: HTTPStatus(kind), Err: kind}
}

// NotFound reports a missing record, e.g. NotFound("order", 7).
func NotFound(resource string, id any) *AppError {
	return newAppError(ErrNotFound, fmt.Sprintf("%s with id %v not found", resource, id))
}

// AlreadyExists reports a uniqueness violation on field.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError(ErrAlreadyExists, fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError {
	return newAppError(ErrInvalidInput, message)
}

func Unauthorized(message string) *AppError {
	return newAppError(ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newAppError(ErrForbidden, message)
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// HTTPStatus returns the status an error renders with. Unknown errors are
// 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status
		}
	}
	return http.StatusInternalServerError
}
