package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/logger"
)

// Redirect sends a 302 Found to the given location.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusFound)
}

// WriteText writes a plain-text response with the given status code.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ParseID parses a positive integer path parameter. A malformed id can never
// resolve to a record, so callers treat ok == false as not found.
func ParseID(param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Logger returns the request-scoped logger (set by the RequestLogger
// middleware) or the fallback when none is mounted.
func Logger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		return fallback
	}
	return l
}

// ErrorStatus maps err to an HTTP status and a user-facing message. Internal
// errors are logged with the request's correlation id and never leak details.
func ErrorStatus(r *http.Request, err error, fallback *slog.Logger) (int, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != http.StatusInternalServerError {
		return appErr.Status, appErr.Message
	}

	status := apperrors.HTTPStatus(err)
	switch status {
	case http.StatusNotFound:
		return status, "The requested page was not found."
	case http.StatusInternalServerError:
		Logger(r, fallback).ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", logger.CorrelationIDFromContext(r.Context())),
		)
		return status, "An internal error occurred."
	default:
		return status, http.StatusText(status)
	}
}
