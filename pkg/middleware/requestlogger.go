package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Rohit-bisht-rise/shopmanagement/pkg/logger"
)

// RequestLogger stores base, tagged with the request method and path, in
// the request context for logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base.With(slog.String("method", r.Method), slog.String("path", r.URL.Path))
			next.ServeHTTP(w, r.WithContext(logger.NewContext(r.Context(), l)))
		})
	}
}
