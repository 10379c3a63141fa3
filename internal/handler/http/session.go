package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/httputil"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/middleware"
)

type contextKey string

const (
	sessionKey  contextKey = "session"
	identityKey contextKey = "identity"
)

// IdentityResolver maps a session's user id to the current identity.
type IdentityResolver interface {
	Identity(ctx context.Context, userID int64) (domain.Identity, error)
}

// SessionFromContext returns the request's session, or nil outside the
// Sessions middleware.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// IdentityFromContext returns the resolved identity. The zero value is an
// anonymous visitor.
func IdentityFromContext(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}

// Sessions loads the session named by the cookie and resolves its identity
// once per request. Authenticated requests are also marked through
// middleware.WithRole so the generic guards can see them.
func Sessions(mgr *session.Manager, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := mgr.Load(ctx, r)
			if err != nil {
				httputil.Logger(r, logger).ErrorContext(ctx, "failed to load session",
					slog.String("error", err.Error()),
				)
				httputil.WriteText(w, http.StatusInternalServerError, "An internal error occurred.")
				return
			}

			identity, err := resolver.Identity(ctx, sess.UserID())
			if err != nil {
				httputil.Logger(r, logger).ErrorContext(ctx, "failed to resolve identity",
					slog.Int64("user_id", sess.UserID()),
					slog.String("error", err.Error()),
				)
				httputil.WriteText(w, http.StatusInternalServerError, "An internal error occurred.")
				return
			}

			ctx = context.WithValue(ctx, sessionKey, sess)
			ctx = context.WithValue(ctx, identityKey, identity)
			if identity.IsAuthenticated() {
				ctx = middleware.WithRole(ctx, identity.UserID, identity.Role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
