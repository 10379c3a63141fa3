package http

import (
	"net/http"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/middleware"
)

// Guard wraps a handler and may answer the request itself instead.
type Guard func(http.Handler) http.Handler

func redirectTo(location string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, location, http.StatusFound)
	})
}

// RequireAnonymous sends signed-in visitors to the home page.
func RequireAnonymous() Guard {
	return middleware.RequireAnonymous(redirectTo("/"))
}

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth() Guard {
	return middleware.RequireAuthenticated(redirectTo("/login/"))
}

// AllowRoles answers 403 unless the identity has one of roles. It must run
// after RequireAuth.
func AllowRoles(roles ...string) Guard {
	return middleware.RequireRole(http.HandlerFunc(forbidden), roles...)
}

// AdminOnly lets admins through, sends customers to their own dashboard and
// answers 403 for anyone else. It must run after RequireAuth.
func AdminOnly() Guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch IdentityFromContext(r.Context()).Role {
			case domain.RoleAdmin:
				next.ServeHTTP(w, r)
			case domain.RoleCustomer:
				http.Redirect(w, r, "/user/", http.StatusFound)
			default:
				forbidden(w, r)
			}
		})
	}
}

// Chain composes guards so the first one runs outermost.
func Chain(guards ...Guard) Guard {
	return func(h http.Handler) http.Handler {
		for i := len(guards) - 1; i >= 0; i-- {
			h = guards[i](h)
		}
		return h
	}
}
