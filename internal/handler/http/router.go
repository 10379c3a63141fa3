package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/health"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/middleware"
)

// RouterConfig holds the optional parts of the router.
type RouterConfig struct {
	ServiceName string

	// MediaRoot is served under MediaURLPrefix when set.
	MediaRoot      string
	MediaURLPrefix string

	PprofAllowedCIDRs []string

	// AuthRateLimit throttles login and reset-request submissions per client.
	AuthRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all CRM routes registered.
func NewRouter(
	h *Handler,
	resolver IdentityResolver,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, "/health", "/metrics"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	if cfg.MediaRoot != "" {
		prefix := "/" + strings.Trim(cfg.MediaURLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(cfg.MediaRoot))))
	}

	r.Group(func(r chi.Router) {
		r.Use(Sessions(h.sessions, resolver, logger))
		r.NotFound(h.NotFound)

		anonymous := Chain(RequireAnonymous())
		authenticated := Chain(RequireAuth())
		admin := Chain(RequireAuth(), AllowRoles(domain.RoleAdmin))
		customer := Chain(RequireAuth(), AllowRoles(domain.RoleCustomer))
		throttle := middleware.RateLimit(cfg.AuthRateLimit, logger)

		r.With(anonymous).Get("/register/", h.RegisterForm)
		r.With(anonymous).Post("/register/", h.Register)
		r.With(anonymous).Get("/login/", h.LoginForm)
		r.With(anonymous, throttle).Post("/login/", h.Login)
		r.With(authenticated).Get("/logout/", h.Logout)
		r.With(authenticated).Post("/logout/", h.Logout)

		r.With(RequireAuth(), AdminOnly()).Get("/", h.Home)
		r.With(customer).Get("/user/", h.UserPage)
		r.With(customer).Get("/account/", h.Account)
		r.With(customer).Post("/account/", h.UpdateAccount)

		r.With(admin).Get("/products/", h.Products)
		r.With(admin).Get("/customers/{id}/", h.Customer)
		r.With(admin).Get("/create_order/{id}/", h.NewOrders)
		r.With(admin).Post("/create_order/{id}/", h.CreateOrders)
		r.With(admin).Get("/update_order/{id}/", h.EditOrder)
		r.With(admin).Post("/update_order/{id}/", h.UpdateOrder)
		r.With(admin).Get("/delete_order/{id}/", h.ConfirmDelete)
		r.With(admin).Post("/delete_order/{id}/", h.DeleteOrder)

		r.Get("/reset_password/", h.PasswordResetForm)
		r.With(throttle).Post("/reset_password/", h.PasswordReset)
		r.Get("/reset_password_sent/", h.PasswordResetSent)
		r.Get("/reset/{uidb64}/{token}/", h.PasswordResetConfirmForm)
		r.Post("/reset/{uidb64}/{token}/", h.PasswordResetConfirm)
		r.Get("/reset_password_complete/", h.PasswordResetComplete)
	})

	return r
}
