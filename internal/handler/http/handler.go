package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/service"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/view"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/httputil"
)

const forbiddenMessage = "You are not authorized to view this page"

// Handler serves the CRM pages.
type Handler struct {
	crm      *service.CRMService
	accounts *service.AccountService
	sessions *session.Manager
	views    view.Renderer
	logger   *slog.Logger
}

// NewHandler creates a new page handler.
func NewHandler(
	crm *service.CRMService,
	accounts *service.AccountService,
	sessions *session.Manager,
	views view.Renderer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		crm:      crm,
		accounts: accounts,
		sessions: sessions,
		views:    views,
		logger:   logger,
	}
}

// render hands data to the named page. Queued flashes are consumed and the
// session is saved before anything is written.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := &view.Page{
		Title:    title,
		Identity: IdentityFromContext(r.Context()),
		Data:     data,
	}
	if sess := SessionFromContext(r.Context()); sess != nil {
		page.Flashes = sess.PopFlashes()
		h.saveSession(w, r, sess)
	}

	if err := h.views.Render(w, status, name, page); err != nil {
		httputil.Logger(r, h.logger).ErrorContext(r.Context(), "failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		httputil.WriteText(w, http.StatusInternalServerError, "An internal error occurred.")
	}
}

// redirect sends a 302, saving the session first so queued flashes
// survive.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, location string) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		h.saveSession(w, r, sess)
	}
	httputil.Redirect(w, r, location)
}

func (h *Handler) flash(r *http.Request, level, message string) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(level, message)
	}
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		httputil.Logger(r, h.logger).ErrorContext(r.Context(), "failed to save session",
			slog.String("error", err.Error()),
		)
	}
}

type errorPage struct {
	Status  int
	Message string
}

// renderError maps err to a status page. Forbidden stays plain text.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := httputil.ErrorStatus(r, err, h.logger)
	if status == http.StatusForbidden {
		forbidden(w, r)
		return
	}
	h.render(w, r, status, view.PageError, http.StatusText(status), errorPage{Status: status, Message: msg})
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, apperrors.ErrNotFound)
}

func forbidden(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteText(w, http.StatusForbidden, forbiddenMessage)
}

// pathID parses the {id} URL parameter. A malformed id is reported as not
// found.
func pathID(r *http.Request, resource string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, ok := httputil.ParseID(raw)
	if !ok {
		return 0, apperrors.NotFound(resource, raw)
	}
	return id, nil
}

// maxFormBytes caps url-encoded form bodies.
const maxFormBytes = 1 << 20

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return apperrors.InvalidInput("malformed form data")
	}
	return nil
}
