package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/service"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/storage"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/view"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/httputil"
)

// maxAccountFormBytes leaves room for the text fields next to the largest
// accepted avatar.
const maxAccountFormBytes = storage.MaxAvatarBytes + 1<<20

type formPage[T any] struct {
	Input  T
	Errors service.FormErrors
}

type loginPage struct {
	Username string
}

type resetFormPage struct {
	Valid  bool
	Errors service.FormErrors
}

// --- Registration and login ---

// RegisterForm handles GET /register/
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageRegister, "Register", formPage[service.RegisterInput]{Errors: service.FormErrors{}})
}

// Register handles POST /register/
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	in := service.RegisterInput{
		Username:  r.PostForm.Get("username"),
		Email:     r.PostForm.Get("email"),
		Password1: r.PostForm.Get("password1"),
		Password2: r.PostForm.Get("password2"),
	}
	user, err := h.accounts.Register(r.Context(), in)
	if errs, ok := service.AsFormErrors(err); ok {
		in.Password1, in.Password2 = "", ""
		h.render(w, r, http.StatusOK, view.PageRegister, "Register", formPage[service.RegisterInput]{Input: in, Errors: errs})
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.flash(r, session.LevelSuccess, "Account Created Successfully.. for "+user.Username)
	h.redirect(w, r, "/login/")
}

// LoginForm handles GET /login/
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PageLogin, "Login", loginPage{})
}

// Login handles POST /login/
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	username := r.PostForm.Get("username")
	user, err := h.accounts.Login(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, apperrors.ErrUnauthorized) {
		h.flash(r, session.LevelInfo, service.LoginFailedMessage)
		h.render(w, r, http.StatusOK, view.PageLogin, "Login", loginPage{Username: username})
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	sess := SessionFromContext(r.Context())
	if err := h.sessions.Login(r.Context(), w, sess, user.ID); err != nil {
		h.renderError(w, r, err)
		return
	}
	httputil.Redirect(w, r, "/")
}

// Logout handles GET and POST /logout/
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, SessionFromContext(r.Context())); err != nil {
		httputil.Logger(r, h.logger).ErrorContext(r.Context(), "failed to destroy session",
			slog.String("error", err.Error()),
		)
	}
	httputil.Redirect(w, r, "/login/")
}

// --- Account settings ---

// Account handles GET /account/
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	form, err := h.accounts.Account(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageAccount, "Account settings", form)
}

// UpdateAccount handles POST /account/
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := IdentityFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxAccountFormBytes)
	if err := r.ParseMultipartForm(maxAccountFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			h.renderError(w, r, apperrors.InvalidInput("malformed form data"))
			return
		}
		form, err := h.accounts.Account(ctx, identity)
		if err != nil {
			h.renderError(w, r, err)
			return
		}
		form.Errors.Add("profile_pic", service.AvatarTooLargeMessage)
		h.render(w, r, http.StatusOK, view.PageAccount, "Account settings", form)
		return
	}

	var avatar io.Reader
	file, _, err := r.FormFile("profile_pic")
	switch {
	case err == nil:
		defer func(f multipart.File) { _ = f.Close() }(file)
		avatar = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		h.renderError(w, r, apperrors.InvalidInput("malformed form data"))
		return
	}

	form, err := h.accounts.UpdateAccount(ctx, identity, service.AccountInput{
		Name:  r.FormValue("name"),
		Phone: r.FormValue("phone"),
		Email: r.FormValue("email"),
	}, avatar)
	if _, ok := service.AsFormErrors(err); ok {
		h.render(w, r, http.StatusOK, view.PageAccount, "Account settings", form)
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.flash(r, session.LevelSuccess, "Your account has been updated.")
	h.render(w, r, http.StatusOK, view.PageAccount, "Account settings", form)
}

// --- Password reset ---

// PasswordResetForm handles GET /reset_password/
func (h *Handler) PasswordResetForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PagePasswordReset, "Reset password", formPage[service.PasswordResetInput]{Errors: service.FormErrors{}})
}

// PasswordReset handles POST /reset_password/
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	in := service.PasswordResetInput{Email: r.PostForm.Get("email")}
	err := h.accounts.RequestPasswordReset(r.Context(), in)
	if errs, ok := service.AsFormErrors(err); ok {
		h.render(w, r, http.StatusOK, view.PagePasswordReset, "Reset password", formPage[service.PasswordResetInput]{Input: in, Errors: errs})
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.redirect(w, r, "/reset_password_sent/")
}

// PasswordResetSent handles GET /reset_password_sent/
func (h *Handler) PasswordResetSent(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PagePasswordResetSent, "Password reset sent", nil)
}

// PasswordResetConfirmForm handles GET /reset/{uidb64}/{token}/
func (h *Handler) PasswordResetConfirmForm(w http.ResponseWriter, r *http.Request) {
	_, err := h.accounts.CheckResetLink(r.Context(), chi.URLParam(r, "uidb64"), chi.URLParam(r, "token"))
	if err != nil && !errors.Is(err, service.ErrInvalidResetLink) {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PagePasswordResetForm, "Enter new password",
		resetFormPage{Valid: err == nil, Errors: service.FormErrors{}})
}

// PasswordResetConfirm handles POST /reset/{uidb64}/{token}/
func (h *Handler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}

	err := h.accounts.ResetPassword(r.Context(), chi.URLParam(r, "uidb64"), chi.URLParam(r, "token"), service.SetPasswordInput{
		NewPassword1: r.PostForm.Get("new_password1"),
		NewPassword2: r.PostForm.Get("new_password2"),
	})
	if errors.Is(err, service.ErrInvalidResetLink) {
		h.render(w, r, http.StatusOK, view.PagePasswordResetForm, "Enter new password", resetFormPage{Errors: service.FormErrors{}})
		return
	}
	if errs, ok := service.AsFormErrors(err); ok {
		h.render(w, r, http.StatusOK, view.PagePasswordResetForm, "Enter new password", resetFormPage{Valid: true, Errors: errs})
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.redirect(w, r, "/reset_password_complete/")
}

// PasswordResetComplete handles GET /reset_password_complete/
func (h *Handler) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.PagePasswordResetDone, "Password reset complete", nil)
}
