package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/auth"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/storage"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// User-facing messages.
const (
	LoginFailedMessage    = "Username or password is Incorrect!"
	AvatarTooLargeMessage = "Ensure the image is at most 5 MiB."
	AvatarInvalidMessage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// ErrInvalidResetLink is returned for a reset URL that is malformed,
// expired, already used or names no active user.
var ErrInvalidResetLink = errors.New("password reset link is invalid")

// AccountService implements registration, login, account settings and the
// password-reset flow.
type AccountService struct {
	users     repository.UserRepository
	customers repository.CustomerRepository
	storage   storage.Storage
	tokens    *auth.ResetTokenManager
	producer  *event.Producer
	baseURL   string
	logger    *slog.Logger

	hashCost int
}

// NewAccountService creates a new account service. baseURL prefixes the
// reset links handed to the mailer.
func NewAccountService(
	users repository.UserRepository,
	customers repository.CustomerRepository,
	store storage.Storage,
	tokens *auth.ResetTokenManager,
	producer *event.Producer,
	baseURL string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		customers: customers,
		storage:   store,
		tokens:    tokens,
		producer:  producer,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
		hashCost:  bcryptCost,
	}
}

// --- Inputs and view-models ---

// RegisterInput is the submitted registration form.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username"`
	Email     string `form:"email" validate:"required,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// SetPasswordInput is the submitted new-password form of the reset flow.
type SetPasswordInput struct {
	NewPassword1 string `form:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

// PasswordResetInput is the submitted reset request form.
type PasswordResetInput struct {
	Email string `form:"email" validate:"required,email,max=254"`
}

// AccountInput is the submitted account settings form.
type AccountInput struct {
	Name  string `form:"name" validate:"required,max=200"`
	Phone string `form:"phone" validate:"required,max=200"`
	Email string `form:"email" validate:"required,email,max=200"`
}

// AccountForm is the account settings page.
type AccountForm struct {
	Customer  *domain.Customer
	Input     AccountInput
	AvatarURL string
	Errors    FormErrors
	Saved     bool
}

// --- Registration and login ---

// Register creates a login account in the customer group together with its
// customer profile.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs, err := validateForm(in)
	if err != nil {
		return nil, err
	}
	if _, ok := errs["password2"]; !ok {
		checkPassword(errs, "password2", in.Password1, in.Username)
	}
	if _, ok := errs["username"]; !ok {
		if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
			errs.Add("username", "A user with that username already exists.")
		} else if !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}
	if err := errs.errOrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		IsActive:     true,
	}
	customer := &domain.Customer{
		Name:  in.Username,
		Email: in.Email,
	}

	if err := s.users.Register(ctx, user, customer); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, FormErrors{"username": "A user with that username already exists."}
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	registrationsTotal.Inc()

	if err := s.producer.PublishUserRegistered(ctx, user, customer); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.Int64("customer_id", customer.ID),
	)
	return user, nil
}

// checkPassword applies the password strength rules and records the first
// violation under field.
func checkPassword(errs FormErrors, field, password, username string) {
	switch {
	case len([]rune(password)) < 8:
		errs.Add(field, "This password is too short. It must contain at least 8 characters.")
	case isAllDigits(password):
		errs.Add(field, "This password is entirely numeric.")
	case username != "" && strings.EqualFold(password, username):
		errs.Add(field, "The password is too similar to the username.")
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// Login checks credentials. Every failure returns the same Unauthorized
// error carrying LoginFailedMessage.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	fail := apperrors.Unauthorized(LoginFailedMessage)

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		loginsTotal.WithLabelValues(loginFailure).Inc()
		return nil, fail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		loginsTotal.WithLabelValues(loginFailure).Inc()
		return nil, fail
	}
	if !user.IsActive {
		loginsTotal.WithLabelValues(loginInactive).Inc()
		return nil, fail
	}

	loginsTotal.WithLabelValues(loginSuccess).Inc()
	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))
	return user, nil
}

// Identity resolves the session's user. Unknown or deactivated users
// resolve to the anonymous identity.
func (s *AccountService) Identity(ctx context.Context, userID int64) (domain.Identity, error) {
	if userID == 0 {
		return domain.Identity{}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Identity{}, nil
		}
		return domain.Identity{}, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return domain.Identity{}, nil
	}

	id := domain.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
	if user.Role == domain.RoleCustomer {
		c, err := s.customers.GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			id.CustomerID = c.ID
		case !apperrors.IsNotFound(err):
			return domain.Identity{}, fmt.Errorf("get customer for user: %w", err)
		}
	}
	return id, nil
}

// --- Account settings ---

// Account returns the settings form for the identity's customer.
func (s *AccountService) Account(ctx context.Context, id domain.Identity) (*AccountForm, error) {
	customer, err := s.ownCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.accountForm(ctx, customer), nil
}

func (s *AccountService) ownCustomer(ctx context.Context, id domain.Identity) (*domain.Customer, error) {
	if !id.HasCustomer() {
		return nil, apperrors.NotFound("customer for user", id.UserID)
	}
	c, err := s.customers.GetByID(ctx, id.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (s *AccountService) accountForm(ctx context.Context, c *domain.Customer) *AccountForm {
	form := &AccountForm{
		Customer: c,
		Input:    AccountInput{Name: c.Name, Phone: c.Phone, Email: c.Email},
		Errors:   FormErrors{},
	}
	if c.ProfilePic != "" {
		url, err := s.storage.URL(ctx, c.ProfilePic)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to resolve avatar url",
				slog.String("key", c.ProfilePic),
				slog.String("error", err.Error()),
			)
		}
		form.AvatarURL = url
	}
	return form
}

// UpdateAccount saves the profile fields and, when avatar is non-nil, a new
// profile picture. On validation failure nothing is stored.
func (s *AccountService) UpdateAccount(ctx context.Context, id domain.Identity, in AccountInput, avatar io.Reader) (*AccountForm, error) {
	customer, err := s.ownCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	form := s.accountForm(ctx, customer)

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	form.Input = in

	errs, err := validateForm(in)
	if err != nil {
		return nil, err
	}
	form.Errors = errs

	var pic *storage.Avatar
	if avatar != nil {
		pic, err = storage.ReadAvatar(avatar)
		switch {
		case errors.Is(err, storage.ErrAvatarTooLarge):
			form.Errors.Add("profile_pic", AvatarTooLargeMessage)
		case errors.Is(err, storage.ErrAvatarNotImage):
			form.Errors.Add("profile_pic", AvatarInvalidMessage)
		case err != nil:
			return nil, err
		}
	}
	if err := form.Errors.errOrNil(); err != nil {
		return form, err
	}

	updated := *customer
	updated.Name = in.Name
	updated.Phone = in.Phone
	updated.Email = in.Email

	var uploaded string
	if pic != nil {
		res, err := s.storage.Upload(ctx, pic.Input(storage.AvatarKey(customer.ID, in.Name, pic.Extension)))
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		uploaded = res.Key
		updated.ProfilePic = res.Key
	}

	if err := s.customers.Update(ctx, &updated); err != nil {
		if uploaded != "" {
			s.deleteAvatar(ctx, uploaded)
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if uploaded != "" && customer.ProfilePic != "" {
		s.deleteAvatar(ctx, customer.ProfilePic)
	}

	s.logger.InfoContext(ctx, "account updated",
		slog.Int64("customer_id", updated.ID),
		slog.Bool("avatar_changed", uploaded != ""),
	)

	saved := s.accountForm(ctx, &updated)
	saved.Saved = true
	return saved, nil
}

func (s *AccountService) deleteAvatar(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.WarnContext(ctx, "failed to delete avatar",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// --- Password reset ---

// RequestPasswordReset issues a reset link for the active account
// registered with in.Email and hands it to the mailer through an event.
// Only a malformed form is reported; whether an account exists is not.
func (s *AccountService) RequestPasswordReset(ctx context.Context, in PasswordResetInput) error {
	in.Email = strings.TrimSpace(in.Email)
	errs, err := validateForm(in)
	if err != nil {
		return err
	}
	if err := errs.errOrNil(); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to look up user for password reset",
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	token, err := s.tokens.Issue(user.ID, user.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue password reset token",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	link := s.ResetURL(user.ID, token)
	if err := s.producer.PublishPasswordReset(ctx, user, link); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.Int64("user_id", user.ID))
	return nil
}

// ResetURL builds the absolute reset link for a user and token.
func (s *AccountService) ResetURL(userID int64, token string) string {
	return fmt.Sprintf("%s/reset/%s/%s/", s.baseURL, auth.EncodeUID(userID), token)
}

// CheckResetLink returns the user a reset link belongs to, or
// ErrInvalidResetLink.
func (s *AccountService) CheckResetLink(ctx context.Context, uidb64, token string) (*domain.User, error) {
	userID, err := auth.DecodeUID(uidb64)
	if err != nil {
		return nil, ErrInvalidResetLink
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidResetLink
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidResetLink
	}

	if err := s.tokens.Verify(token, user.ID, user.PasswordHash); err != nil {
		return nil, ErrInvalidResetLink
	}
	return user, nil
}

// ResetPassword sets a new password through a valid reset link. The link
// stops working once this succeeds.
func (s *AccountService) ResetPassword(ctx context.Context, uidb64, token string, in SetPasswordInput) error {
	user, err := s.CheckResetLink(ctx, uidb64, token)
	if err != nil {
		return err
	}

	errs, err := validateForm(in)
	if err != nil {
		return err
	}
	if _, ok := errs["new_password2"]; !ok {
		checkPassword(errs, "new_password2", in.NewPassword1, user.Username)
	}
	if err := errs.errOrNil(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword1), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.Int64("user_id", user.ID))
	return nil
}
