package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/fkhayef/plantswap/internal/api"
	"github.com/fkhayef/plantswap/internal/notification"
	"github.com/fkhayef/plantswap/internal/user"
)

// Password bounds enforced by the marketplace API.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 40
)

const loginSuccessMessage = "Login successful"

// Common errors
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrLoginRejected      = errors.New("login was not accepted")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordLength     = errors.New("password must be between 8 and 40 characters")
)

// Service handles login, logout and registration against the API
type Service struct {
	client *api.Client
	users  *user.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new auth service
func NewService(client *api.Client, users *user.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		users:  users,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
}

// Login exchanges credentials for a session token. The success message
// is flashed so it survives the page reload that follows a login.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		notification.Emit(ctx, notification.Error("Login failed", "Email and password are required"))
		return "", ErrMissingCredentials
	}

	form := url.Values{}
	form.Set("username", req.Email)
	form.Set("password", req.Password)

	var out struct {
		Message string `json:"message"`
	}
	resp, err := s.client.PostForm(ctx, "/login/token", form, &out)
	if err != nil {
		notification.Emit(ctx, notification.Error("Login failed", detailOr(err, "An error occurred")))
		return "", err
	}

	token := ""
	for _, c := range resp.Cookies() {
		if c.Name == s.client.CookieName() {
			token = c.Value
		}
	}
	if out.Message != loginSuccessMessage || token == "" {
		notification.Emit(ctx, notification.Error("Login failed", "Incorrect username or password"))
		return "", ErrLoginRejected
	}

	s.logger.Debug("login succeeded")
	notification.Flash(ctx, notification.Success("Login successful", ""))
	return token, nil
}

// Logout ends the session held in ctx.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/logout", nil, nil); err != nil {
		notification.Emit(ctx, notification.Error("Logout failed", detailOr(err, "An error occurred")))
		return err
	}

	notification.Flash(ctx, notification.Success("Logout successful", ""))
	return nil
}

// Register validates the form locally and creates the account. Nothing
// is sent when the local checks fail.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	if req.Password != req.ConfirmPassword {
		notification.Emit(ctx, notification.Error(
			"Passwords do not match",
			"Please ensure both password fields are identical.",
		).WithDuration(notification.ShortDuration))
		return nil, ErrPasswordMismatch
	}

	if n := utf8.RuneCountInString(req.Password); n < MinPasswordLength || n > MaxPasswordLength {
		notification.Emit(ctx, notification.Error("Registration failed", "Password must be between 8 and 40 characters"))
		return nil, ErrPasswordLength
	}

	u, err := s.users.Signup(ctx, &user.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		notification.Emit(ctx, notification.Error("Registration failed", detailOr(err, "An error occurred")))
		return nil, err
	}

	notification.Emit(ctx, notification.Success("Registration successful", ""))
	return u, nil
}

// Status reports whether ctx carries a live session. A token whose exp
// claim has passed is rejected without asking the API.
func (s *Service) Status(ctx context.Context) (*user.User, bool) {
	token, ok := api.CredentialFrom(ctx)
	if !ok {
		return nil, false
	}
	if Expired(token, s.now()) {
		s.logger.Debug("session token expired")
		return nil, false
	}

	u, err := s.users.Me(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			s.logger.Warn("failed to check login status", "error", err)
		}
		return nil, false
	}
	return u, true
}

func detailOr(err error, fallback string) string {
	if apiErr := api.AsError(err); apiErr != nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
