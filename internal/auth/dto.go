package auth

import "github.com/fkhayef/plantswap/internal/user"

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// StatusResponse reports whether the caller holds a live session
type StatusResponse struct {
	LoggedIn bool               `json:"logged_in"`
	User     *user.UserResponse `json:"user,omitempty"`
}
