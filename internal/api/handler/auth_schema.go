package handler

import (
	"github.com/hireflow/auth-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// sessionResponse is shared by login and refresh. The refresh token is
// deliberately absent: it travels only in the http-only cookie.
type sessionResponse struct {
	AccessToken string                   `json:"access_token"`
	User        domain.AuthenticatedUser `json:"user"`
}

type accountResponse struct {
	User domain.AuthenticatedUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}
