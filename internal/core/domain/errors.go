package domain

import "errors"

// Outward-facing failures. Login and refresh failures are deliberately
// uniform: callers can never tell "no such user" from "wrong password", or
// "expired" from "rotated out".
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserExists          = errors.New("user already exists")
	ErrTooManyAttempts     = errors.New("too many login attempts")
)

// Internal failures. ErrUserNotFound stays inside the repository layer on
// auth flows; the credential verifier folds it into ErrInvalidCredentials.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
