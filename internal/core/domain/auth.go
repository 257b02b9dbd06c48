package domain

import "time"

// TokenClaims is the verified content of an access or refresh token.
// Permissions are intentionally absent: they are resolved fresh on every
// validation so that role edits take effect immediately.
type TokenClaims struct {
	UserID string
	Name   string
	Email  string
	Role   *RoleRef
}

// Registration carries the fields accepted when creating an account.
type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
}

// RegisteredUser is the only data echoed back after registration.
type RegisteredUser struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult is the outcome of a successful login or refresh. The refresh
// token travels back to the client in an http-only cookie set by the HTTP
// boundary; RefreshTTL is the cookie max-age.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
	User         AuthenticatedUser
}
