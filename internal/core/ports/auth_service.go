package ports

import (
	"context"

	"github.com/hireflow/auth-service/internal/core/domain"
)

// AuthService composes credential verification, permission resolution, token
// issuance and refresh-token persistence into the login/refresh/logout flows.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.RegisteredUser, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	// GetAccount re-resolves permissions live. It never fails on role
	// lookup problems; the worst case is an empty permission set.
	GetAccount(ctx context.Context, user domain.AuthenticatedUser) domain.AuthenticatedUser
	Logout(ctx context.Context, userID string) error
}

// TokenVerifier checks an access token and returns its claims. Any failure
// (bad signature, expiry, malformed input) yields domain.ErrUnauthorized
// without revealing the cause.
type TokenVerifier interface {
	VerifyAccess(token string) (*domain.TokenClaims, error)
}

// PermissionResolver maps a role reference to its current permission set.
// It never fails: missing or broken role data degrades to an empty set.
type PermissionResolver interface {
	Resolve(ctx context.Context, ref *domain.RoleRef) []string
}

// LoginLimiter bounds login attempts per client. Allow reports whether
// another attempt is permitted for the given key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
