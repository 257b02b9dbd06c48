package ports

import (
	"context"

	"github.com/hireflow/auth-service/internal/core/domain"
)

// UserRepository defines user persistence, including the session-store
// operations on the single refresh-token field. A user holds at most one
// valid refresh token at a time: overwriting it invalidates the previous one.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// UpdateRefreshToken overwrites the stored refresh token (last writer
	// wins). Used on login.
	UpdateRefreshToken(ctx context.Context, userID, token string) error

	// RotateRefreshToken atomically replaces oldToken with newToken and
	// returns the owning user. It matches only the currently stored token,
	// so a rotated-out token fails even if its signature still verifies.
	// Implementations must serialize this read-modify-write per user; of N
	// concurrent rotations of the same token exactly one succeeds. A missed
	// match returns domain.ErrInvalidRefreshToken.
	RotateRefreshToken(ctx context.Context, oldToken, newToken string) (*domain.User, error)

	// ClearRefreshToken empties the stored token. Idempotent: clearing a
	// user with no active session is not an error.
	ClearRefreshToken(ctx context.Context, userID string) error
}
