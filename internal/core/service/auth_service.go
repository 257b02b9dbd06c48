package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hireflow/auth-service/internal/api/metrics"
	"github.com/hireflow/auth-service/internal/core/domain"
	"github.com/hireflow/auth-service/internal/core/ports"
)

// AuthService implements the login, register, refresh, account and logout
// flows. Identity failures are fail-closed; permission lookups are fail-open
// (they degrade to an empty set inside the resolver). That asymmetry is
// intentional.
type AuthService struct {
	users    ports.UserRepository
	verifier *CredentialVerifier
	resolver ports.PermissionResolver
	tokens   *TokenIssuer
	log      zerolog.Logger
}

func NewAuthService(users ports.UserRepository, resolver ports.PermissionResolver, tokens *TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		verifier: NewCredentialVerifier(users),
		resolver: resolver,
		tokens:   tokens,
		log:      log,
	}
}

// Login verifies credentials, resolves the user's current permissions,
// issues a fresh access/refresh pair and persists the refresh token. The
// stored token is overwritten, so any previously issued refresh token stops
// working: one active session per user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, result.RefreshToken); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

// Register creates an account. The password is bcrypt-hashed before it
// reaches the repository; the response carries only the new id and creation
// time, never the hash.
func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.RegisteredUser, error) {
	if strings.TrimSpace(reg.Username) == "" || reg.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         reg.Name,
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return &domain.RegisteredUser{ID: created.ID, CreatedAt: created.CreatedAt}, nil
}

// Refresh rotates a refresh token. The provided token must verify against
// the refresh secret and must be the one currently stored for its user; the
// stored value is swapped atomically, so of two concurrent refreshes with
// the same token exactly one wins and the loser gets
// domain.ErrInvalidRefreshToken. Expired, malformed, rotated-out and
// never-issued tokens are indistinguishable to the caller.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
		return nil, domain.ErrInvalidRefreshToken
	}

	next, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	user, err := s.users.RotateRefreshToken(ctx, refreshToken, next)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRefreshToken) || errors.Is(err, domain.ErrUserNotFound) {
			metrics.TokenRefreshesTotal.WithLabelValues("invalid_token").Inc()
			return nil, domain.ErrInvalidRefreshToken
		}
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// The access token and the response reflect the user record as stored
	// now, not the claims of the old token: role changes since the original
	// login are picked up here.
	perms := s.resolver.Resolve(ctx, user.Role)
	access, err := s.tokens.IssueAccessToken(userClaims(user))
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("refresh token rotated")
	return &domain.AuthResult{
		AccessToken:  access,
		RefreshToken: next,
		RefreshTTL:   s.tokens.RefreshTTL(),
		User:         authenticatedUser(user, perms),
	}, nil
}

// GetAccount re-resolves the user's permissions from the role store. The
// token's embedded role is only a reference; whatever the store says right
// now wins. Resolver problems leave the user with an empty set rather than
// failing the request.
func (s *AuthService) GetAccount(ctx context.Context, user domain.AuthenticatedUser) domain.AuthenticatedUser {
	user.Permissions = s.resolver.Resolve(ctx, user.Role)
	return user
}

// Logout clears the stored refresh token. Logging out with no active
// session succeeds.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	perms := s.resolver.Resolve(ctx, user.Role)
	claims := userClaims(user)

	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, err
	}

	return &domain.AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.tokens.RefreshTTL(),
		User:         authenticatedUser(user, perms),
	}, nil
}

func userClaims(u *domain.User) *domain.TokenClaims {
	return &domain.TokenClaims{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

func authenticatedUser(u *domain.User, perms []string) domain.AuthenticatedUser {
	return domain.AuthenticatedUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: perms,
	}
}
