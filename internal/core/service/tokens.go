package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hireflow/auth-service/internal/core/domain"
)

const tokenIssuerName = "auth-service"

const (
	subjectLogin   = "token login"
	subjectRefresh = "token refresh"
)

// tokenClaims is the signed claim shape shared by access and refresh tokens.
// Permissions never appear here; they are resolved live on each validation.
type tokenClaims struct {
	UserID string          `json:"uid"`
	Name   string          `json:"name,omitempty"`
	Email  string          `json:"email,omitempty"`
	Role   *domain.RoleRef `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens use
// two distinct secrets so a leaked refresh token can never pass as an access
// credential, and vice versa.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// RefreshTTL reports the refresh token lifetime; the HTTP boundary uses it
// as the cookie max-age.
func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *TokenIssuer) IssueAccessToken(claims *domain.TokenClaims) (string, error) {
	return i.sign(claims, subjectLogin, i.accessSecret, i.accessTTL)
}

func (i *TokenIssuer) IssueRefreshToken(claims *domain.TokenClaims) (string, error) {
	return i.sign(claims, subjectRefresh, i.refreshSecret, i.refreshTTL)
}

func (i *TokenIssuer) sign(claims *domain.TokenClaims, subject string, secret []byte, ttl time.Duration) (string, error) {
	now := i.now().UTC()
	tc := tokenClaims{
		UserID: claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuerName,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(secret)
}

// VerifyAccess checks signature and expiry against the access secret. Every
// failure collapses into domain.ErrUnauthorized.
func (i *TokenIssuer) VerifyAccess(token string) (*domain.TokenClaims, error) {
	return i.verify(token, i.accessSecret, domain.ErrUnauthorized)
}

// VerifyRefresh checks signature and expiry against the refresh secret.
// Every failure collapses into domain.ErrInvalidRefreshToken, so callers
// never learn whether a token was expired, malformed or forged.
func (i *TokenIssuer) VerifyRefresh(token string) (*domain.TokenClaims, error) {
	return i.verify(token, i.refreshSecret, domain.ErrInvalidRefreshToken)
}

func (i *TokenIssuer) verify(token string, secret []byte, failure error) (*domain.TokenClaims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, failure
	}

	return &domain.TokenClaims{
		UserID: tc.UserID,
		Name:   tc.Name,
		Email:  tc.Email,
		Role:   tc.Role,
	}, nil
}
