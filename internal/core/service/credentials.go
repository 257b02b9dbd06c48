package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/hireflow/auth-service/internal/core/domain"
	"github.com/hireflow/auth-service/internal/core/ports"
)

// CredentialVerifier checks a username/password pair against the stored
// bcrypt hash. It is read-only and never logs credentials.
type CredentialVerifier struct {
	users ports.UserRepository
}

func NewCredentialVerifier(users ports.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// Verify returns the full user record on success. An unknown username and a
// wrong password produce the same domain.ErrInvalidCredentials, so callers
// cannot enumerate accounts. Store failures pass through untouched.
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
