package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hireflow/auth-service/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by id
	err   error                   // forced failure for every call
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Role != nil {
		role := *u.Role
		clone.Role = &role
	}
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Username
	}
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) UpdateRefreshToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = token
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// RotateRefreshToken mirrors the Mongo FindOneAndUpdate compare-and-swap:
// the whole read-modify-write happens under one lock.
func (r *stubUserRepo) RotateRefreshToken(_ context.Context, oldToken, newToken string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if oldToken == "" {
		return nil, domain.ErrInvalidRefreshToken
	}
	for _, u := range r.users {
		if u.RefreshToken == oldToken {
			u.RefreshToken = newToken
			u.UpdatedAt = time.Now().UTC()
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrInvalidRefreshToken
}

func (r *stubUserRepo) ClearRefreshToken(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if u, ok := r.users[userID]; ok {
		u.RefreshToken = ""
	}
	return nil
}

type stubRoleRepo struct {
	mu    sync.Mutex
	roles map[string]*domain.Role
	err   error
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]*domain.Role)}
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	clone.Permissions = append([]string(nil), role.Permissions...)
	return &clone, nil
}

func (r *stubRoleRepo) setPermissions(id string, perms ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[id] = &domain.Role{ID: id, Name: "role-" + id, Permissions: perms}
}

func (r *stubRoleRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, id)
}

func newTestService(t *testing.T) (*AuthService, *stubUserRepo, *stubRoleRepo, *TokenIssuer) {
	t.Helper()
	users := newStubUserRepo()
	roles := newStubRoleRepo()
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	resolver := NewPermissionResolver(roles, zerolog.Nop())
	svc := NewAuthService(users, resolver, issuer, zerolog.Nop())
	return svc, users, roles, issuer
}

func seedUser(t *testing.T, users *stubUserRepo, username, password string, role *domain.RoleRef) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := users.Create(context.Background(), &domain.User{
		Name:         username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, roles, issuer := newTestService(t)
	roles.setPermissions("r1", "read", "write")
	seeded := seedUser(t, users, "alice", "secret123", &domain.RoleRef{ID: "r1"})

	res, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", res)
	}
	if res.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", res.RefreshTTL)
	}
	if got := res.User.Permissions; len(got) != 2 || got[0] != "read" || got[1] != "write" {
		t.Fatalf("unexpected permissions: %v", got)
	}

	// The access token authenticates as the same user through the gate.
	claims, err := issuer.VerifyAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("access token did not verify: %v", err)
	}
	if claims.UserID != seeded.ID {
		t.Fatalf("expected user id %q in claims, got %q", seeded.ID, claims.UserID)
	}
	if claims.Role == nil || claims.Role.ID != "r1" {
		t.Fatalf("expected role ref in claims, got %+v", claims.Role)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "alice", "secret123", nil)

	if _, err := svc.Login(context.Background(), "ghost", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty credentials: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_NilRole(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "bob", "pass123", nil)

	res, err := svc.Login(context.Background(), "bob", "pass123")
	if err != nil {
		t.Fatalf("login with nil role failed: %v", err)
	}
	if res.User.Permissions == nil || len(res.User.Permissions) != 0 {
		t.Fatalf("expected empty permission slice, got %v", res.User.Permissions)
	}
	if res.User.Role != nil {
		t.Fatalf("expected nil role in response, got %+v", res.User.Role)
	}
}

func TestAuthService_Login_OverwritesPreviousSession(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "alice", "secret123", nil)

	first, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", "secret123"); err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	// The first session's refresh token was overwritten and cannot be replayed.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for replaced token, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, users, roles, _ := newTestService(t)
	roles.setPermissions("r1", "read")
	seeded := seedUser(t, users, "alice", "secret123", &domain.RoleRef{ID: "r1"})

	login, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}
	if refreshed.User.ID != seeded.ID {
		t.Fatalf("refresh returned wrong user: %q", refreshed.User.ID)
	}

	// At-most-once use: the consumed token is dead.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken on reuse, got %v", err)
	}
	// The replacement still works.
	if _, err := svc.Refresh(context.Background(), refreshed.RefreshToken); err != nil {
		t.Fatalf("rotated token should refresh: %v", err)
	}
}

func TestAuthService_Refresh_UniformFailure(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "alice", "secret123", nil)

	other := NewTokenIssuer("other-access", "other-refresh", time.Minute, time.Hour)
	forged, err := other.IssueRefreshToken(&domain.TokenClaims{UserID: "id-alice"})
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	for _, token := range []string{"", "not-a-jwt", forged} {
		if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, domain.ErrInvalidRefreshToken) {
			t.Fatalf("token %q: expected ErrInvalidRefreshToken, got %v", token, err)
		}
	}
}

func TestAuthService_Refresh_PicksUpRoleChange(t *testing.T) {
	svc, users, roles, _ := newTestService(t)
	roles.setPermissions("r1", "read", "write")
	seedUser(t, users, "alice", "secret123", &domain.RoleRef{ID: "r1"})

	login, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	roles.setPermissions("r1", "read")

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := refreshed.User.Permissions; len(got) != 1 || got[0] != "read" {
		t.Fatalf("expected updated permissions [read], got %v", got)
	}
}

func TestAuthService_Logout_ThenRefreshFails(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice", "secret123", nil)

	login, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), seeded.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, domain.ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken after logout, got %v", err)
	}

	// Idempotent: no active session is not an error.
	if err := svc.Logout(context.Background(), seeded.ID); err != nil {
		t.Fatalf("repeated logout failed: %v", err)
	}
	if err := svc.Logout(context.Background(), "no-such-user"); err != nil {
		t.Fatalf("logout for unknown user failed: %v", err)
	}
}

func TestAuthService_GetAccount_FreshPermissions(t *testing.T) {
	svc, users, roles, _ := newTestService(t)
	roles.setPermissions("r1", "read", "write")
	seeded := seedUser(t, users, "alice", "secret123", &domain.RoleRef{ID: "r1"})

	login, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got := login.User.Permissions; len(got) != 2 {
		t.Fatalf("expected [read write] at login, got %v", got)
	}

	// Admin removes "write" after the token was issued.
	roles.setPermissions("r1", "read")

	account := svc.GetAccount(context.Background(), domain.AuthenticatedUser{
		ID:   seeded.ID,
		Role: &domain.RoleRef{ID: "r1"},
	})
	if got := account.Permissions; len(got) != 1 || got[0] != "read" {
		t.Fatalf("expected fresh permissions [read], got %v", got)
	}

	// Role deleted entirely: account fetch still succeeds, empty set.
	roles.delete("r1")
	account = svc.GetAccount(context.Background(), domain.AuthenticatedUser{
		ID:   seeded.ID,
		Role: &domain.RoleRef{ID: "r1"},
	})
	if len(account.Permissions) != 0 {
		t.Fatalf("expected empty permissions after role deletion, got %v", account.Permissions)
	}
}

func TestAuthService_ConcurrentRefresh_SingleWinner(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "alice", "secret123", nil)

	login, err := svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(context.Background(), login.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success, failed := 0, 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, domain.ErrInvalidRefreshToken):
			failed++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}
	if failed != n-1 {
		t.Fatalf("expected %d losers, got %d", n-1, failed)
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, users, _, _ := newTestService(t)

	created, err := svc.Register(context.Background(), domain.Registration{
		Name:     "Alice",
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", created)
	}

	stored, err := users.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "secret123" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	if _, err := svc.Register(context.Background(), domain.Registration{
		Username: "alice", Email: "alice@example.com", Password: "other",
	}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := svc.Register(context.Background(), domain.Registration{Username: " ", Password: ""}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailureSurfaces(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "alice", "secret123", nil)
	users.err = domain.ErrStoreUnavailable

	_, err := svc.Login(context.Background(), "alice", "secret123")
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable to surface, got %v", err)
	}
}
