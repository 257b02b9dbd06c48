package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hireflow/auth-service/internal/core/domain"
)

func TestPermissionResolver_NilRef(t *testing.T) {
	r := NewPermissionResolver(newStubRoleRepo(), zerolog.Nop())
	got := r.Resolve(context.Background(), nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice for nil ref, got %v", got)
	}
}

func TestPermissionResolver_RefWithoutID(t *testing.T) {
	roles := newStubRoleRepo()
	roles.setPermissions("r1", "read")
	r := NewPermissionResolver(roles, zerolog.Nop())

	got := r.Resolve(context.Background(), &domain.RoleRef{Name: "dangling"})
	if len(got) != 0 {
		t.Fatalf("expected empty slice for ref without id, got %v", got)
	}
}

func TestPermissionResolver_RoleNotFound(t *testing.T) {
	r := NewPermissionResolver(newStubRoleRepo(), zerolog.Nop())
	got := r.Resolve(context.Background(), &domain.RoleRef{ID: "missing"})
	if len(got) != 0 {
		t.Fatalf("expected empty slice for missing role, got %v", got)
	}
}

func TestPermissionResolver_StoreErrorSwallowed(t *testing.T) {
	roles := newStubRoleRepo()
	roles.err = errors.New("connection reset")
	r := NewPermissionResolver(roles, zerolog.Nop())

	got := r.Resolve(context.Background(), &domain.RoleRef{ID: "r1"})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice on store error, got %v", got)
	}
}

func TestPermissionResolver_RoleWithoutPermissions(t *testing.T) {
	roles := newStubRoleRepo()
	roles.setPermissions("r1")
	r := NewPermissionResolver(roles, zerolog.Nop())

	got := r.Resolve(context.Background(), &domain.RoleRef{ID: "r1"})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestPermissionResolver_ReturnsRolePermissions(t *testing.T) {
	roles := newStubRoleRepo()
	roles.setPermissions("r1", "read", "write")
	r := NewPermissionResolver(roles, zerolog.Nop())

	got := r.Resolve(context.Background(), &domain.RoleRef{ID: "r1"})
	if len(got) != 2 || got[0] != "read" || got[1] != "write" {
		t.Fatalf("unexpected permissions: %v", got)
	}
}
