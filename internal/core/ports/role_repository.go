package ports

import (
	"context"

	"github.com/hireflow/auth-service/internal/core/domain"
)

// RoleRepository looks up role documents by id.
type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Role, error)
}
