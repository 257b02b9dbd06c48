package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hireflow/auth-service/internal/api/metrics"
	"github.com/hireflow/auth-service/internal/core/domain"
	"github.com/hireflow/auth-service/internal/core/ports"
)

// PermissionResolver turns a role reference into the role's current
// permission set. It runs on every login, refresh, account fetch and token
// validation — deliberately uncached, so revoking a permission takes effect
// on the next request instead of at token expiry.
//
// Resolve never fails. Users without a role, dangling references and role
// store outages all degrade to an empty set; the failure is logged and
// counted but the request proceeds.
type PermissionResolver struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewPermissionResolver(roles ports.RoleRepository, log zerolog.Logger) *PermissionResolver {
	return &PermissionResolver{roles: roles, log: log}
}

func (r *PermissionResolver) Resolve(ctx context.Context, ref *domain.RoleRef) []string {
	if ref == nil {
		return []string{}
	}
	if ref.ID == "" {
		r.log.Warn().Msg("role reference has no id, resolving to empty permissions")
		metrics.RoleResolutionFailuresTotal.WithLabelValues("missing_ref").Inc()
		return []string{}
	}

	role, err := r.roles.FindByID(ctx, ref.ID)
	if err != nil {
		// Expected transitional state (role deleted, user predates roles)
		// or a store problem. Either way the identity stays valid.
		reason := "lookup_failed"
		if errors.Is(err, domain.ErrRoleNotFound) {
			reason = "not_found"
		}
		r.log.Warn().Err(err).Str("role_id", ref.ID).Msg("role resolution failed, resolving to empty permissions")
		metrics.RoleResolutionFailuresTotal.WithLabelValues(reason).Inc()
		return []string{}
	}

	if role.Permissions == nil {
		return []string{}
	}
	return role.Permissions
}
