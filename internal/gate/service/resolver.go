package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// PermissionService resolves a login's grant set from the store and keeps
// resolved snapshots in the cache, invalidated through the revocation
// ledger.
type PermissionService struct {
	Store    store.Store
	Cache    *cache.Client
	CacheTTL time.Duration
}

// Resolve computes the grant set from store rows in three fixed passes:
// super-admin workspaces first, then exclude rules, then include rules.
// The pass order is what makes include dominate exclude for the same
// (workspace, permission, resource) triple regardless of row order within
// each pass.
func (s *PermissionService) Resolve(ctx context.Context, loginID idx.ID) (domain.GrantSet, error) {
	l := slogx.FromContext(ctx)
	grants := domain.GrantSet{}

	superAdmin, err := s.Store.Permissions().SuperAdminWorkspaces(ctx, loginID)
	if err != nil {
		return nil, serverError(err)
	}
	for _, workspaceID := range superAdmin {
		grants.MarkSuperAdmin(workspaceID)
	}

	excludes, err := s.Store.Permissions().ExcludeRules(ctx, loginID)
	if err != nil {
		return nil, serverError(err)
	}
	for _, rule := range excludes {
		if !grants.AddExclude(rule.WorkspaceID, rule.PermissionID, rule.ResourceID) {
			l.Warn("exclude rule targets a super-admin workspace, skipping",
				slog.String("login_id", loginID.String()),
				slog.String("workspace_id", rule.WorkspaceID.String()),
				slog.String("permission_id", rule.PermissionID.String()),
			)
		}
	}

	includes, err := s.Store.Permissions().IncludeRules(ctx, loginID)
	if err != nil {
		return nil, serverError(err)
	}
	for _, rule := range includes {
		if !grants.AddInclude(rule.WorkspaceID, rule.PermissionID, rule.ResourceID) {
			l.Warn("include rule targets a super-admin workspace, skipping",
				slog.String("login_id", loginID.String()),
				slog.String("workspace_id", rule.WorkspaceID.String()),
				slog.String("permission_id", rule.PermissionID.String()),
			)
		}
	}

	return grants, nil
}
