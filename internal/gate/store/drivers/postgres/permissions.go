package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

type permissionsRepo struct {
	q querier
}

// Super-admin authority comes from two places folded into one result:
// session logins own workspaces outright, API tokens carry explicit
// super-admin scopes.
const superAdminWorkspacesQuery = `
SELECT DISTINCT
	COALESCE(api_token_workspace_super_admin.workspace_id, workspace.id) AS workspace_id
FROM login
LEFT JOIN api_token_workspace_super_admin
	ON login.kind = 'api_token'
	AND api_token_workspace_super_admin.token_id = login.login_id
LEFT JOIN workspace
	ON login.kind = 'session'
	AND workspace.super_admin_id = login.user_id
	AND workspace.deleted IS NULL
WHERE login.login_id = $1`

func (r *permissionsRepo) SuperAdminWorkspaces(ctx context.Context, loginID idx.ID) ([]idx.ID, error) {
	rows, err := r.q.QueryContext(ctx, superAdminWorkspacesQuery, loginID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []idx.ID
	for rows.Next() {
		var workspaceID sql.NullString
		if err := rows.Scan(&workspaceID); err != nil {
			return nil, err
		}
		if !workspaceID.Valid {
			continue // login had neither path; the LEFT JOINs produce a NULL row
		}
		id, err := idx.Parse(workspaceID.String)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

const excludeRulesQuery = `
SELECT
	COALESCE(api_token_permission_exclude.workspace_id, workspace_member.workspace_id) AS workspace_id,
	COALESCE(api_token_permission_exclude.permission_id, role_permission_exclude.permission_id) AS permission_id,
	COALESCE(api_token_permission_exclude.resource_id, role_permission_exclude.resource_id) AS resource_id
FROM login
LEFT JOIN api_token_permission_exclude
	ON login.kind = 'api_token'
	AND api_token_permission_exclude.token_id = login.login_id
LEFT JOIN workspace_member
	ON workspace_member.user_id = login.user_id
LEFT JOIN role_permission_exclude
	ON role_permission_exclude.role_id = workspace_member.role_id
WHERE login.login_id = $1`

const includeRulesQuery = `
SELECT
	COALESCE(api_token_permission_include.workspace_id, workspace_member.workspace_id) AS workspace_id,
	COALESCE(api_token_permission_include.permission_id, role_permission_include.permission_id) AS permission_id,
	COALESCE(api_token_permission_include.resource_id, role_permission_include.resource_id) AS resource_id
FROM login
LEFT JOIN api_token_permission_include
	ON login.kind = 'api_token'
	AND api_token_permission_include.token_id = login.login_id
LEFT JOIN workspace_member
	ON workspace_member.user_id = login.user_id
LEFT JOIN role_permission_include
	ON role_permission_include.role_id = workspace_member.role_id
WHERE login.login_id = $1`

func (r *permissionsRepo) ExcludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error) {
	return r.rules(ctx, excludeRulesQuery, loginID)
}

func (r *permissionsRepo) IncludeRules(ctx context.Context, loginID idx.ID) ([]domain.PermissionRule, error) {
	return r.rules(ctx, includeRulesQuery, loginID)
}

func (r *permissionsRepo) rules(ctx context.Context, query string, loginID idx.ID) ([]domain.PermissionRule, error) {
	rows, err := r.q.QueryContext(ctx, query, loginID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PermissionRule
	for rows.Next() {
		var workspaceID, permissionID, resourceID sql.NullString
		if err := rows.Scan(&workspaceID, &permissionID, &resourceID); err != nil {
			return nil, err
		}
		// Rows where any leg is NULL carry no rule (a member with a role
		// that has no rules of this kind, or a token with none).
		if !workspaceID.Valid || !permissionID.Valid || !resourceID.Valid {
			continue
		}

		rule := domain.PermissionRule{}
		if rule.WorkspaceID, err = idx.Parse(workspaceID.String); err != nil {
			return nil, err
		}
		if rule.PermissionID, err = idx.Parse(permissionID.String); err != nil {
			return nil, err
		}
		if rule.ResourceID, err = idx.Parse(resourceID.String); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}
