package postgres

import (
	"context"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

type workspacesRepo struct {
	q querier
}

const getWorkspaceQuery = `
SELECT id, super_admin_id, deleted
FROM workspace
WHERE id = $1 AND deleted IS NULL`

func (r *workspacesRepo) GetWorkspace(ctx context.Context, id idx.ID) (domain.Workspace, error) {
	var (
		out          domain.Workspace
		workspaceID  string
		superAdminID string
	)

	row := r.q.QueryRowContext(ctx, getWorkspaceQuery, id.String())
	if err := row.Scan(&workspaceID, &superAdminID, &out.Deleted); err != nil {
		return domain.Workspace{}, mapNotFound(err)
	}

	var err error
	if out.ID, err = idx.Parse(workspaceID); err != nil {
		return domain.Workspace{}, err
	}
	if out.SuperAdminID, err = idx.Parse(superAdminID); err != nil {
		return domain.Workspace{}, err
	}

	return out, nil
}

const countActiveResourcesQuery = `
SELECT COUNT(*)
FROM resource
WHERE workspace_id = $1 AND deleted IS NULL`

func (r *workspacesRepo) CountActiveResources(ctx context.Context, workspaceID idx.ID) (int64, error) {
	var count int64
	row := r.q.QueryRowContext(ctx, countActiveResourcesQuery, workspaceID.String())
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const softDeleteWorkspaceQuery = `
UPDATE workspace
SET deleted = NOW()
WHERE id = $1 AND deleted IS NULL`

func (r *workspacesRepo) SoftDeleteWorkspace(ctx context.Context, id idx.ID) error {
	res, err := r.q.ExecContext(ctx, softDeleteWorkspaceQuery, id.String())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
