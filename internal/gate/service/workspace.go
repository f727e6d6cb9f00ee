package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/gatehouse/internal/gate/store"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// WorkspaceService owns the one workspace mutation this service performs:
// soft deletion, which must leave no cached grant referencing the
// workspace usable.
type WorkspaceService struct {
	Store   store.Store
	Revoker *Revoker
}

// DeleteWorkspace soft-deletes a workspace on behalf of its super-admin.
// The workspace must hold no active resources. On success a
// workspace-scope revocation marker is written so every login with cached
// grants there re-resolves.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, workspaceID, actorUserID idx.ID) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ws, err := tx.Workspaces().GetWorkspace(ctx, workspaceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWorkspaceNotFound
			}
			return serverError(err)
		}

		if ws.SuperAdminID != actorUserID {
			return ErrNotSuperAdmin
		}

		count, err := tx.Workspaces().CountActiveResources(ctx, workspaceID)
		if err != nil {
			return serverError(err)
		}
		if count > 0 {
			return ErrWorkspaceNotEmpty
		}

		if err := tx.Workspaces().SoftDeleteWorkspace(ctx, workspaceID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrWorkspaceNotFound
			}
			return serverError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The marker lands after the commit so a re-resolution can never
	// observe the pre-delete rows.
	if err := s.Revoker.RevokeWorkspace(ctx, workspaceID); err != nil {
		l.Error("workspace deleted but revocation marker failed",
			slog.String("workspace_id", workspaceID.String()),
			slog.Any("error", err),
		)
		return err
	}

	l.Info("workspace deleted", slog.String("workspace_id", workspaceID.String()))
	return nil
}
