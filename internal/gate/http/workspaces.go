package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatehouse/internal/gate/service"
	"github.com/aussiebroadwan/gatehouse/pkg/gatesdk"
	"github.com/aussiebroadwan/gatehouse/pkg/httpx"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// WorkspaceHandler exposes workspace lifecycle operations.
type WorkspaceHandler struct {
	Workspaces *service.WorkspaceService
}

// HandleDelete handles DELETE /v1/workspaces/{id}. Only the workspace
// super-admin may delete, and only once every resource in the workspace
// has been removed.
func (h *WorkspaceHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	identity, ok := IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeTokenInvalid, "no identity in request")
		return
	}

	workspaceID, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusNotFound,
			gatesdk.ErrorCodeWorkspaceNotFound, "Workspace not found")
		return
	}

	if err := h.Workspaces.DeleteWorkspace(ctx, workspaceID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrWorkspaceNotFound):
			httpx.WriteError(w, http.StatusNotFound,
				gatesdk.ErrorCodeWorkspaceNotFound, "Workspace not found")
		case errors.Is(err, service.ErrNotSuperAdmin):
			httpx.WriteError(w, http.StatusForbidden,
				gatesdk.ErrorCodeNotSuperAdmin, "Only the workspace super-admin can delete it")
		case errors.Is(err, service.ErrWorkspaceNotEmpty):
			httpx.WriteError(w, http.StatusConflict,
				gatesdk.ErrorCodeWorkspaceNotEmpty, "Workspace still has active resources")
		default:
			log.Error("failed to delete workspace", "error", err, "workspace_id", workspaceID)
			httpx.WriteError(w, http.StatusInternalServerError,
				gatesdk.ErrorCodeServerError, "Failed to delete workspace")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
