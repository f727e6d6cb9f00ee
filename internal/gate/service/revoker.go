package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// Revoker writes revocation markers on behalf of mutating operations
// (forced logout, membership removal, workspace deletion). Marker TTL is
// the cache-validity window plus a safety margin, so no snapshot created
// before the marker can outlive it uninvalidated.
type Revoker struct {
	Cache     *cache.Client
	CacheTTL  time.Duration
	TTLMargin time.Duration
}

func (r *Revoker) markerTTL() time.Duration {
	return r.CacheTTL + r.TTLMargin
}

// RevokeUser invalidates every cached snapshot belonging to the user's
// logins. The marker is retained for its full TTL since many login ids
// may need to observe it.
func (r *Revoker) RevokeUser(ctx context.Context, userID idx.ID) error {
	if err := r.Cache.SetUserRevocation(ctx, userID, time.Now().UTC(), r.markerTTL()); err != nil {
		return serverError(err)
	}
	return nil
}

// RevokeLogin invalidates one login's cached snapshot. The marker is
// consumed by the first re-resolution it forces.
func (r *Revoker) RevokeLogin(ctx context.Context, loginID idx.ID) error {
	if err := r.Cache.SetLoginRevocation(ctx, loginID, time.Now().UTC(), r.markerTTL()); err != nil {
		return serverError(err)
	}
	return nil
}

// RevokeWorkspace invalidates the cached snapshot of every login holding
// a grant in the workspace.
func (r *Revoker) RevokeWorkspace(ctx context.Context, workspaceID idx.ID) error {
	if err := r.Cache.SetWorkspaceRevocation(ctx, workspaceID, time.Now().UTC(), r.markerTTL()); err != nil {
		return serverError(err)
	}
	return nil
}

// RevokeGlobal invalidates every cached snapshot. Reserved for system
// events like permission-model changes.
func (r *Revoker) RevokeGlobal(ctx context.Context) error {
	if err := r.Cache.SetGlobalRevocation(ctx, time.Now().UTC(), r.markerTTL()); err != nil {
		return serverError(err)
	}
	return nil
}
