package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/gate/cache"
	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// GrantsFor returns the login's grant set, reading through the snapshot
// cache. A cached snapshot is used only after the revocation ledger clears
// it; otherwise the grants are resolved fresh and written back with the
// cache-validity TTL. The whole path is optimistic: concurrent requests
// for the same login may resolve twice and the later write wins.
func (s *PermissionService) GrantsFor(ctx context.Context, loginID, userID idx.ID) (domain.GrantSet, error) {
	snap, err := s.Cache.GetSnapshot(ctx, loginID)
	switch {
	case err == nil:
		stale, err := s.snapshotRevoked(ctx, snap, loginID, userID)
		if err != nil {
			return nil, err
		}
		if !stale {
			return snap.Grants, nil
		}
		// Any single-use marker is consumed by now; the revoked snapshot
		// must not stay servable if resolution below fails.
		if err := s.Cache.DropSnapshot(ctx, loginID); err != nil {
			return nil, serverError(err)
		}
	case errors.Is(err, cache.ErrMiss):
		// resolve below
	default:
		return nil, serverError(err)
	}

	grants, err := s.Resolve(ctx, loginID)
	if err != nil {
		return nil, err
	}

	fresh := &cache.Snapshot{Grants: grants, Created: time.Now().UTC()}
	if err := s.Cache.PutSnapshot(ctx, loginID, fresh, s.CacheTTL); err != nil {
		return nil, serverError(err)
	}

	return grants, nil
}

// snapshotRevoked consults the revocation ledger in fixed order: user,
// login, each workspace in the snapshot, then global, short-circuiting on
// the first applicable marker. A marker applies iff its timestamp is
// strictly after the snapshot's creation time. Login and workspace
// markers are single-use and deleted once they have forced one
// re-resolution; deletion failures are logged and ignored.
func (s *PermissionService) snapshotRevoked(ctx context.Context, snap *cache.Snapshot, loginID, userID idx.ID) (bool, error) {
	l := slogx.FromContext(ctx)

	at, err := s.Cache.GetUserRevocation(ctx, userID)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return false, serverError(err)
	}
	if err == nil && at.After(snap.Created) {
		return true, nil
	}

	at, err = s.Cache.GetLoginRevocation(ctx, loginID)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return false, serverError(err)
	}
	if err == nil && at.After(snap.Created) {
		if derr := s.Cache.DeleteLoginRevocation(ctx, loginID); derr != nil {
			l.Warn("failed to delete consumed login revocation marker",
				slog.String("login_id", loginID.String()),
				slog.Any("error", derr),
			)
		}
		return true, nil
	}

	for _, workspaceID := range snap.Grants.WorkspaceIDs() {
		at, err = s.Cache.GetWorkspaceRevocation(ctx, workspaceID)
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			return false, serverError(err)
		}
		if err == nil && at.After(snap.Created) {
			if derr := s.Cache.DeleteWorkspaceRevocation(ctx, workspaceID); derr != nil {
				l.Warn("failed to delete consumed workspace revocation marker",
					slog.String("workspace_id", workspaceID.String()),
					slog.Any("error", derr),
				)
			}
			return true, nil
		}
	}

	at, err = s.Cache.GetGlobalRevocation(ctx)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		return false, serverError(err)
	}
	if err == nil && at.After(snap.Created) {
		return true, nil
	}

	return false, nil
}
