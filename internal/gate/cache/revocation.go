package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// Revocation marker keys. Each holds the unix-millisecond timestamp at
// which the revocation took effect. A cached snapshot created before that
// instant is stale; one created after it already reflects the change.
func userRevocationKey(userID idx.ID) string {
	return "gate:revocation:user:" + userID.String()
}

func loginRevocationKey(loginID idx.ID) string {
	return "gate:revocation:login:" + loginID.String()
}

func workspaceRevocationKey(workspaceID idx.ID) string {
	return "gate:revocation:workspace:" + workspaceID.String()
}

const globalRevocationKey = "gate:revocation:global"

// SetUserRevocation stamps a revocation covering every login of one user.
func (c *Client) SetUserRevocation(ctx context.Context, userID idx.ID, at time.Time, ttl time.Duration) error {
	return c.setMarker(ctx, userRevocationKey(userID), at, ttl)
}

// SetLoginRevocation stamps a revocation covering a single login.
func (c *Client) SetLoginRevocation(ctx context.Context, loginID idx.ID, at time.Time, ttl time.Duration) error {
	return c.setMarker(ctx, loginRevocationKey(loginID), at, ttl)
}

// SetWorkspaceRevocation stamps a revocation covering every login that
// holds a grant in the workspace.
func (c *Client) SetWorkspaceRevocation(ctx context.Context, workspaceID idx.ID, at time.Time, ttl time.Duration) error {
	return c.setMarker(ctx, workspaceRevocationKey(workspaceID), at, ttl)
}

// SetGlobalRevocation stamps a revocation covering every cached snapshot.
func (c *Client) SetGlobalRevocation(ctx context.Context, at time.Time, ttl time.Duration) error {
	return c.setMarker(ctx, globalRevocationKey, at, ttl)
}

// GetUserRevocation reads the user-scoped marker. ErrMiss when absent.
func (c *Client) GetUserRevocation(ctx context.Context, userID idx.ID) (time.Time, error) {
	return c.getMarker(ctx, userRevocationKey(userID))
}

// GetLoginRevocation reads the login-scoped marker. ErrMiss when absent.
func (c *Client) GetLoginRevocation(ctx context.Context, loginID idx.ID) (time.Time, error) {
	return c.getMarker(ctx, loginRevocationKey(loginID))
}

// GetWorkspaceRevocation reads the workspace-scoped marker. ErrMiss when
// absent.
func (c *Client) GetWorkspaceRevocation(ctx context.Context, workspaceID idx.ID) (time.Time, error) {
	return c.getMarker(ctx, workspaceRevocationKey(workspaceID))
}

// GetGlobalRevocation reads the global marker. ErrMiss when absent.
func (c *Client) GetGlobalRevocation(ctx context.Context) (time.Time, error) {
	return c.getMarker(ctx, globalRevocationKey)
}

// DeleteLoginRevocation consumes a single-use login marker after it has
// forced a re-resolution.
func (c *Client) DeleteLoginRevocation(ctx context.Context, loginID idx.ID) error {
	return c.rdb.Del(ctx, loginRevocationKey(loginID)).Err()
}

// DeleteWorkspaceRevocation consumes a single-use workspace marker after
// it has forced a re-resolution.
func (c *Client) DeleteWorkspaceRevocation(ctx context.Context, workspaceID idx.ID) error {
	return c.rdb.Del(ctx, workspaceRevocationKey(workspaceID)).Err()
}

func (c *Client) setMarker(ctx context.Context, key string, at time.Time, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, strconv.FormatInt(at.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("cache: set revocation marker: %w", err)
	}
	return nil
}

func (c *Client) getMarker(ctx context.Context, key string) (time.Time, error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrMiss
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cache: get revocation marker: %w", err)
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// An unparseable marker cannot be proven older than any snapshot,
		// so treat it as revoking everything until it expires.
		return time.Now().UTC(), nil
	}
	return time.UnixMilli(millis).UTC(), nil
}
