package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aussiebroadwan/gatehouse/internal/gate/domain"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
)

// Snapshot is a cached permission resolution for one login. Created is
// compared against revocation markers: a marker stamped after Created
// invalidates the snapshot.
type Snapshot struct {
	Grants  domain.GrantSet `json:"grants"`
	Created time.Time       `json:"created"`
}

func snapshotKey(loginID idx.ID) string {
	return "gate:permissions:" + loginID.String()
}

// GetSnapshot loads the cached grant set for a login. Returns ErrMiss when
// no snapshot is stored or the stored payload cannot be decoded. A corrupt
// entry is dropped so the next resolution overwrites it.
func (c *Client) GetSnapshot(ctx context.Context, loginID idx.ID) (*Snapshot, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(loginID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.rdb.Del(ctx, snapshotKey(loginID))
		return nil, ErrMiss
	}
	return &snap, nil
}

// PutSnapshot stores a freshly resolved grant set with the configured
// validity window as its TTL.
func (c *Client) PutSnapshot(ctx context.Context, loginID idx.ID, snap *Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapshotKey(loginID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: put snapshot: %w", err)
	}
	return nil
}

// DropSnapshot removes a login's cached grant set. Missing keys are not an
// error.
func (c *Client) DropSnapshot(ctx context.Context, loginID idx.ID) error {
	if err := c.rdb.Del(ctx, snapshotKey(loginID)).Err(); err != nil {
		return fmt.Errorf("cache: drop snapshot: %w", err)
	}
	return nil
}
