// Package cache holds the Redis-backed permission snapshot store, the
// revocation marker ledger and the change-relay publisher. All keys live
// under the "gate:" prefix so a shared Redis can host other tenants.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ErrMiss reports that a key is absent from the cache.
var ErrMiss = errors.New("cache: miss")

// Client wraps a Redis connection with the service's key schema.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewWithClient wraps an existing Redis client. Used by tests backed by
// miniredis.
func NewWithClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping reports whether the Redis connection is healthy.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Publish forwards a change-relay payload onto a Redis pub/sub channel.
// Subscribers on other nodes use it to drop their local state.
func (c *Client) Publish(ctx context.Context, channel, payload string) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}
