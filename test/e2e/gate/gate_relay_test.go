package gate_test

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/gatehouse/internal/gate/relay"
)

// TestChangeRelay drives the full notification path: a row change fires
// the Postgres trigger, the relay picks it up over LISTEN and republishes
// it on Redis pub/sub.
func TestChangeRelay(t *testing.T) {
	s := newStack(t)
	logger := slog.New(slog.DiscardHandler)

	listener := relay.NewPQListener(s.dsn, logger)
	r := relay.NewChangeRelay(listener, s.cache, "gatehouse_changes", logger)
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)

	rdb := redis.NewClient(&redis.Options{Addr: s.redisAddr})
	t.Cleanup(func() { _ = rdb.Close() })
	sub := rdb.Subscribe(t.Context(), "gatehouse_changes")
	t.Cleanup(func() { _ = sub.Close() })

	// Wait for the subscription to land before triggering a change
	_, err := sub.Receive(t.Context())
	require.NoError(t, err)

	owner := s.seedAccount(t, "owner")
	workspaceID := s.seedWorkspace(t, owner)

	msg := receiveMessage(t, sub, 10*time.Second)

	var payload struct {
		Table string `json:"table"`
		Op    string `json:"op"`
		ID    string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg), &payload))
	require.Equal(t, "workspace", payload.Table)
	require.Equal(t, "INSERT", payload.Op)
	require.Equal(t, workspaceID.String(), payload.ID)
}

func receiveMessage(t *testing.T, sub *redis.PubSub, timeout time.Duration) string {
	t.Helper()

	select {
	case msg := <-sub.Channel():
		return msg.Payload
	case <-time.After(timeout):
		t.Fatal("timed out waiting for relayed notification")
		return ""
	}
}
