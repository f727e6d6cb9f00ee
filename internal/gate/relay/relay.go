// Package relay forwards row-change notifications from Postgres onto a
// Redis pub/sub channel. Other nodes subscribe to drop local state with
// lower latency than the cache TTL allows. The relay is byte-transparent:
// channel name and payload are republished exactly as received.
package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/aussiebroadwan/gatehouse/pkg/slogx"
)

// Listener is the slice of pq.Listener the relay consumes. Tests feed a
// fake; production uses NewPQListener.
type Listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

// Publisher fans a payload out to subscribers. cache.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

// ChangeRelay runs a single LISTEN subscription and republishes each
// notification. Two states: listening after Start, stopped after Stop.
type ChangeRelay struct {
	Listener  Listener
	Publisher Publisher
	Channel   string
	Logger    *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewChangeRelay wires a relay for one named notification channel.
func NewChangeRelay(listener Listener, publisher Publisher, channel string, logger *slog.Logger) *ChangeRelay {
	return &ChangeRelay{
		Listener:  listener,
		Publisher: publisher,
		Channel:   channel,
		Logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// NewPQListener opens a dedicated Postgres connection for LISTEN. It
// reconnects on its own; connection events only get logged.
func NewPQListener(dsn string, logger *slog.Logger) *pq.Listener {
	return pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres listener event", "event", int(ev), "error", err)
		}
	})
}

// Start subscribes to the channel and launches the forwarding loop.
// Non-blocking; call Stop to shut down.
func (r *ChangeRelay) Start() error {
	if err := r.Listener.Listen(r.Channel); err != nil {
		return err
	}

	go r.run()
	r.Logger.Info("change relay started", "channel", r.Channel)
	return nil
}

// Stop shuts the relay down and blocks until the loop has exited. The
// shutdown always wins the race against a concurrent notification: at
// most one in-flight publish completes before exit.
func (r *ChangeRelay) Stop() {
	close(r.stopCh)
	<-r.doneCh
	if err := r.Listener.Close(); err != nil {
		r.Logger.Warn("failed to close postgres listener", "error", err)
	}
	r.Logger.Info("change relay stopped")
}

func (r *ChangeRelay) run() {
	defer close(r.doneCh)

	// The loop runs outside any request, so it carries its own tagged
	// contextual logger.
	ctx := slogx.WithComponent(slogx.WithContext(context.Background(), r.Logger), "relay")
	l := slogx.FromContext(ctx)

	notifications := r.Listener.NotificationChannel()
	for {
		select {
		case <-r.stopCh:
			return
		case n, ok := <-notifications:
			if !ok {
				l.Warn("postgres notification channel closed")
				return
			}
			if n == nil {
				// pq emits nil after a reconnect to flag a possible gap.
				// There is nothing to republish; subscribers survive gaps
				// because the cache TTL bounds staleness anyway.
				continue
			}

			// Best effort: a missed broadcast only delays observers.
			if err := r.Publisher.Publish(ctx, n.Channel, n.Extra); err != nil {
				l.Warn("failed to republish change notification",
					"channel", n.Channel,
					"error", err,
				)
			}
		}
	}
}
