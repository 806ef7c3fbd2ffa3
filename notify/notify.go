// Package notify provides NotificationChannel implementations for the
// out-of-band progress stream a turn emits. Delivery is best-effort by
// contract: the execution core routes every publish through a wrapper that
// logs and swallows failures.
package notify

import (
	"context"
	"sync"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/logging"
)

// NoOp discards all notifications. The default when a host supplies nothing.
type NoOp struct{}

// Publish implements core.Notifier.
func (NoOp) Publish(context.Context, core.Notification) error { return nil }

// Recorder retains published notifications in memory. Intended for tests and
// local development.
type Recorder struct {
	mu            sync.Mutex
	notifications []core.Notification
	failWith      error
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes subsequent publishes return err, for exercising the
// best-effort contract.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

// Publish implements core.Notifier.
func (r *Recorder) Publish(_ context.Context, n core.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.notifications = append(r.notifications, n)
	return nil
}

// Notifications returns a copy of everything published so far.
func (r *Recorder) Notifications() []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// ByStatus returns recorded notifications matching the given status type.
func (r *Recorder) ByStatus(statusType string) []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Notification
	for _, n := range r.notifications {
		if n.StatusType == statusType {
			out = append(out, n)
		}
	}
	return out
}

// Channel forwards notifications to a Go channel without blocking: when the
// buffer is full the notification is dropped and counted, honoring the
// best-effort contract under backpressure.
type Channel struct {
	ch      chan core.Notification
	logger  logging.Logger
	mu      sync.Mutex
	dropped int
}

// NewChannel constructs a channel notifier with the given buffer size.
func NewChannel(buffer int, logger logging.Logger) *Channel {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Channel{ch: make(chan core.Notification, buffer), logger: logger}
}

// Publish implements core.Notifier.
func (c *Channel) Publish(ctx context.Context, n core.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case c.ch <- n:
		return nil
	default:
		c.mu.Lock()
		c.dropped++
		c.mu.Unlock()
		c.logger.Debug("notify.channel.dropped", "status_type", n.StatusType)
		return nil
	}
}

// C returns the receive side for the host's delivery loop.
func (c *Channel) C() <-chan core.Notification { return c.ch }

// Dropped returns how many notifications were discarded due to a full buffer.
func (c *Channel) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
