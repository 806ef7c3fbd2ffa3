package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	seen []Notification
	err  error
}

func (c *captureNotifier) Publish(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.seen = append(c.seen, n)
	return nil
}

func TestTurnContext_Notify(t *testing.T) {
	n := &captureNotifier{}
	tc := NewTurnContext(context.Background(), "c1", "u1", func(o *TurnContextOptions) {
		o.Notifier = n
	})

	tc.Notify(StatusToolStart, "running search", map[string]any{"tool": "search_documents"})

	require.Len(t, n.seen, 1)
	assert.Equal(t, "c1", n.seen[0].ConversationID)
	assert.Equal(t, "u1", n.seen[0].UserID)
	assert.Equal(t, StatusToolStart, n.seen[0].StatusType)
	assert.False(t, n.seen[0].Timestamp.IsZero())
}

func TestTurnContext_NotifySwallowsFailures(t *testing.T) {
	n := &captureNotifier{err: errors.New("channel closed")}
	tc := NewTurnContext(context.Background(), "c1", "u1", func(o *TurnContextOptions) {
		o.Notifier = n
	})

	// Must not panic or surface the delivery error.
	tc.Notify(StatusSynthesis, "done", nil)
}

func TestTurnContext_NilNotifier(t *testing.T) {
	tc := NewTurnContext(context.Background(), "c1", "u1")
	tc.Notify(StatusIterationStart, "round 1", nil)
}

func TestTurnContext_FreshTurnID(t *testing.T) {
	a := NewTurnContext(context.Background(), "c1", "u1")
	b := NewTurnContext(context.Background(), "c1", "u1")
	assert.NotEqual(t, a.TurnID, b.TurnID)
}
