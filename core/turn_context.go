package core

import (
	"context"
	"time"

	"github.com/parley-ai/parley/logging"
)

// Notification status types published during a turn. Delivery is strictly
// best-effort progress reporting for real-time clients.
const (
	StatusIterationStart = "iteration_start"
	StatusToolStart      = "tool_start"
	StatusToolComplete   = "tool_complete"
	StatusToolError      = "tool_error"
	StatusSynthesis      = "synthesis"
)

// Notification is one out-of-band progress message addressed to the
// conversation's real-time channel.
type Notification struct {
	ConversationID string         `json:"conversation_id"`
	UserID         string         `json:"user_id"`
	StatusType     string         `json:"status_type"`
	Message        string         `json:"message"`
	Data           map[string]any `json:"data,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Notifier delivers out-of-band progress notifications. Implementations may
// fail; callers go through TurnContext.Notify which swallows delivery errors.
type Notifier interface {
	Publish(ctx context.Context, n Notification) error
}

// TurnContext is the per-turn dependency scope handed to agents and the
// execution core. Services are injected explicitly at construction; there
// are no ambient lookups. A TurnContext is created once per orchestration
// turn and is not reused.
type TurnContext struct {
	Context        context.Context
	TurnID         string
	ConversationID string
	UserID         string
	Notifier       Notifier
	Store          StateStore

	logger logging.Logger
}

// TurnContextOptions configures optional TurnContext collaborators.
type TurnContextOptions struct {
	Notifier Notifier
	Store    StateStore
	Logger   logging.Logger
}

// NewTurnContext constructs a turn scope with a fresh turn id. Unset options
// default to no-op implementations.
func NewTurnContext(ctx context.Context, conversationID, userID string, optFns ...func(o *TurnContextOptions)) *TurnContext {
	opts := TurnContextOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	turnID := NewID()

	return &TurnContext{
		Context:        ctx,
		TurnID:         turnID,
		ConversationID: conversationID,
		UserID:         userID,
		Notifier:       opts.Notifier,
		Store:          opts.Store,
		logger:         logging.WithConversation(opts.Logger, conversationID, turnID),
	}
}

// Logger returns the turn's structured logger.
func (tc *TurnContext) Logger() logging.Logger { return tc.logger }

// Done proxies the underlying context's cancellation channel.
func (tc *TurnContext) Done() <-chan struct{} { return tc.Context.Done() }

// Err proxies the underlying context's cancellation error.
func (tc *TurnContext) Err() error { return tc.Context.Err() }

// Notify publishes a progress notification. Delivery failures are logged and
// swallowed; a notification must never fail the turn.
func (tc *TurnContext) Notify(statusType, message string, data map[string]any) {
	if tc.Notifier == nil {
		return
	}

	n := Notification{
		ConversationID: tc.ConversationID,
		UserID:         tc.UserID,
		StatusType:     statusType,
		Message:        message,
		Data:           data,
		Timestamp:      time.Now().UTC(),
	}

	if err := tc.Notifier.Publish(tc.Context, n); err != nil {
		tc.logger.Warn("turn.notify.failed", "status_type", statusType, "error", err.Error())
	}
}
