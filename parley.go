// Package parley provides a high-level façade over the orchestration runner
// and service abstractions (state stores, notifiers, logging) enabling rapid
// construction of multi-agent conversational systems. Most applications
// interact with this package by:
//  1. Creating a Parley via New() (optionally overriding default in-memory services)
//  2. Registering one or more agents (chat, research, editor, custom)
//  3. Running turns with RunTurn
//
// The façade delegates orchestration to runner.Runner while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable state store and
// a structured logger.
package parley

import (
	"context"

	"github.com/parley-ai/parley/agent"
	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/logging"
	"github.com/parley-ai/parley/runner"
	"github.com/parley-ai/parley/session"
)

// Options configures the Parley instance.
type Options struct {
	// Store persists conversation state (defaults to in-memory).
	Store core.StateStore

	// Notifier receives best-effort progress notifications (nil disables).
	Notifier core.Notifier

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// DefaultAgent is dispatched when a turn names no agent kind.
	DefaultAgent string
}

// Parley is the high-level façade aggregating the runner and its services.
type Parley struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new Parley instance with optional overrides. Any unset
// service is initialized with an in-memory or no-op implementation.
func New(optFns ...func(o *Options)) *Parley {
	opts := Options{
		Store:        session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
		DefaultAgent: agent.KindChat,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(func(o *runner.Options) {
		o.Store = opts.Store
		o.Notifier = opts.Notifier
		o.Logger = opts.Logger
		o.DefaultAgent = opts.DefaultAgent
	})

	return &Parley{opts: opts, runner: r}
}

// RegisterAgent adds an agent to the underlying runner.
func (p *Parley) RegisterAgent(a agent.Agent) { p.runner.Register(a) }

// RunTurn executes one orchestration turn and returns its structured result.
// An empty agentKind dispatches the configured default agent.
func (p *Parley) RunTurn(ctx context.Context, conversationID, userID, agentKind, query string) (*core.StructuredAgentResult, error) {
	return p.runner.RunTurn(ctx, conversationID, userID, agentKind, query)
}

// Store exposes the configured state store, e.g. for inspecting conversation
// state after a turn.
func (p *Parley) Store() core.StateStore { return p.opts.Store }
