package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/parley-ai/parley/agent"
	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/logging"
	"github.com/parley-ai/parley/session"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// Store persists conversation state between turns. Defaults to an
	// in-memory implementation.
	Store core.StateStore

	// Notifier receives best-effort progress notifications. Nil disables
	// notifications.
	Notifier core.Notifier

	// Logger receives structured turn logs. Defaults to no-op.
	Logger logging.Logger

	// DefaultAgent is the kind dispatched when a turn names none.
	DefaultAgent string
}

// Runner coordinates orchestration turns over a closed set of registered
// agents. Dispatch goes through registered Agent values, never free-form
// strings: an unknown kind is an error, not a silent fallback. Public
// methods are safe for concurrent use.
type Runner struct {
	mu     sync.RWMutex
	agents map[string]agent.Agent

	store        core.StateStore
	notifier     core.Notifier
	logger       logging.Logger
	defaultAgent string
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		Store:        session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
		DefaultAgent: agent.KindChat,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agents:       make(map[string]agent.Agent),
		store:        opts.Store,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		defaultAgent: opts.DefaultAgent,
	}
}

// Register adds an agent to the dispatch set, keyed by its kind.
func (r *Runner) Register(a agent.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Kind()] = a
}

// Agents returns the registered agent kinds.
func (r *Runner) Agents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.agents))
	for k := range r.agents {
		kinds = append(kinds, k)
	}
	return kinds
}

// RunTurn executes one orchestration turn: load state, record the user's
// query, dispatch to the agent, persist, return the result. When a pending
// permission task names an agent kind and the query is a bare confirmation
// reply, dispatch resumes with that agent regardless of agentKind.
func (r *Runner) RunTurn(ctx context.Context, conversationID, userID, agentKind, query string) (*core.StructuredAgentResult, error) {
	st, err := r.store.Load(conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}

	if pt, ok := st.PendingTask(); ok && core.IsConfirmationReply(query) && pt.AgentKind != "" {
		agentKind = pt.AgentKind
	}
	if agentKind == "" {
		agentKind = r.defaultAgent
	}

	r.mu.RLock()
	a, ok := r.agents[agentKind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no agent registered for kind %q", agentKind)
	}

	st.SetCurrentQuery(query)
	st.AppendMessage(core.NewUserMessage(query))

	tc := core.NewTurnContext(ctx, conversationID, userID, func(o *core.TurnContextOptions) {
		o.Notifier = r.notifier
		o.Store = r.store
		o.Logger = r.logger
	})

	logger := tc.Logger()
	logger.Info("turn.start", "agent", agentKind, "turn_id", tc.TurnID)

	result, err := a.Process(tc, st)
	if err != nil {
		logger.Error("turn.failed", "agent", agentKind, "error", err.Error())
		return nil, fmt.Errorf("agent %s: %w", agentKind, err)
	}

	if err := r.store.Save(st); err != nil {
		logger.Error("turn.persist.failed", "error", err.Error())
		return result, fmt.Errorf("persist conversation %s: %w", conversationID, err)
	}

	logger.Info("turn.complete", "agent", agentKind, "status", string(result.TaskStatus))
	return result, nil
}
