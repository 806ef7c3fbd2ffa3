package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/internal/util"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/tool"
)

// ContextMode selects how PrepareMessages presents conversation history to
// the model.
type ContextMode int

const (
	// FullContext passes up to the last N raw conversation messages through
	// unchanged. Suited to service-style agents that need literal history.
	FullContext ContextMode = iota

	// SeparatedContext replaces raw history with an analyzed background block
	// plus a clearly labeled current request, so stale topics cannot bleed
	// into the model's answer. Suited to primary conversational agents.
	SeparatedContext
)

// ExecutorOptions configures the shared execution core.
type ExecutorOptions struct {
	// MaxToolIterations bounds the tool-calling loop. Default 8.
	MaxToolIterations int

	// MaxHistoryMessages bounds raw history in FullContext mode. Default 20.
	MaxHistoryMessages int

	// IncludeTimeContext adds a current-time system message when true.
	IncludeTimeContext bool

	// Timezone names the IANA zone for the time context. Invalid or empty
	// zones fall back to UTC.
	Timezone string

	// Temperature overrides the backend default when non-nil.
	Temperature *float64
}

// Executor is the shared execution core behind every concrete agent: it
// prepares model context from conversation state, runs the bounded
// tool-calling loop and exposes the scatter/gather helpers. One Executor is
// safe for concurrent use across turns.
type Executor struct {
	backend model.ChatBackend
	tools   *tool.Registry
	opts    ExecutorOptions
}

// NewExecutor constructs the execution core around a chat backend and a tool
// registry. The registry may be nil for agents that never call tools.
func NewExecutor(backend model.ChatBackend, tools *tool.Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		MaxToolIterations:  8,
		MaxHistoryMessages: 20,
		Timezone:           "UTC",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxToolIterations < 1 {
		opts.MaxToolIterations = 1
	}
	if opts.MaxHistoryMessages < 1 {
		opts.MaxHistoryMessages = 1
	}

	return &Executor{
		backend: backend,
		tools:   tools,
		opts:    opts,
	}
}

// Backend returns the underlying chat backend.
func (e *Executor) Backend() model.ChatBackend { return e.backend }

// Tools returns the tool registry, which may be nil.
func (e *Executor) Tools() *tool.Registry { return e.tools }

// PrepareMessages assembles the ordered model input for one completion:
// system prompt, optional time context, optional conversation-intelligence
// block derived from shared memory, then history per the context mode.
// Shared memory is only read here, never written.
//
// The system prompt may use template variables ({{.user_id}},
// {{.conversation_id}}); a template error falls back to the raw prompt.
func (e *Executor) PrepareMessages(tc *core.TurnContext, st *core.State, systemPrompt string, mode ContextMode) []core.Message {
	rendered, err := util.RenderTemplate(systemPrompt, map[string]any{
		"user_id":         tc.UserID,
		"conversation_id": tc.ConversationID,
	})
	if err != nil {
		tc.Logger().Warn("prompt.render.failed", "error", err.Error())
		rendered = systemPrompt
	}

	msgs := []core.Message{core.NewSystemMessage(rendered)}

	if e.opts.IncludeTimeContext {
		msgs = append(msgs, core.NewSystemMessage(e.timeContext()))
	}

	if intel := conversationIntelligence(st.MemorySnapshot()); intel != "" {
		msgs = append(msgs, core.NewSystemMessage(intel))
	}

	switch mode {
	case SeparatedContext:
		analysis := e.AnalyzeTopic(tc, st)
		background := analysis.RelevantContext
		if background == "" {
			background = "No relevant prior context."
		}
		msgs = append(msgs,
			core.NewSystemMessage("Background from earlier in this conversation:\n"+background),
			core.NewSystemMessage("Topic relationship to prior discussion: "+analysis.Relationship),
			core.NewUserMessage("Current request: "+st.OriginalQuery()),
		)
	default:
		for _, m := range st.RecentMessages(e.opts.MaxHistoryMessages) {
			if m.Role == core.RoleSystem {
				continue
			}
			msgs = append(msgs, m)
		}
		if len(st.GetMessages()) == 0 {
			msgs = append(msgs, core.NewUserMessage(st.OriginalQuery()))
		}
	}

	return msgs
}

// timeContext renders the current wall-clock time in the configured zone.
func (e *Executor) timeContext() string {
	loc, err := time.LoadLocation(e.opts.Timezone)
	if err != nil || e.opts.Timezone == "" {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return fmt.Sprintf("Current date and time: %s", now.Format("Monday, January 2, 2006 at 3:04 PM MST"))
}

// conversationIntelligence summarizes shared-memory signals relevant to the
// next completion. Returns "" when there is nothing worth surfacing.
func conversationIntelligence(mem core.SharedMemory) string {
	var parts []string

	if len(mem.DetectedFilters) > 0 {
		var fs []string
		for k, v := range mem.DetectedFilters {
			fs = append(fs, k+"="+v)
		}
		parts = append(parts, "Detected query filters: "+strings.Join(fs, ", "))
	}

	if mem.DataSufficiency.LocalResultCount > 0 || mem.DataSufficiency.WebSearchNeeded {
		parts = append(parts, fmt.Sprintf(
			"Data sufficiency: %d local results, confidence %.1f, web search needed: %t",
			mem.DataSufficiency.LocalResultCount,
			mem.DataSufficiency.ConfidenceLevel,
			mem.DataSufficiency.WebSearchNeeded,
		))
	}

	if n := len(mem.ToolResults); n > 0 {
		parts = append(parts, fmt.Sprintf("Tool calls recorded this conversation: %d", n))
	}

	if len(parts) == 0 {
		return ""
	}
	return "Conversation intelligence:\n" + strings.Join(parts, "\n")
}

// toolDefinitions builds the request tool schema for an agent kind.
func (e *Executor) toolDefinitions(agentKind string) []model.ToolDefinition {
	if e.tools == nil {
		return nil
	}

	tools := e.tools.ToolsFor(agentKind)
	if len(tools) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
