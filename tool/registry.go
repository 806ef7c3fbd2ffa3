package tool

import (
	"sync"
)

// Registry maps tool names to implementations and gates resolution by agent
// kind. Resolution failures are typed so the execution core can synthesize a
// recoverable per-tool failure instead of aborting the turn.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	grants map[string]map[string]bool // agent kind -> permitted tool names
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		grants: make(map[string]map[string]bool),
	}
}

// Register adds a tool. If agentKinds are given, only those kinds may resolve
// it; with none, the tool is available to every agent kind.
func (r *Registry) Register(t Tool, agentKinds ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[t.Name()] = t

	for _, kind := range agentKinds {
		if r.grants[kind] == nil {
			r.grants[kind] = make(map[string]bool)
		}
		r.grants[kind][t.Name()] = true
	}
}

// Grant permits an agent kind to use already-registered tool names.
func (r *Registry) Grant(agentKind string, toolNames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.grants[agentKind] == nil {
		r.grants[agentKind] = make(map[string]bool)
	}
	for _, name := range toolNames {
		r.grants[agentKind][name] = true
	}
}

// Resolve looks up a tool by name subject to the agent kind's permissions.
// A missing tool yields a NOT_FOUND ToolError; a tool registered with an
// allow-list that excludes agentKind yields PERMISSION_DENIED. Both are
// recoverable per-tool failures, never fatal to the turn.
func (r *Registry) Resolve(name, agentKind string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, NewToolError(name, "tool not found", CodeNotFound)
	}

	if !r.permittedLocked(name, agentKind) {
		return nil, NewToolError(name, "tool not permitted for agent "+agentKind, CodePermission)
	}

	return t, nil
}

// Permitted reports whether agentKind may resolve the named tool.
func (r *Registry) Permitted(name, agentKind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.tools[name]; !ok {
		return false
	}
	return r.permittedLocked(name, agentKind)
}

// permittedLocked implements the gate: a tool with no grant entries anywhere
// is ungated; one granted to any kind is restricted to its grantees.
func (r *Registry) permittedLocked(name, agentKind string) bool {
	restricted := false
	for _, kindGrants := range r.grants {
		if kindGrants[name] {
			restricted = true
			break
		}
	}

	if !restricted {
		return true
	}

	return r.grants[agentKind][name]
}

// ToolsFor returns every tool the given agent kind may use, for building the
// request tool schema. Order is not specified.
func (r *Registry) ToolsFor(agentKind string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for name, t := range r.tools {
		if r.permittedLocked(name, agentKind) {
			out = append(out, t)
		}
	}
	return out
}
