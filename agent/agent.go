package agent

import (
	"github.com/parley-ai/parley/core"
)

// Agent kinds provided by this package. The set is closed: routing dispatches
// over registered Agent values, never over free-form strings.
const (
	KindChat     = "chat"
	KindResearch = "research"
	KindEditor   = "editor"
)

// Agent is the contract every orchestrated agent satisfies. Process runs one
// full turn against the shared conversation state and returns the turn's
// result envelope.
//
// Process must not return a nil result with a nil error. An error return is
// reserved for host-level failures (context cancellation, persistence); agent
// and model failures are reported inside the result with status error.
type Agent interface {
	// Kind returns the stable identifier used for tool permissions and
	// result attribution.
	Kind() string

	// Description returns a human-readable summary of the agent's purpose.
	Description() string

	// Process executes one orchestration turn.
	Process(tc *core.TurnContext, st *core.State) (*core.StructuredAgentResult, error)
}
