package core

import "time"

// TaskStatus is the closed set of terminal states an agent turn can report.
type TaskStatus string

const (
	// TaskComplete indicates the agent produced a final answer.
	TaskComplete TaskStatus = "complete"
	// TaskIncomplete indicates the agent stopped before producing a final answer.
	TaskIncomplete TaskStatus = "incomplete"
	// TaskPermissionRequired indicates the agent needs user confirmation before
	// continuing; the turn is suspended, not failed.
	TaskPermissionRequired TaskStatus = "permission_required"
	// TaskError indicates a terminal turn-level failure (see ErrorState).
	TaskError TaskStatus = "error"
)

// ErrorState carries structured diagnostics for a terminal turn error. The
// recovery actions are user-actionable suggestions, not internal stack detail.
type ErrorState struct {
	ErrorType       string    `json:"error_type"`
	Message         string    `json:"message"`
	RecoveryActions []string  `json:"recovery_actions,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// CitationType classifies the origin of a reconciled source.
type CitationType string

const (
	// CitationDocument references a local document search hit.
	CitationDocument CitationType = "document"
	// CitationWebpage references a web search result.
	CitationWebpage CitationType = "webpage"
	// CitationBook references a book-collection document.
	CitationBook CitationType = "book"
)

// Citation is one normalized entry in a numbered source list, produced by
// reconciling heterogeneous search-result formats. Identity is keyed by
// title/URL; IDs are sequential starting at 1.
type Citation struct {
	ID      int          `json:"id"`
	Title   string       `json:"title"`
	Type    CitationType `json:"type"`
	URL     string       `json:"url,omitempty"`
	Author  string       `json:"author,omitempty"`
	Date    string       `json:"date,omitempty"`
	Excerpt string       `json:"excerpt,omitempty"`
}

// StructuredAgentResult is the uniform result envelope every agent turn
// produces, regardless of outcome. It is constructed exactly once per turn,
// either parsed from the model's JSON output or synthesized as a fallback,
// and never partially updated afterwards.
type StructuredAgentResult struct {
	AgentKind      string         `json:"agent_kind"`
	Response       string         `json:"response"`
	TaskStatus     TaskStatus     `json:"task_status"`
	ToolsUsed      []string       `json:"tools_used,omitempty"`
	Citations      []Citation     `json:"citations,omitempty"`
	ErrorState     *ErrorState    `json:"error_state,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Timestamp      time.Time      `json:"timestamp"`
}

// IsTerminal reports whether the status ends the turn without further input.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskComplete || s == TaskError
}

// Valid reports whether the status is a member of the closed set.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskComplete, TaskIncomplete, TaskPermissionRequired, TaskError:
		return true
	}
	return false
}
