package agent

import (
	"time"

	"github.com/parley-ai/parley/core"
)

// Result builders construct the uniform turn envelope for the three outcome
// shapes. Builders are pure: they never touch conversation state and never
// panic; identical inputs yield structurally identical results apart from
// timestamps. State mutation happens in one place, Apply.

// SuccessResult builds a terminal completed-turn envelope.
func SuccessResult(agentKind, response string, toolsUsed []string, started time.Time) *core.StructuredAgentResult {
	return &core.StructuredAgentResult{
		AgentKind:      agentKind,
		Response:       response,
		TaskStatus:     core.TaskComplete,
		ToolsUsed:      append([]string(nil), toolsUsed...),
		ProcessingTime: time.Since(started),
		Timestamp:      time.Now().UTC(),
	}
}

// PermissionResult builds a suspended-turn envelope asking the user to
// confirm an action. The prompt becomes the response; the original query is
// carried in AdditionalData so Apply can stage it as the pending task.
func PermissionResult(agentKind, prompt, originalQuery, reason string, started time.Time) *core.StructuredAgentResult {
	return &core.StructuredAgentResult{
		AgentKind:  agentKind,
		Response:   prompt,
		TaskStatus: core.TaskPermissionRequired,
		AdditionalData: map[string]any{
			"original_query":    originalQuery,
			"permission_reason": reason,
		},
		ProcessingTime: time.Since(started),
		Timestamp:      time.Now().UTC(),
	}
}

// ErrorResult builds a terminal failed-turn envelope. The response is a
// user-facing explanation; diagnostics and recovery suggestions live in the
// error state.
func ErrorResult(agentKind, userMessage, errorType, detail string, recovery []string, started time.Time) *core.StructuredAgentResult {
	now := time.Now().UTC()
	if userMessage == "" {
		userMessage = "Something went wrong while processing your request."
	}
	return &core.StructuredAgentResult{
		AgentKind:  agentKind,
		Response:   userMessage,
		TaskStatus: core.TaskError,
		ErrorState: &core.ErrorState{
			ErrorType:       errorType,
			Message:         detail,
			RecoveryActions: append([]string(nil), recovery...),
			Timestamp:       now,
		},
		ProcessingTime: time.Since(started),
		Timestamp:      now,
	}
}

// Apply installs a turn result into conversation state. All writes are
// additive: the response is appended as an assistant message, the result
// overwrites only the per-turn result slot, and a permission outcome stages
// the pending task without disturbing other producers' memory fields.
func Apply(st *core.State, r *core.StructuredAgentResult) {
	if st == nil || r == nil {
		return
	}

	if r.Response != "" {
		st.AppendMessage(core.NewMessage(core.RoleAssistant, r.Response))
	}

	if r.TaskStatus == core.TaskPermissionRequired {
		query, _ := r.AdditionalData["original_query"].(string)
		reason, _ := r.AdditionalData["permission_reason"].(string)
		if query == "" {
			query = st.OriginalQuery()
		}
		st.SetPendingTask(core.PendingTask{
			Query:       query,
			AgentKind:   r.AgentKind,
			Reason:      reason,
			RequestedAt: time.Now().UTC(),
		})
	}

	st.SetResult(r, r.TaskStatus == core.TaskComplete)
}
