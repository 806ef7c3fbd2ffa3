package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/tool"
)

// LoopResult is the outcome of one bounded tool-calling loop.
type LoopResult struct {
	// FinalText is the model's last textual content. When the iteration
	// ceiling was reached with tool calls still pending, this is the last
	// text produced before stopping, possibly empty.
	FinalText string

	// ToolsUsed lists the distinct tool names invoked, in first-use order.
	ToolsUsed []string

	// Iterations counts completed loop rounds.
	Iterations int

	// Messages is the working message list including every assistant
	// tool-call message and tool result appended during the loop.
	Messages []core.Message
}

// RunToolLoop drives the model/tool interaction until the model stops
// requesting tools or the iteration ceiling is reached. Tool failures of any
// kind (unknown name, permission, validation, execution, panic) are
// synthesized into typed failure results fed back to the model; only backend
// completion errors and context cancellation abort the loop.
//
// Every tool round is recorded into shared memory before the next model call,
// so partial progress survives a later failure.
func (e *Executor) RunToolLoop(tc *core.TurnContext, st *core.State, agentKind string, msgs []core.Message, initial *model.Response) (*LoopResult, error) {
	out := &LoopResult{
		Messages:  append([]core.Message{}, msgs...),
		FinalText: initial.Content,
	}
	toolDefs := e.toolDefinitions(agentKind)
	seen := map[string]bool{}

	resp := initial
	for iter := 0; iter < e.opts.MaxToolIterations; iter++ {
		if err := tc.Err(); err != nil {
			return nil, err
		}
		if !resp.HasToolCalls() {
			out.FinalText = resp.Content
			break
		}

		out.Iterations = iter + 1
		tc.Notify(core.StatusIterationStart, fmt.Sprintf("Working on it (round %d)", iter+1), map[string]any{
			"iteration": iter + 1,
			"tools":     len(resp.ToolCalls),
		})

		out.Messages = append(out.Messages, core.NewAssistantToolCallMessage(resp.Content, resp.ToolCalls))

		for _, call := range resp.ToolCalls {
			result := e.executeCall(tc, st, agentKind, call)
			if !seen[call.Name] {
				seen[call.Name] = true
				out.ToolsUsed = append(out.ToolsUsed, call.Name)
			}
			out.Messages = append(out.Messages, core.NewToolResultMessage(call.ID, call.Name, encodeResult(result)))
		}

		next, err := e.backend.Complete(tc.Context, model.Request{
			Messages:    out.Messages,
			Tools:       toolDefs,
			Temperature: e.opts.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("completion after tool round %d: %w", iter+1, err)
		}
		resp = next
		out.FinalText = resp.Content
	}

	tc.Notify(core.StatusSynthesis, "Preparing the answer", map[string]any{
		"iterations": out.Iterations,
		"tools_used": len(out.ToolsUsed),
	})

	return out, nil
}

// executeCall resolves and invokes one requested tool call, records the
// outcome into shared memory and returns the JSON-compatible result value.
// Failures are returned as typed failure payloads, never as errors.
func (e *Executor) executeCall(tc *core.TurnContext, st *core.State, agentKind string, call core.ToolCall) any {
	tc.Notify(core.StatusToolStart, "Running "+call.Name, map[string]any{"tool": call.Name})

	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			failure := failureResult(call.Name, "invalid tool arguments: "+err.Error())
			st.RecordToolResult(core.NewFailedToolCallRecord(call.ID, call.Name, nil, "invalid arguments"), nil)
			tc.Notify(core.StatusToolError, call.Name+" received invalid arguments", map[string]any{"tool": call.Name})
			return failure
		}
	}

	var t tool.Tool
	var err error
	if e.tools != nil {
		t, err = e.tools.Resolve(call.Name, agentKind)
	} else {
		err = tool.NewToolError(call.Name, "no tools available", tool.CodeNotFound)
	}
	if err != nil {
		failure := failureResult(call.Name, err.Error())
		st.RecordToolResult(core.NewFailedToolCallRecord(call.ID, call.Name, args, err.Error()), nil)
		tc.Notify(core.StatusToolError, call.Name+" is not available", map[string]any{"tool": call.Name, "error": err.Error()})
		return failure
	}

	result, err := e.invokeTool(tc, t, call, args, agentKind)
	if err != nil {
		failure := failureResult(call.Name, err.Error())
		st.RecordToolResult(core.NewFailedToolCallRecord(call.ID, call.Name, args, err.Error()), nil)
		tc.Notify(core.StatusToolError, call.Name+" failed", map[string]any{"tool": call.Name, "error": err.Error()})
		return failure
	}

	results := extractResults(result)
	st.RecordToolResult(core.NewToolCallRecord(call.ID, call.Name, args, result), results)
	if results != nil {
		if isWebSearchTool(call.Name) {
			st.ApplyWebSufficiency(len(results))
		} else {
			st.ApplyLocalSufficiency(len(results))
		}
	}

	tc.Notify(core.StatusToolComplete, call.Name+" finished", map[string]any{
		"tool":    call.Name,
		"results": len(results),
	})
	return result
}

// invokeTool dispatches one call through the tool's preferred convention.
// Plain tools get the authenticated user id injected; a validation rejection
// of the injected argument is retried with the original arguments so tools
// that do not declare user_id still work.
func (e *Executor) invokeTool(tc *core.TurnContext, t tool.Tool, call core.ToolCall, args map[string]any, agentKind string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = tool.NewToolError(call.Name, fmt.Sprintf("panic: %v", r), tool.CodeExecution)
		}
	}()

	inv := tool.NewInvocation(tc.Context, call.ID, tc.ConversationID, tc.UserID, agentKind, tc.Logger())

	if raw, ok := t.(tool.RawTool); ok {
		return raw.CallRaw(inv, json.RawMessage(call.Arguments))
	}

	injected := make(map[string]any, len(args)+1)
	for k, v := range args {
		injected[k] = v
	}
	if _, present := injected["user_id"]; !present {
		injected["user_id"] = tc.UserID
	}

	result, err = t.Call(inv, injected)
	if err != nil && tool.IsValidationError(err) {
		result, err = t.Call(inv, args)
	}
	return result, err
}

// failureResult is the typed payload fed back to the model for any per-tool
// failure, letting it recover instead of aborting the turn.
func failureResult(toolName, message string) map[string]any {
	return map[string]any{
		"tool_name": toolName,
		"success":   false,
		"error":     message,
	}
}

// extractResults pulls an indexable result list out of a tool's return value:
// either the value itself or its "results" field. Nil when the tool returned
// a scalar or opaque payload.
func extractResults(result any) []any {
	switch v := result.(type) {
	case []any:
		return v
	case map[string]any:
		if list, ok := v["results"].([]any); ok {
			return list
		}
	}
	return nil
}

// isWebSearchTool classifies a tool as a web-class search by name. Web-class
// results boost confidence additively; local-class results set the base tier.
func isWebSearchTool(name string) bool {
	return strings.Contains(strings.ToLower(name), "web")
}

// encodeResult renders a tool result as the tool message's content string.
func encodeResult(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}
