// Package tool implements the function / tool calling subsystem: schema
// validated callables, consistent typed error handling, and a permission
// gated registry resolving tool names per agent kind.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parley-ai/parley/logging"
)

// Error codes attached to ToolError for uniform downstream handling.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodePermission = "PERMISSION_DENIED"
)

// Invocation carries the per-call scope handed to tool implementations:
// cancellation, correlation id, conversation identity, and a logger. UserID
// is available here so tools that need it do not require it as a declared
// argument.
type Invocation struct {
	Context        context.Context
	CallID         string
	ConversationID string
	UserID         string
	AgentKind      string

	logger logging.Logger
}

// NewInvocation constructs a tool invocation scope.
func NewInvocation(ctx context.Context, callID, conversationID, userID, agentKind string, logger logging.Logger) *Invocation {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Invocation{
		Context:        ctx,
		CallID:         callID,
		ConversationID: conversationID,
		UserID:         userID,
		AgentKind:      agentKind,
		logger:         logger,
	}
}

// Logger returns the invocation's structured logger.
func (inv *Invocation) Logger() logging.Logger { return inv.logger }

// Tool is the primary callable contract: keyword-style arguments parsed from
// the model's JSON payload, validated against the tool's declared schema.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a proper JSON schema for parameters
//   - Return errors rather than panicking
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with parsed, validated arguments. The returned
	// value must be JSON-compatible (mapping, slice, scalar or string).
	Call(inv *Invocation, args map[string]any) (any, error)
}

// RawTool is the alternate invocation convention: the tool receives the
// model's argument payload as a single raw JSON bundle and performs its own
// decoding. The execution core prefers this path when a tool implements it.
type RawTool interface {
	Tool

	// CallRaw executes the tool with the unparsed argument bundle.
	CallRaw(inv *Invocation, raw json.RawMessage) (any, error)
}

// ToolError represents a failure during tool resolution or execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// IsValidationError reports whether err is a ToolError carrying the
// validation code. The tool loop uses this to retry a call without the
// injected user_id argument.
func IsValidationError(err error) bool {
	te, ok := err.(*ToolError)
	return ok && te.Code == CodeValidation
}
