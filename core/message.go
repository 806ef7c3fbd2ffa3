package core

import (
	"time"

	"github.com/google/uuid"
)

// Conversation roles used throughout the framework. "ai" is accepted as an
// alias for "assistant" when ingesting externally persisted histories.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToolCall describes a model-issued tool invocation request. The ID is an
// opaque correlation token: the follow-up tool-role message carries the same
// ID so the backend can match request and result.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // serialized JSON argument payload
}

// Message is one role-tagged entry in the conversation history. After being
// appended to a State it should be treated as immutable.
type Message struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant messages requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool messages: originating call id
	ToolName   string     `json:"tool_name,omitempty"`    // tool messages: executed tool
	Timestamp  time.Time  `json:"timestamp"`
}

// NewMessage constructs a message with a fresh id and UTC timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage is a convenience wrapper for a user-authored message.
func NewUserMessage(content string) Message { return NewMessage(RoleUser, content) }

// NewSystemMessage is a convenience wrapper for a system message.
func NewSystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// NewAssistantToolCallMessage records the model requesting one or more tool
// invocations. Content may be empty when the model emitted only tool calls.
func NewAssistantToolCallMessage(content string, calls []ToolCall) Message {
	m := NewMessage(RoleAssistant, content)
	m.ToolCalls = calls
	return m
}

// NewToolResultMessage records a tool execution outcome, correlated to its
// originating call by callID.
func NewToolResultMessage(callID, toolName, content string) Message {
	m := NewMessage(RoleTool, content)
	m.ToolCallID = callID
	m.ToolName = toolName
	return m
}

// NormalizeRole maps accepted role aliases onto their canonical form.
func NormalizeRole(role string) string {
	if role == "ai" {
		return RoleAssistant
	}
	return role
}

// NewID generates a unique identifier for messages, tool calls and turns.
func NewID() string { return uuid.NewString() }
