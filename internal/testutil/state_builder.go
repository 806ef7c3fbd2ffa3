package testutil

import (
	"encoding/json"

	"github.com/parley-ai/parley/core"
)

// StateBuilder provides a fluent helper for constructing conversation states
// in tests. Example:
//
//	st := NewStateBuilder().User("u-1").UserText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type StateBuilder struct {
	conversationID string
	userID         string
	query          string
	messages       []core.Message
	topics         []string
	pending        *core.PendingTask
	editor         *core.EditorContext
}

// NewStateBuilder creates a builder with default identifiers.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{conversationID: "conv-1", userID: "user-1"}
}

// Conversation sets the conversation ID (chainable).
func (b *StateBuilder) Conversation(id string) *StateBuilder { b.conversationID = id; return b }

// User sets the user ID (chainable).
func (b *StateBuilder) User(id string) *StateBuilder { b.userID = id; return b }

// Query sets the current query (chainable).
func (b *StateBuilder) Query(q string) *StateBuilder { b.query = q; return b }

// UserText appends a user message and makes it the current query (chainable).
func (b *StateBuilder) UserText(t string) *StateBuilder {
	b.messages = append(b.messages, core.NewUserMessage(t))
	b.query = t
	return b
}

// AssistantText appends an assistant message (chainable).
func (b *StateBuilder) AssistantText(t string) *StateBuilder {
	b.messages = append(b.messages, core.NewMessage(core.RoleAssistant, t))
	return b
}

// Topic records a discussed topic (chainable).
func (b *StateBuilder) Topic(summary string) *StateBuilder {
	b.topics = append(b.topics, summary)
	return b
}

// Pending stages a task awaiting permission (chainable).
func (b *StateBuilder) Pending(query, agentKind string) *StateBuilder {
	b.pending = &core.PendingTask{Query: query, AgentKind: agentKind}
	return b
}

// Editor installs a document under edit (chainable).
func (b *StateBuilder) Editor(documentID, text string) *StateBuilder {
	b.editor = &core.EditorContext{DocumentID: documentID, Text: text}
	return b
}

// Build assembles the state.
func (b *StateBuilder) Build() *core.State {
	st := core.NewState(b.conversationID, b.userID)
	for _, m := range b.messages {
		st.AppendMessage(m)
	}
	if b.query != "" {
		st.SetCurrentQuery(b.query)
	}
	for _, t := range b.topics {
		st.PushTopic(t)
	}
	if b.pending != nil {
		st.SetPendingTask(*b.pending)
	}
	if b.editor != nil {
		st.SetEditorContext(*b.editor)
	}
	return st
}

// ToolCall builds a model tool-call request with JSON-encoded arguments.
func ToolCall(id, name string, args map[string]any) core.ToolCall {
	encoded, _ := json.Marshal(args)
	return core.ToolCall{ID: id, Name: name, Arguments: string(encoded)}
}
