// Package model defines the ChatBackend contract the orchestration core uses
// to obtain completions, plus the normalized request/response types shared by
// all provider adapters. Concrete adapters live in the vendor subpackages.
package model

import (
	"context"

	"github.com/parley-ai/parley/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized model input produced by the execution core. The
// message list is ordered: system prompt first, then context blocks, then
// conversation messages.
type Request struct {
	Messages    []core.Message   `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  string           `json:"tool_choice,omitempty"` // "auto" (default) or "none"
	Temperature *float64         `json:"temperature,omitempty"`
	MaxTokens   int64            `json:"max_tokens,omitempty"`
}

// TokenUsage captures token accounting for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a single completion. It exposes either textual content, a list
// of requested tool calls, or both.
type Response struct {
	ID           string          `json:"id"`
	Content      string          `json:"content"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason"` // "stop", "length", "tool_calls", ...
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// HasToolCalls reports whether the model requested tool invocations.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Info contains metadata about a backend implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// ChatBackend is the minimal interface the execution core needs from an LLM
// provider: one role-tagged message list in, one completion out. Per-call
// timeouts are the backend's responsibility via the supplied context.
type ChatBackend interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns metadata about the backend implementation.
	Info() Info
}
