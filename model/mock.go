package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/parley-ai/parley/core"
)

// MockBackend is a scripted in-memory ChatBackend for tests and examples.
// Responses are consumed in FIFO order; when the script is exhausted it
// echoes the last user message. All recorded requests are retained for
// assertion.
type MockBackend struct {
	mu        sync.Mutex
	script    []*Response
	errScript []error
	requests  []Request
}

// NewMockBackend constructs an empty mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Enqueue appends a scripted response.
func (m *MockBackend) Enqueue(resp *Response) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
	m.errScript = append(m.errScript, nil)
	return m
}

// EnqueueText appends a plain text completion.
func (m *MockBackend) EnqueueText(text string) *MockBackend {
	return m.Enqueue(&Response{ID: core.NewID(), Content: text, FinishReason: "stop"})
}

// EnqueueToolCalls appends a completion requesting the given tool calls.
func (m *MockBackend) EnqueueToolCalls(calls ...core.ToolCall) *MockBackend {
	return m.Enqueue(&Response{ID: core.NewID(), ToolCalls: calls, FinishReason: "tool_calls"})
}

// EnqueueError appends a scripted failure.
func (m *MockBackend) EnqueueError(err error) *MockBackend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, nil)
	m.errScript = append(m.errScript, err)
	return m
}

// Complete implements ChatBackend.
func (m *MockBackend) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.script) > 0 {
		resp, err := m.script[0], m.errScript[0]
		m.script = m.script[1:]
		m.errScript = m.errScript[1:]
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == core.RoleUser {
			lastUser = msg.Content
		}
	}

	return &Response{
		ID:           core.NewID(),
		Content:      fmt.Sprintf("Mock response to: %s", lastUser),
		FinishReason: "stop",
	}, nil
}

// Requests returns a copy of every request seen so far.
func (m *MockBackend) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]Request, len(m.requests))
	copy(reqs, m.requests)
	return reqs
}

// LastRequest returns the most recent request, or nil if none were made.
func (m *MockBackend) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// Info implements ChatBackend.
func (m *MockBackend) Info() Info {
	return Info{Name: "mock", Provider: "mock", SupportsTools: true}
}
