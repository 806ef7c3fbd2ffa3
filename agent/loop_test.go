package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/internal/testutil"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/notify"
	"github.com/parley-ai/parley/tool"
)

var searchParams = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"query": map[string]any{"type": "string"},
	},
	"required": []string{"query"},
}

func searchRegistry(results ...any) *tool.Registry {
	r := tool.NewRegistry()
	r.Register(tool.NewFunctionTool("search_documents", "Search local documents", searchParams,
		func(inv *tool.Invocation, args map[string]any) (any, error) {
			return map[string]any{"results": results}, nil
		}))
	return r
}

func turnContext(notifier core.Notifier) *core.TurnContext {
	return core.NewTurnContext(context.Background(), "conv-1", "user-1", func(o *core.TurnContextOptions) {
		o.Notifier = notifier
	})
}

func TestRunToolLoop_NoToolCalls(t *testing.T) {
	backend := model.NewMockBackend()
	exec := NewExecutor(backend, searchRegistry())
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{Content: "direct answer"}
	out, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, "direct answer", out.FinalText)
	assert.Zero(t, out.Iterations)
	assert.Empty(t, out.ToolsUsed)
	assert.Empty(t, backend.Requests())
}

func TestRunToolLoop_SingleRound(t *testing.T) {
	backend := model.NewMockBackend().EnqueueText("found it in the docs")
	exec := NewExecutor(backend, searchRegistry("doc-a", "doc-b", "doc-c"))
	st := testutil.NewStateBuilder().Build()
	rec := notify.NewRecorder()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "search_documents", map[string]any{"query": "go"}),
	}}
	out, err := exec.RunToolLoop(turnContext(rec), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, "found it in the docs", out.FinalText)
	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, []string{"search_documents"}, out.ToolsUsed)

	// Tool round recorded into shared memory before the follow-up call.
	recs := st.GetToolResults()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
	assert.Len(t, st.MemorySnapshot().SearchResults["search_documents"], 3)

	// Three local results set the good-confidence tier.
	assert.Equal(t, core.ConfidenceGood, st.Sufficiency().ConfidenceLevel)

	// Follow-up request carries the tool result message.
	req := backend.LastRequest()
	require.NotNil(t, req)
	last := req.Messages[len(req.Messages)-1]
	assert.Equal(t, core.RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)

	// Progress notifications: iteration start, tool start/complete, synthesis.
	assert.Len(t, rec.ByStatus(core.StatusIterationStart), 1)
	assert.Len(t, rec.ByStatus(core.StatusToolComplete), 1)
	assert.Len(t, rec.ByStatus(core.StatusSynthesis), 1)
}

func TestRunToolLoop_WebToolBoostsConfidence(t *testing.T) {
	backend := model.NewMockBackend().EnqueueText("done")
	r := tool.NewRegistry()
	r.Register(tool.NewFunctionTool("web_search", "Search the web", searchParams,
		func(inv *tool.Invocation, args map[string]any) (any, error) {
			return map[string]any{"results": []any{map[string]any{"title": "hit"}}}, nil
		}))
	exec := NewExecutor(backend, r)
	st := testutil.NewStateBuilder().Build()
	st.ApplyLocalSufficiency(0)

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "web_search", map[string]any{"query": "go"}),
	}}
	_, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	suff := st.Sufficiency()
	assert.InDelta(t, core.ConfidenceLow+core.WebSearchBoost, suff.ConfidenceLevel, 1e-9)
	assert.False(t, suff.WebSearchNeeded)
}

func TestRunToolLoop_UnknownToolSynthesizesFailure(t *testing.T) {
	backend := model.NewMockBackend().EnqueueText("recovered without the tool")
	exec := NewExecutor(backend, searchRegistry())
	st := testutil.NewStateBuilder().Build()
	rec := notify.NewRecorder()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "no_such_tool", map[string]any{"query": "x"}),
	}}
	out, err := exec.RunToolLoop(turnContext(rec), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, "recovered without the tool", out.FinalText)

	// The failure is fed back to the model, not raised.
	req := backend.LastRequest()
	last := req.Messages[len(req.Messages)-1]
	assert.Contains(t, last.Content, "not found")
	assert.Contains(t, last.Content, `"success":false`)

	recs := st.GetToolResults()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Success)
	assert.Len(t, rec.ByStatus(core.StatusToolError), 1)
}

func TestRunToolLoop_UserIDInjectionRetry(t *testing.T) {
	var got map[string]any
	r := tool.NewRegistry()
	r.Register(tool.NewFunctionTool("lookup", "Lookup something", searchParams,
		func(inv *tool.Invocation, args map[string]any) (any, error) {
			got = args
			return "ok", nil
		}))

	backend := model.NewMockBackend().EnqueueText("done")
	exec := NewExecutor(backend, r)
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "lookup", map[string]any{"query": "x"}),
	}}
	_, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	// The schema does not declare user_id, so the retry dropped it.
	require.NotNil(t, got)
	_, hasUserID := got["user_id"]
	assert.False(t, hasUserID)

	recs := st.GetToolResults()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
}

func TestRunToolLoop_CeilingReached(t *testing.T) {
	// The model keeps requesting tools forever; the loop must stop at the
	// iteration ceiling and use the last text produced.
	backend := model.NewMockBackend()
	for i := 0; i < 8; i++ {
		backend.Enqueue(&model.Response{
			Content: "still working",
			ToolCalls: []core.ToolCall{
				testutil.ToolCall("call-x", "search_documents", map[string]any{"query": "again"}),
			},
		})
	}
	exec := NewExecutor(backend, searchRegistry("doc"))
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-0", "search_documents", map[string]any{"query": "go"}),
	}}
	out, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, 8, out.Iterations)
	assert.Equal(t, "still working", out.FinalText)
	// 8 rounds ran: one per scripted completion.
	assert.Len(t, st.GetToolResults(), 8)
}

func TestRunToolLoop_BackendErrorAborts(t *testing.T) {
	backend := model.NewMockBackend().EnqueueError(errors.New("rate limited"))
	exec := NewExecutor(backend, searchRegistry("doc"))
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "search_documents", map[string]any{"query": "go"}),
	}}
	_, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.Error(t, err)
	// The round completed before the failing completion, so partial progress
	// survives in shared memory.
	assert.Len(t, st.GetToolResults(), 1)
}

func TestRunToolLoop_InvalidArguments(t *testing.T) {
	backend := model.NewMockBackend().EnqueueText("recovered")
	exec := NewExecutor(backend, searchRegistry())
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		{ID: "call-1", Name: "search_documents", Arguments: "{not json"},
	}}
	out, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, "recovered", out.FinalText)
	recs := st.GetToolResults()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Success)
}

func TestRunToolLoop_PanickingTool(t *testing.T) {
	r := tool.NewRegistry()
	r.Register(tool.NewFunctionTool("explode", "Always panics", searchParams,
		func(inv *tool.Invocation, args map[string]any) (any, error) {
			panic("boom")
		}))
	backend := model.NewMockBackend().EnqueueText("survived")
	exec := NewExecutor(backend, r)
	st := testutil.NewStateBuilder().Build()

	initial := &model.Response{ToolCalls: []core.ToolCall{
		testutil.ToolCall("call-1", "explode", map[string]any{"query": "x"}),
	}}
	out, err := exec.RunToolLoop(turnContext(nil), st, "research", nil, initial)

	require.NoError(t, err)
	assert.Equal(t, "survived", out.FinalText)
	recs := st.GetToolResults()
	require.Len(t, recs, 1)
	assert.False(t, recs[0].Success)
	assert.Contains(t, recs[0].Error, "panic")
}
