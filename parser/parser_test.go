package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
)

func TestExtract_DirectJSON(t *testing.T) {
	obj, ok := Extract(`{"task_status": "complete", "response": "ok"}`)
	require.True(t, ok)
	assert.Equal(t, "complete", obj["task_status"])
}

func TestExtract_FencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"task_status\": \"complete\", \"response\": \"ok\"}\n```\nDone."
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, "ok", obj["response"])
}

func TestExtract_GenericFence(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtract_ProseWrapped(t *testing.T) {
	raw := `Sure! Here's the JSON: {"task_status": "complete", "response": "ok"} Hope that helps!`
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, "complete", obj["task_status"])
	assert.Equal(t, "ok", obj["response"])
}

func TestExtract_BracesInsideStrings(t *testing.T) {
	raw := `prefix {"response": "uses { and } inside", "n": 2} suffix`
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, "uses { and } inside", obj["response"])
}

func TestExtract_ControlCharacters(t *testing.T) {
	raw := "{\"response\": \"ok\x01\x02\"}"
	obj, ok := Extract(raw)
	require.True(t, ok)
	assert.Equal(t, "ok", obj["response"])
}

func TestExtract_NoObject(t *testing.T) {
	_, ok := Extract("just a plain sentence with no braces")
	assert.False(t, ok)

	_, ok = Extract("unbalanced { opening")
	assert.False(t, ok)

	_, ok = Extract("")
	assert.False(t, ok)
}

func TestParseAgentResult_ValidObject(t *testing.T) {
	raw := `{"task_status": "complete", "response": "the answer", "confidence": 0.9}`
	r := ParseAgentResult("research", raw)

	assert.Equal(t, core.TaskComplete, r.TaskStatus)
	assert.Equal(t, "the answer", r.Response)
	assert.Equal(t, "research", r.AgentKind)
	assert.Equal(t, 0.9, r.AdditionalData["confidence"])
}

func TestParseAgentResult_AlternateResponseKeys(t *testing.T) {
	r := ParseAgentResult("chat", `{"answer": "use channels"}`)
	assert.Equal(t, "use channels", r.Response)
}

func TestParseAgentResult_InvalidStatusFallsBack(t *testing.T) {
	r := ParseAgentResult("chat", `{"task_status": "finished?", "response": "x"}`)
	assert.Equal(t, core.TaskComplete, r.TaskStatus)
}

func TestParseAgentResult_PlainTextNeverFails(t *testing.T) {
	r := ParseAgentResult("chat", "I'd just answer in plain prose here.")
	assert.Equal(t, core.TaskComplete, r.TaskStatus)
	assert.Equal(t, "I'd just answer in plain prose here.", r.Response)
	assert.Nil(t, r.ErrorState)
}

func TestParseAgentResult_EmptyInput(t *testing.T) {
	r := ParseAgentResult("chat", "   ")
	assert.Equal(t, core.TaskError, r.TaskStatus)
	require.NotNil(t, r.ErrorState)
	assert.Equal(t, "empty_response", r.ErrorState.ErrorType)
}

func TestParseAgentResult_Citations(t *testing.T) {
	raw := `{"response": "cited", "citations": [{"id": 1, "title": "Doc", "type": "document"}, {"notitle": true}]}`
	r := ParseAgentResult("research", raw)

	require.Len(t, r.Citations, 1)
	assert.Equal(t, "Doc", r.Citations[0].Title)
	assert.Equal(t, core.CitationDocument, r.Citations[0].Type)
}

func TestSanitizeControlChars(t *testing.T) {
	in := "line1\nline2\ttab\rret\x00\x08\x7f"
	assert.Equal(t, "line1\nline2\ttab\rret", SanitizeControlChars(in))
}
