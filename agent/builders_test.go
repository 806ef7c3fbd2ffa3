package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/internal/testutil"
)

func TestSuccessResult(t *testing.T) {
	started := time.Now().Add(-time.Second)
	r := SuccessResult("research", "the answer", []string{"search_documents"}, started)

	assert.Equal(t, core.TaskComplete, r.TaskStatus)
	assert.Equal(t, "the answer", r.Response)
	assert.Equal(t, []string{"search_documents"}, r.ToolsUsed)
	assert.GreaterOrEqual(t, r.ProcessingTime, time.Second)
	assert.Nil(t, r.ErrorState)
}

func TestBuilders_Idempotent(t *testing.T) {
	started := time.Now()
	a := SuccessResult("chat", "hi", nil, started)
	b := SuccessResult("chat", "hi", nil, started)

	// Structurally identical apart from timing fields.
	a.ProcessingTime, b.ProcessingTime = 0, 0
	a.Timestamp, b.Timestamp = time.Time{}, time.Time{}
	assert.Equal(t, a, b)
}

func TestErrorResult(t *testing.T) {
	r := ErrorResult("editor", "", "validation_error", "anchor missing",
		[]string{"Quote the exact text"}, time.Now())

	assert.Equal(t, core.TaskError, r.TaskStatus)
	// A user-facing message is always present.
	assert.NotEmpty(t, r.Response)
	require.NotNil(t, r.ErrorState)
	assert.Equal(t, "validation_error", r.ErrorState.ErrorType)
	assert.Equal(t, []string{"Quote the exact text"}, r.ErrorState.RecoveryActions)
}

func TestApply_Success(t *testing.T) {
	st := testutil.NewStateBuilder().UserText("question").Build()
	r := SuccessResult("chat", "answer", nil, time.Now())

	Apply(st, r)

	assert.True(t, st.IsComplete)
	assert.Equal(t, "answer", st.LatestResponse)
	msgs := st.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	assert.Same(t, r, st.Result())
}

func TestApply_PermissionStagesPendingTask(t *testing.T) {
	st := testutil.NewStateBuilder().UserText("find recent papers").Build()
	r := PermissionResult("research", "May I search the web?", "find recent papers", "web search requires confirmation", time.Now())

	Apply(st, r)

	assert.False(t, st.IsComplete)
	assert.True(t, st.RequiresUserInput)

	pt, ok := st.PendingTask()
	require.True(t, ok)
	assert.Equal(t, "find recent papers", pt.Query)
	assert.Equal(t, "research", pt.AgentKind)

	// The follow-up "yes" recovers the original task.
	st.SetCurrentQuery("yes")
	assert.Equal(t, "find recent papers", st.OriginalQuery())
}

func TestApply_NilSafe(t *testing.T) {
	Apply(nil, nil)
	Apply(testutil.NewStateBuilder().Build(), nil)
	Apply(nil, SuccessResult("chat", "x", nil, time.Now()))
}
