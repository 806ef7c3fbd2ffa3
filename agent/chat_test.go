package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/internal/testutil"
	"github.com/parley-ai/parley/model"
)

func TestChatAgent_PlainAnswer(t *testing.T) {
	backend := model.NewMockBackend().EnqueueText("A goroutine is a lightweight thread.")
	a := NewChatAgent(NewExecutor(backend, nil))
	st := testutil.NewStateBuilder().UserText("what is a goroutine?").Build()

	result, err := a.Process(turnContext(nil), st)

	require.NoError(t, err)
	assert.Equal(t, core.TaskComplete, result.TaskStatus)
	assert.Equal(t, "A goroutine is a lightweight thread.", result.Response)

	// The answered query becomes a topic for later separation analysis.
	topics := st.RecentTopics(1)
	require.Len(t, topics, 1)
	assert.Equal(t, "what is a goroutine?", topics[0].Summary)
}

func TestChatAgent_StructuredAnswer(t *testing.T) {
	backend := model.NewMockBackend().
		EnqueueText(`{"task_status": "complete", "response": "Use a buffered channel.", "mood": "helpful"}`)
	a := NewChatAgent(NewExecutor(backend, nil))
	st := testutil.NewStateBuilder().UserText("how do I avoid blocking?").Build()

	result, err := a.Process(turnContext(nil), st)

	require.NoError(t, err)
	assert.Equal(t, "Use a buffered channel.", result.Response)
	assert.Equal(t, "helpful", result.AdditionalData["mood"])
}

func TestChatAgent_SecondTurnUsesSeparatedContext(t *testing.T) {
	a := NewChatAgent(NewExecutor(
		model.NewMockBackend().EnqueueText("First answer."), nil))
	st := testutil.NewStateBuilder().UserText("tell me about go modules").Build()

	_, err := a.Process(turnContext(nil), st)
	require.NoError(t, err)

	// Second turn: topic history now exists, so classification runs first.
	backend := model.NewMockBackend().
		EnqueueText(`{"relationship": "NEW_TOPIC", "relevant_context": ""}`).
		EnqueueText("Unrelated answer.")
	a = NewChatAgent(NewExecutor(backend, nil))

	st.SetCurrentQuery("what's a good pizza dough recipe?")
	st.AppendMessage(core.NewUserMessage("what's a good pizza dough recipe?"))

	result, err := a.Process(turnContext(nil), st)
	require.NoError(t, err)
	assert.Equal(t, "Unrelated answer.", result.Response)

	// The answering request saw no stale background, only the labeled query.
	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	answerReq := reqs[1]
	var userMsgs []core.Message
	for _, m := range answerReq.Messages {
		if m.Role == core.RoleUser {
			userMsgs = append(userMsgs, m)
		}
	}
	require.Len(t, userMsgs, 1)
	assert.Contains(t, userMsgs[0].Content, "pizza dough")
	for _, m := range answerReq.Messages {
		assert.NotContains(t, m.Content, "go modules")
	}
}
