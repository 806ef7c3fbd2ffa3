package agent

import (
	"time"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/parser"
)

const defaultChatPrompt = `You are a helpful conversational assistant. Answer
the user's current request directly. Background from earlier topics is
provided separately; use it only when it is relevant to the current request.`

// ChatAgentOptions configures the chat agent.
type ChatAgentOptions struct {
	// SystemPrompt overrides the default conversational instructions.
	SystemPrompt string
}

// ChatAgent is the primary conversational agent. It presents the model with
// separated context (analyzed background plus a labeled current request)
// instead of raw history, may call tools, and records each answered query as
// a topic for later separation analysis.
type ChatAgent struct {
	exec *Executor
	opts ChatAgentOptions
}

// NewChatAgent constructs a chat agent on the shared execution core.
func NewChatAgent(exec *Executor, optFns ...func(o *ChatAgentOptions)) *ChatAgent {
	opts := ChatAgentOptions{
		SystemPrompt: defaultChatPrompt,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ChatAgent{exec: exec, opts: opts}
}

// Kind implements Agent.
func (a *ChatAgent) Kind() string { return KindChat }

// Description implements Agent.
func (a *ChatAgent) Description() string {
	return "General conversation with topic-aware context"
}

// Process implements Agent.
func (a *ChatAgent) Process(tc *core.TurnContext, st *core.State) (*core.StructuredAgentResult, error) {
	started := time.Now()
	query := st.OriginalQuery()

	msgs := a.exec.PrepareMessages(tc, st, a.opts.SystemPrompt, SeparatedContext)

	initial, err := a.exec.backend.Complete(tc.Context, model.Request{
		Messages:    msgs,
		Tools:       a.exec.toolDefinitions(a.Kind()),
		Temperature: a.exec.opts.Temperature,
	})
	if err != nil {
		if tc.Err() != nil {
			return nil, tc.Err()
		}
		result := ErrorResult(a.Kind(),
			"I couldn't reach the language model. Please try again in a moment.",
			"model_error", err.Error(),
			[]string{"Retry the request"}, started)
		Apply(st, result)
		return result, nil
	}

	loop, err := a.exec.RunToolLoop(tc, st, a.Kind(), msgs, initial)
	if err != nil {
		if tc.Err() != nil {
			return nil, tc.Err()
		}
		result := ErrorResult(a.Kind(),
			"The conversation turn failed partway through.",
			"model_error", err.Error(),
			[]string{"Retry the request"}, started)
		Apply(st, result)
		return result, nil
	}

	parsed := parser.ParseAgentResult(a.Kind(), loop.FinalText)
	if parsed.TaskStatus == core.TaskError {
		result := ErrorResult(a.Kind(), parsed.Response, parsed.ErrorState.ErrorType, parsed.ErrorState.Message,
			[]string{"Retry the request"}, started)
		Apply(st, result)
		return result, nil
	}

	result := SuccessResult(a.Kind(), parsed.Response, loop.ToolsUsed, started)
	result.AdditionalData = parsed.AdditionalData

	st.PushTopic(query)
	Apply(st, result)
	return result, nil
}
