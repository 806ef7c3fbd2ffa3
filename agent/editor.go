package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parley-ai/parley/anchor"
	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/parser"
)

const defaultEditorPrompt = `You are a precise text editor. Produce an edit
plan for the user's request against the document provided.

Respond with a JSON object only:
{"operations": [{"operation": "replace", "anchor": "<exact text from the document>", "replacement": "<new text>"}], "response": "<short summary of the edits>"}

The anchor must quote text that actually appears in the document. Never
invent text that is not there.`

// EditOperation is one step of a model-produced edit plan.
type EditOperation struct {
	Operation   string `json:"operation"`
	Anchor      string `json:"anchor"`
	Replacement string `json:"replacement"`
}

// EditorAgentOptions configures the editor agent.
type EditorAgentOptions struct {
	// SystemPrompt overrides the default editing instructions.
	SystemPrompt string

	// Matchers resolves edit anchors against the document. Defaults to the
	// standard chain: exact, whitespace-normalized, sentence, key-phrase.
	Matchers *anchor.Chain

	// AnchorThreshold is the minimum matcher confidence accepted.
	AnchorThreshold float64
}

// EditorAgent applies model-planned text edits to the document held in
// shared memory. Anchors are resolved through a confidence-graded matcher
// chain; unresolvable anchors fail the turn with user-actionable guidance
// rather than guessing at a location.
type EditorAgent struct {
	exec *Executor
	opts EditorAgentOptions
}

// NewEditorAgent constructs an editor agent on the shared execution core.
func NewEditorAgent(exec *Executor, optFns ...func(o *EditorAgentOptions)) *EditorAgent {
	opts := EditorAgentOptions{
		SystemPrompt:    defaultEditorPrompt,
		Matchers:        anchor.DefaultChain(),
		AnchorThreshold: anchor.DefaultThreshold,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &EditorAgent{exec: exec, opts: opts}
}

// Kind implements Agent.
func (a *EditorAgent) Kind() string { return KindEditor }

// Description implements Agent.
func (a *EditorAgent) Description() string {
	return "Applies anchored text edits to the document under edit"
}

// Process implements Agent.
func (a *EditorAgent) Process(tc *core.TurnContext, st *core.State) (*core.StructuredAgentResult, error) {
	started := time.Now()

	ec, ok := st.GetEditorContext()
	if !ok {
		result := ErrorResult(a.Kind(),
			"There is no document loaded for editing.",
			"validation_error", "editor context missing",
			[]string{"Open a document before requesting edits"}, started)
		Apply(st, result)
		return result, nil
	}

	msgs := a.exec.PrepareMessages(tc, st, a.opts.SystemPrompt, FullContext)
	msgs = append(msgs, core.NewSystemMessage("Document under edit:\n\n"+ec.Text))

	resp, err := a.exec.backend.Complete(tc.Context, model.Request{
		Messages:    msgs,
		ToolChoice:  "none",
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

	plan, summary, planErr := decodeEditPlan(resp.Content)
	if planErr != "" {
		result := ErrorResult(a.Kind(),
			"I couldn't turn that request into a valid edit plan: "+planErr,
			"validation_error", planErr,
			[]string{"Rephrase the edit request", "Quote the exact text you want changed"}, started)
		Apply(st, result)
		return result, nil
	}

	newText, applied, strategies, applyErr := a.applyPlan(ec.Text, plan)
	if applyErr != "" {
		result := ErrorResult(a.Kind(),
			applyErr,
			"anchor_not_found", applyErr,
			[]string{"Quote the exact text from the document you want changed"}, started)
		Apply(st, result)
		return result, nil
	}

	st.SetEditorContext(core.EditorContext{DocumentID: ec.DocumentID, Text: newText})

	if summary == "" {
		summary = fmt.Sprintf("Applied %d edit(s) to the document.", applied)
	}
	result := SuccessResult(a.Kind(), summary, nil, started)
	result.AdditionalData = map[string]any{
		"operations_applied": applied,
		"anchor_strategies":  strategies,
		"document_id":        ec.DocumentID,
	}
	Apply(st, result)
	return result, nil
}

// decodeEditPlan extracts and validates the edit plan from model output.
// Returns a user-facing problem description when the plan is unusable.
func decodeEditPlan(raw string) ([]EditOperation, string, string) {
	obj, ok := parser.Extract(raw)
	if !ok {
		return nil, "", "the response did not contain an edit plan"
	}

	summary, _ := obj["response"].(string)

	rawOps, ok := obj["operations"].([]any)
	if !ok || len(rawOps) == 0 {
		return nil, summary, "the edit plan contained no operations"
	}

	var ops []EditOperation
	for i, item := range rawOps {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, summary, fmt.Sprintf("operation %d is not an object", i+1)
		}

		op := EditOperation{Operation: "replace"}
		if s, ok := m["operation"].(string); ok && s != "" {
			op.Operation = s
		}
		op.Anchor, _ = m["anchor"].(string)
		op.Replacement, _ = m["replacement"].(string)

		if op.Operation != "replace" {
			return nil, summary, fmt.Sprintf("operation %d uses unsupported kind %q", i+1, op.Operation)
		}
		if strings.TrimSpace(op.Anchor) == "" {
			return nil, summary, fmt.Sprintf("operation %d is missing the anchor text to locate", i+1)
		}

		ops = append(ops, op)
	}

	return ops, summary, ""
}

// resolvedEdit pairs a located span with its replacement.
type resolvedEdit struct {
	span        anchor.Span
	replacement string
	strategy    string
}

// applyPlan resolves every anchor, then splices replacements back to front so
// earlier spans stay valid. All-or-nothing: one unresolvable anchor rejects
// the whole plan. Heading prefixes lost by a replacement are restored.
func (a *EditorAgent) applyPlan(doc string, ops []EditOperation) (string, int, []string, string) {
	edits := make([]resolvedEdit, 0, len(ops))
	var strategies []string

	for _, op := range ops {
		m, ok := a.opts.Matchers.Resolve(doc, op.Anchor, a.opts.AnchorThreshold)
		if !ok {
			return "", 0, nil, fmt.Sprintf("I couldn't find this text in the document: %q", snippet(op.Anchor, 80))
		}

		original := doc[m.Span.Start:m.Span.End]
		edits = append(edits, resolvedEdit{
			span:        m.Span,
			replacement: parser.RepairHeading(original, op.Replacement),
			strategy:    m.Strategy,
		})
		strategies = append(strategies, m.Strategy)
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].span.Start > edits[j].span.Start })

	for i := 1; i < len(edits); i++ {
		if edits[i].span.End > edits[i-1].span.Start {
			return "", 0, nil, "two edits target overlapping text; please make the requests one at a time"
		}
	}

	for _, e := range edits {
		doc = doc[:e.span.Start] + e.replacement + doc[e.span.End:]
	}

	return doc, len(edits), strategies, ""
}

func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
