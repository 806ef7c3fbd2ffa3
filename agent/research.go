package agent

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/parser"
)

const defaultResearchPrompt = `You are a research assistant. Answer the user's
question using the provided tools: search local documents first, and use web
search only when local results are insufficient.

Respond with a JSON object:
{"task_status": "complete", "response": "<your answer>", "citations": [...]}

Cite every source you rely on.`

// ResearchAgentOptions configures the research agent.
type ResearchAgentOptions struct {
	// SystemPrompt overrides the default research instructions.
	SystemPrompt string

	// RequireWebPermission suspends the turn for user confirmation before any
	// web search when local results are insufficient. Default true.
	RequireWebPermission bool

	// LocalSearchTool and WebSearchTool name the search tools whose shared
	// memory entries feed citation reconciliation.
	LocalSearchTool string
	WebSearchTool   string
}

// ResearchAgent answers questions through tool-backed retrieval: a bounded
// tool loop over local and web search, confidence tracking from result
// counts, citation reconciliation and a permission round-trip before web
// access.
type ResearchAgent struct {
	exec *Executor
	opts ResearchAgentOptions
}

// NewResearchAgent constructs a research agent on the shared execution core.
func NewResearchAgent(exec *Executor, optFns ...func(o *ResearchAgentOptions)) *ResearchAgent {
	opts := ResearchAgentOptions{
		SystemPrompt:         defaultResearchPrompt,
		RequireWebPermission: true,
		LocalSearchTool:      "search_documents",
		WebSearchTool:        "web_search",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ResearchAgent{exec: exec, opts: opts}
}

// Kind implements Agent.
func (a *ResearchAgent) Kind() string { return KindResearch }

// Description implements Agent.
func (a *ResearchAgent) Description() string {
	return "Answers questions using document and web search with citations"
}

// Process implements Agent. A turn either completes with a cited answer,
// suspends for web-search permission, or reports a terminal error; the
// original query survives a permission round-trip via the pending task.
func (a *ResearchAgent) Process(tc *core.TurnContext, st *core.State) (*core.StructuredAgentResult, error) {
	started := time.Now()

	webApproved := false
	if _, pending := st.PendingTask(); pending && core.IsConfirmationReply(st.CurrentQuery) {
		granted := st.ConfirmationGranted()
		pt, _ := st.TakePendingTask()
		if !granted {
			result := SuccessResult(a.Kind(),
				"Understood, I won't search the web. Let me know if you'd like me to try a different question.",
				nil, started)
			Apply(st, result)
			return result, nil
		}
		// The reply answered the prompt; the original task becomes the
		// working query again.
		st.SetCurrentQuery(pt.Query)
		webApproved = true
	}

	query := st.OriginalQuery()
	a.detectFilters(st, query)

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
			[]string{"Retry the request", "Check backend connectivity"}, started)
		Apply(st, result)
		return result, nil
	}

	loop, err := a.exec.RunToolLoop(tc, st, a.Kind(), msgs, initial)
	if err != nil {
		if tc.Err() != nil {
			return nil, tc.Err()
		}
		result := ErrorResult(a.Kind(),
			"The research run failed partway through. Partial findings were kept.",
			"model_error", err.Error(),
			[]string{"Retry the request"}, started)
		Apply(st, result)
		return result, nil
	}

	suff := st.Sufficiency()
	if suff.WebSearchNeeded && !webApproved && a.opts.RequireWebPermission {
		prompt := fmt.Sprintf(
			"I found only %d local result(s) for %q, which may not be enough for a reliable answer. May I search the web?",
			suff.LocalResultCount, query)
		result := PermissionResult(a.Kind(), prompt, query, "web search requires confirmation", started)
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

	citations := parsed.Citations
	if len(citations) == 0 {
		citations = a.reconcileFromMemory(st)
	}

	response := parsed.Response
	if suff.LocalResultCount > 0 && suff.ConfidenceLevel < core.ConfidenceGood {
		response += "\n\nNote: this answer is based on limited sources and may be incomplete."
	}

	result := SuccessResult(a.Kind(), response, loop.ToolsUsed, started)
	result.Citations = citations
	result.AdditionalData = map[string]any{
		"confidence":        suff.ConfidenceLevel,
		"local_results":     suff.LocalResultCount,
		"web_search_needed": suff.WebSearchNeeded,
	}
	for k, v := range parsed.AdditionalData {
		result.AdditionalData[k] = v
	}

	st.SetFinding("last_research_query", query)
	st.PushTopic(query)
	Apply(st, result)
	return result, nil
}

// reconcileFromMemory rebuilds citations from the raw search results recorded
// during the tool loop when the model's own citation list was empty.
func (a *ResearchAgent) reconcileFromMemory(st *core.State) []core.Citation {
	mem := st.MemorySnapshot()

	var local strings.Builder
	for _, entry := range mem.SearchResults[a.opts.LocalSearchTool] {
		switch v := entry.(type) {
		case string:
			local.WriteString(v)
			local.WriteString("\n")
		case map[string]any:
			if s, ok := v["text"].(string); ok {
				local.WriteString(s)
				local.WriteString("\n")
			}
		}
	}

	var web []parser.WebResult
	for _, entry := range mem.SearchResults[a.opts.WebSearchTool] {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		r := parser.WebResult{}
		r.Title, _ = m["title"].(string)
		r.URL, _ = m["url"].(string)
		r.Author, _ = m["author"].(string)
		r.Date, _ = m["date"].(string)
		r.Snippet, _ = m["snippet"].(string)
		if r.Title == "" && r.URL == "" {
			continue
		}
		web = append(web, r)
	}

	return parser.ReconcileCitations(local.String(), web)
}

var yearFilterPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// detectFilters records simple query constraints into shared memory so later
// turns can surface them as conversation intelligence.
func (a *ResearchAgent) detectFilters(st *core.State, query string) {
	if year := yearFilterPattern.FindString(query); year != "" {
		st.SetDetectedFilter("year", year)
	}
	lower := strings.ToLower(query)
	if strings.Contains(lower, "recent") || strings.Contains(lower, "latest") {
		st.SetDetectedFilter("recency", "recent")
	}
}
