package agent

import (
	"fmt"
	"strings"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
	"github.com/parley-ai/parley/parser"
)

// Topic relationship classifications. NEW_TOPIC is the safe default: when
// classification cannot be completed the current query is treated as an
// unrelated fresh topic with no carried context.
const (
	TopicContinuation = "CONTINUATION"
	TopicRelated      = "RELATED"
	TopicNewTopic     = "NEW_TOPIC"
)

// maxTopicCandidates bounds how many recent topics are offered to the
// classifier.
const maxTopicCandidates = 5

// TopicAnalysis is the outcome of classifying the current query against
// recent conversation topics.
type TopicAnalysis struct {
	Relationship    string `json:"relationship"`
	RelevantContext string `json:"relevant_context"`
}

// AnalyzeTopic classifies the current query against recent topic history
// using the chat backend. Any failure (no backend, model error, unparseable
// output, unknown label) degrades to NEW_TOPIC with empty context; topic
// analysis must never fail a turn.
func (e *Executor) AnalyzeTopic(tc *core.TurnContext, st *core.State) TopicAnalysis {
	fallback := TopicAnalysis{Relationship: TopicNewTopic}

	topics := st.RecentTopics(maxTopicCandidates)
	if len(topics) == 0 || e.backend == nil {
		return fallback
	}

	var lines []string
	for i, t := range topics {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Summary))
	}

	prompt := fmt.Sprintf(`Classify how the new user query relates to the recent conversation topics.

Recent topics, most recent first:
%s

New query: %q

Respond with a JSON object only:
{"relationship": "CONTINUATION" | "RELATED" | "NEW_TOPIC", "relevant_context": "<prior context useful for answering, or empty>"}

CONTINUATION means the query continues the most recent topic. RELATED means it
connects to an earlier topic. NEW_TOPIC means it is unrelated to all of them.`,
		strings.Join(lines, "\n"), st.OriginalQuery())

	resp, err := e.backend.Complete(tc.Context, model.Request{
		Messages:   []core.Message{core.NewUserMessage(prompt)},
		ToolChoice: "none",
	})
	if err != nil {
		tc.Logger().Warn("topic.analysis.failed", "error", err.Error())
		return fallback
	}

	obj, ok := parser.Extract(resp.Content)
	if !ok {
		tc.Logger().Warn("topic.analysis.unparseable")
		return fallback
	}

	rel, _ := obj["relationship"].(string)
	rel = strings.ToUpper(strings.TrimSpace(rel))
	switch rel {
	case TopicContinuation, TopicRelated, TopicNewTopic:
	default:
		return fallback
	}

	out := TopicAnalysis{Relationship: rel}
	if rel != TopicNewTopic {
		out.RelevantContext, _ = obj["relevant_context"].(string)
	}
	return out
}
