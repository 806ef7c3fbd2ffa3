package core

import (
	"strings"
	"sync"
	"time"
)

// Topic summarizes one previously discussed subject, kept in shared memory so
// context preparation can separate the current query from unrelated history.
type Topic struct {
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// PendingTask preserves the user's original request across a
// permission-confirmation sub-turn. When the user's literal reply is "yes"
// the original task intent is recovered from here, never from the reply text.
type PendingTask struct {
	Query       string    `json:"query"`
	AgentKind   string    `json:"agent_kind,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// EditorContext carries the document currently under edit for text-editing
// agents.
type EditorContext struct {
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`
}

// SharedMemory is the cross-agent blackboard within a conversation. Each
// producer writes under its own typed field, making the additive/namespaced
// write discipline structural rather than conventional. Readers must treat
// zero values as empty, never as an error.
type SharedMemory struct {
	SearchResults    map[string][]any `json:"search_results,omitempty"` // keyed by tool name
	ToolResults      []ToolCallRecord `json:"tool_results,omitempty"`   // append-only
	ResearchFindings map[string]any   `json:"research_findings,omitempty"`
	DetectedFilters  map[string]string `json:"detected_filters,omitempty"`
	TopicHistory     []Topic          `json:"topic_history,omitempty"`
	EditorContext    *EditorContext   `json:"editor_context,omitempty"`
	DataSufficiency  DataSufficiency  `json:"data_sufficiency"`
	PendingTask      *PendingTask     `json:"pending_task,omitempty"`
}

// Clone returns a deep copy of the shared memory.
func (m SharedMemory) Clone() SharedMemory {
	c := m

	if m.SearchResults != nil {
		c.SearchResults = make(map[string][]any, len(m.SearchResults))
		for k, v := range m.SearchResults {
			vv := make([]any, len(v))
			copy(vv, v)
			c.SearchResults[k] = vv
		}
	}
	if m.ToolResults != nil {
		c.ToolResults = make([]ToolCallRecord, len(m.ToolResults))
		copy(c.ToolResults, m.ToolResults)
	}
	if m.ResearchFindings != nil {
		c.ResearchFindings = make(map[string]any, len(m.ResearchFindings))
		for k, v := range m.ResearchFindings {
			c.ResearchFindings[k] = v
		}
	}
	if m.DetectedFilters != nil {
		c.DetectedFilters = make(map[string]string, len(m.DetectedFilters))
		for k, v := range m.DetectedFilters {
			c.DetectedFilters[k] = v
		}
	}
	if m.TopicHistory != nil {
		c.TopicHistory = make([]Topic, len(m.TopicHistory))
		copy(c.TopicHistory, m.TopicHistory)
	}
	if m.EditorContext != nil {
		ec := *m.EditorContext
		c.EditorContext = &ec
	}
	if m.PendingTask != nil {
		pt := *m.PendingTask
		c.PendingTask = &pt
	}

	return c
}

// State is the mutable conversation state passed by reference through one
// orchestration turn and persisted between turns. It is safe for concurrent
// access, though within a turn execution is cooperative: no other logic
// mutates the same State while a turn awaits an external call.
//
// Contract:
//   - Messages is append-only within a turn; insertion order is canonical
//   - SharedMemory writes are additive per producer field
//   - AgentResults is overwritten once per turn; history lives in SharedMemory
//   - UserID / ConversationID are immutable within a turn
type State struct {
	ConversationID string                 `json:"conversation_id"`
	UserID         string                 `json:"user_id"`
	CurrentQuery   string                 `json:"current_query"`
	Messages       []Message              `json:"messages"`
	SharedMemory      SharedMemory           `json:"shared_memory"`
	AgentResults      *StructuredAgentResult `json:"agent_results,omitempty"`
	LatestResponse    string                 `json:"latest_response,omitempty"`
	RequiresUserInput bool                   `json:"requires_user_input,omitempty"`
	IsComplete        bool                   `json:"is_complete"`
	Created           time.Time              `json:"created"`
	Updated           time.Time              `json:"updated"`

	mu sync.RWMutex
}

// NewState creates an empty conversation state for the given identifiers.
func NewState(conversationID, userID string) *State {
	now := time.Now().UTC()
	return &State{
		ConversationID: conversationID,
		UserID:         userID,
		Messages:       []Message{},
		Created:        now,
		Updated:        now,
	}
}

// AppendMessage appends to the conversation history. Messages are never
// reordered or removed; after N appends the prior history is a strict prefix.
func (s *State) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, m)
	s.Updated = time.Now().UTC()
}

// GetMessages returns a defensive copy of the full message history.
func (s *State) GetMessages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return msgs
}

// RecentMessages returns a copy of up to the last n messages.
func (s *State) RecentMessages(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.Messages) > n {
		start = len(s.Messages) - n
	}
	msgs := make([]Message, len(s.Messages)-start)
	copy(msgs, s.Messages[start:])
	return msgs
}

// SetCurrentQuery records the user's text input for this turn.
func (s *State) SetCurrentQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentQuery = q
	s.Updated = time.Now().UTC()
}

// confirmationReplies are literal user replies that answer a permission
// prompt rather than stating a task.
var confirmationReplies = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "sure": true,
	"ok": true, "okay": true, "go ahead": true, "proceed": true, "do it": true,
	"no": true, "n": true, "nope": true, "cancel": true, "stop": true,
}

// IsConfirmationReply reports whether text is a bare permission confirmation
// or refusal rather than a task statement.
func IsConfirmationReply(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!?")
	return confirmationReplies[t]
}

// OriginalQuery returns the task the user actually asked for. When the
// current query is a bare confirmation reply and a pending task exists, the
// pending task's query is returned; the system must never lose the original
// task intent across a permission round-trip.
func (s *State) OriginalQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if IsConfirmationReply(s.CurrentQuery) && s.SharedMemory.PendingTask != nil {
		return s.SharedMemory.PendingTask.Query
	}
	return s.CurrentQuery
}

// ConfirmationGranted reports whether the current query affirms the pending
// permission request. Only meaningful when a pending task exists.
func (s *State) ConfirmationGranted() bool {
	t := strings.ToLower(strings.TrimSpace(s.CurrentQuery))
	t = strings.TrimRight(t, ".!?")
	switch t {
	case "yes", "y", "yeah", "yep", "sure", "ok", "okay", "go ahead", "proceed", "do it":
		return true
	}
	return false
}

// SetPendingTask stages a task awaiting user permission.
func (s *State) SetPendingTask(t PendingTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.PendingTask = &t
	s.Updated = time.Now().UTC()
}

// PendingTask returns the staged task awaiting permission, if any.
func (s *State) PendingTask() (PendingTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.SharedMemory.PendingTask == nil {
		return PendingTask{}, false
	}
	return *s.SharedMemory.PendingTask, true
}

// TakePendingTask returns and clears the pending task, if any.
func (s *State) TakePendingTask() (PendingTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SharedMemory.PendingTask == nil {
		return PendingTask{}, false
	}
	t := *s.SharedMemory.PendingTask
	s.SharedMemory.PendingTask = nil
	s.Updated = time.Now().UTC()
	return t, true
}

// RecordToolResult appends a tool-call record and indexes the raw results
// under the tool's name. Both writes are additive.
func (s *State) RecordToolResult(rec ToolCallRecord, results []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.ToolResults = append(s.SharedMemory.ToolResults, rec)
	if len(results) > 0 {
		if s.SharedMemory.SearchResults == nil {
			s.SharedMemory.SearchResults = map[string][]any{}
		}
		s.SharedMemory.SearchResults[rec.Tool] = append(s.SharedMemory.SearchResults[rec.Tool], results...)
	}
	s.Updated = time.Now().UTC()
}

// GetToolResults returns a copy of the append-only tool-call record list.
func (s *State) GetToolResults() []ToolCallRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]ToolCallRecord, len(s.SharedMemory.ToolResults))
	copy(recs, s.SharedMemory.ToolResults)
	return recs
}

// ApplyLocalSufficiency updates the derived confidence signal from a
// local-search round.
func (s *State) ApplyLocalSufficiency(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.DataSufficiency.ApplyLocalResults(count)
	s.Updated = time.Now().UTC()
}

// ApplyWebSufficiency updates the derived confidence signal from a web-search
// round.
func (s *State) ApplyWebSufficiency(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.DataSufficiency.ApplyWebResults(count)
	s.Updated = time.Now().UTC()
}

// Sufficiency returns the current data-sufficiency snapshot.
func (s *State) Sufficiency() DataSufficiency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SharedMemory.DataSufficiency
}

// PushTopic records a discussed topic for later topic-separation analysis.
// Summaries are truncated to 200 characters; the most recent topic is last.
func (s *State) PushTopic(summary string) {
	const maxTopicSummary = 200
	if len(summary) > maxTopicSummary {
		summary = summary[:maxTopicSummary]
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.TopicHistory = append(s.SharedMemory.TopicHistory, Topic{
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	})
	s.Updated = time.Now().UTC()
}

// RecentTopics returns up to n topics, most recent first.
func (s *State) RecentTopics(n int) []Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.SharedMemory.TopicHistory
	if n > len(hist) {
		n = len(hist)
	}
	out := make([]Topic, 0, n)
	for i := len(hist) - 1; i >= len(hist)-n; i-- {
		out = append(out, hist[i])
	}
	return out
}

// SetFinding records a research finding under the producer's key. Additive:
// existing keys from other producers are untouched.
func (s *State) SetFinding(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SharedMemory.ResearchFindings == nil {
		s.SharedMemory.ResearchFindings = map[string]any{}
	}
	s.SharedMemory.ResearchFindings[key] = value
	s.Updated = time.Now().UTC()
}

// GetFinding returns a research finding; missing keys yield (nil, false).
func (s *State) GetFinding(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.SharedMemory.ResearchFindings[key]
	return v, ok
}

// SetDetectedFilter records a detected query filter (e.g. a date range).
func (s *State) SetDetectedFilter(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SharedMemory.DetectedFilters == nil {
		s.SharedMemory.DetectedFilters = map[string]string{}
	}
	s.SharedMemory.DetectedFilters[key] = value
	s.Updated = time.Now().UTC()
}

// SetEditorContext installs the document under edit.
func (s *State) SetEditorContext(ec EditorContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SharedMemory.EditorContext = &ec
	s.Updated = time.Now().UTC()
}

// GetEditorContext returns the document under edit, if any.
func (s *State) GetEditorContext() (EditorContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.SharedMemory.EditorContext == nil {
		return EditorContext{}, false
	}
	return *s.SharedMemory.EditorContext, true
}

// MemorySnapshot returns a deep copy of the shared memory for read-only use.
func (s *State) MemorySnapshot() SharedMemory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SharedMemory.Clone()
}

// SetResult installs the turn's structured result and completion flag. The
// previous AgentResults value is overwritten by design; consumers needing
// history read from SharedMemory.
func (s *State) SetResult(r *StructuredAgentResult, complete bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AgentResults = r
	s.IsComplete = complete
	if r != nil {
		s.LatestResponse = r.Response
		s.RequiresUserInput = r.TaskStatus == TaskPermissionRequired
	}
	s.Updated = time.Now().UTC()
}

// Result returns the most recent agent result, or nil before the first turn.
func (s *State) Result() *StructuredAgentResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AgentResults
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &State{
		ConversationID:    s.ConversationID,
		UserID:            s.UserID,
		CurrentQuery:      s.CurrentQuery,
		Messages:          make([]Message, len(s.Messages)),
		SharedMemory:      s.SharedMemory.Clone(),
		LatestResponse:    s.LatestResponse,
		RequiresUserInput: s.RequiresUserInput,
		IsComplete:        s.IsComplete,
		Created:           s.Created,
		Updated:           s.Updated,
	}
	copy(c.Messages, s.Messages)

	if s.AgentResults != nil {
		r := *s.AgentResults
		c.AgentResults = &r
	}

	return c
}
