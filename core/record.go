package core

import "time"

// ToolCallRecord captures one tool invocation within a turn. Records are
// appended to SharedMemory.ToolResults in execution order and never mutated
// after creation. CallID back-references the model-issued ToolCall so the
// record can be correlated with its tool-role message.
type ToolCallRecord struct {
	CallID    string         `json:"call_id"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    any            `json:"result,omitempty"` // JSON-compatible value or string
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewToolCallRecord constructs a successful record with a UTC timestamp.
func NewToolCallRecord(callID, tool string, args map[string]any, result any) ToolCallRecord {
	return ToolCallRecord{
		CallID:    callID,
		Tool:      tool,
		Arguments: args,
		Result:    result,
		Success:   true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFailedToolCallRecord constructs a failure record. The error text is what
// gets fed back to the model, so it should be descriptive, not a stack trace.
func NewFailedToolCallRecord(callID, tool string, args map[string]any, errMsg string) ToolCallRecord {
	return ToolCallRecord{
		CallID:    callID,
		Tool:      tool,
		Arguments: args,
		Success:   false,
		Error:     errMsg,
		Timestamp: time.Now().UTC(),
	}
}
