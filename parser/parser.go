// Package parser extracts structured JSON objects from free-form LLM output,
// tolerating the common failure modes: code fences, prose wrapping, stray
// control characters and outright malformed JSON. Extraction never fails
// upward: when every strategy is exhausted a deterministic fallback result
// is constructed instead.
package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/parley-ai/parley/core"
)

// Extract attempts to recover a single JSON object from raw model text.
// Strategies are tried in order, first success wins:
//
//  1. direct parse of the trimmed text
//  2. fenced ```json ... ``` or generic ``` ... ``` block
//  3. balanced-brace scan from the first '{'
//
// Returns (nil, false) when no strategy yields a valid object. Control
// characters (except newline and tab) are stripped first; models
// occasionally emit stray control bytes that hard-fail encoding/json.
func Extract(raw string) (map[string]any, bool) {
	text := strings.TrimSpace(SanitizeControlChars(raw))
	if text == "" {
		return nil, false
	}

	if obj, ok := tryParse(text); ok {
		return obj, true
	}

	if fenced, ok := extractFenced(text); ok {
		if obj, ok := tryParse(fenced); ok {
			return obj, true
		}
	}

	if span, ok := balancedBraceSpan(text); ok {
		if obj, ok := tryParse(span); ok {
			return obj, true
		}
	}

	return nil, false
}

// ParseAgentResult extracts a domain result object from raw model text,
// falling back to a deterministic minimal result when extraction fails. It
// never returns an error: arbitrary input always yields a structurally valid
// StructuredAgentResult with status complete or error.
func ParseAgentResult(agentKind, raw string) *core.StructuredAgentResult {
	now := time.Now().UTC()

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &core.StructuredAgentResult{
			AgentKind:  agentKind,
			TaskStatus: core.TaskError,
			Response:   "The model returned an empty response.",
			ErrorState: &core.ErrorState{
				ErrorType: "empty_response",
				Message:   "model output contained no content",
				Timestamp: now,
			},
			Timestamp: now,
		}
	}

	obj, ok := Extract(raw)
	if !ok {
		// Fallback: treat the raw text as the answer itself.
		return &core.StructuredAgentResult{
			AgentKind:  agentKind,
			TaskStatus: core.TaskComplete,
			Response:   trimmed,
			Timestamp:  now,
		}
	}

	result := &core.StructuredAgentResult{
		AgentKind:  agentKind,
		TaskStatus: core.TaskComplete,
		Timestamp:  now,
	}

	if s, ok := obj["task_status"].(string); ok {
		if status := core.TaskStatus(s); status.Valid() {
			result.TaskStatus = status
		}
	}
	if s, ok := obj["response"].(string); ok {
		result.Response = s
	}
	if result.Response == "" {
		// Preserve the answer even when the model misnamed the field.
		for _, key := range []string{"answer", "text", "content"} {
			if s, ok := obj[key].(string); ok && s != "" {
				result.Response = s
				break
			}
		}
	}

	if cites, ok := obj["citations"].([]any); ok {
		result.Citations = decodeCitations(cites)
	}

	extra := map[string]any{}
	for k, v := range obj {
		switch k {
		case "task_status", "response", "citations":
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		result.AdditionalData = extra
	}

	return result
}

// SanitizeControlChars strips ASCII control characters except newline and
// tab. Carriage returns are kept so CRLF output survives.
func SanitizeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// tryParse decodes candidate text into an object, using gjson as a cheap
// validity pre-check before committing to encoding/json.
func tryParse(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !gjson.Valid(text) {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// extractFenced pulls the contents of the first ```json (or generic ```)
// fence out of the text.
func extractFenced(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		rest := text[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end]), true
	}
	return "", false
}

// balancedBraceSpan locates the first '{' and scans forward counting brace
// depth to find the matching '}'. Quote state is tracked so braces inside
// string literals do not shift the depth, but this remains a heuristic over
// malformed input, not a full JSON tokenizer: unbalanced quotes in broken
// output can still misidentify the boundary. The candidate is validated
// before use, so a bad span degrades to the fallback path rather than a
// wrong parse.
func balancedBraceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

func decodeCitations(raw []any) []core.Citation {
	var out []core.Citation
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		c := core.Citation{}
		if id, ok := m["id"].(float64); ok {
			c.ID = int(id)
		}
		c.Title, _ = m["title"].(string)
		if t, ok := m["type"].(string); ok {
			c.Type = core.CitationType(t)
		}
		c.URL, _ = m["url"].(string)
		c.Author, _ = m["author"].(string)
		c.Date, _ = m["date"].(string)
		c.Excerpt, _ = m["excerpt"].(string)
		if c.Title == "" && c.URL == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
