// Package anchor resolves a quoted anchor text to a span inside a document
// under edit. Resolution runs an explicit ordered chain of matcher
// strategies, each returning a span plus a confidence score; the first match
// meeting the caller's confidence threshold wins. Degrading strategies let
// an edit survive whitespace drift, partial quoting and paraphrase.
package anchor

import (
	"strings"
	"unicode"
)

// Matcher confidence scores, highest strategy first.
const (
	ConfidenceExact      = 1.0
	ConfidenceNormalized = 0.9
	ConfidenceSentence   = 0.75
	ConfidenceKeyPhrase  = 0.5
)

// DefaultThreshold accepts everything down to key-phrase matches.
const DefaultThreshold = 0.5

// Span is a half-open byte range [Start, End) within the document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Match is a successful anchor resolution.
type Match struct {
	Span       Span    `json:"span"`
	Confidence float64 `json:"confidence"`
	Strategy   string  `json:"strategy"`
}

// Matcher is one strategy in the resolution chain.
type Matcher interface {
	// Name identifies the strategy for diagnostics.
	Name() string

	// Match locates anchor within doc, reporting ok=false when the strategy
	// does not apply.
	Match(doc, anchor string) (Span, bool)

	// Confidence is the fixed score this strategy assigns to its matches.
	Confidence() float64
}

// Chain is an ordered first-match-wins sequence of matchers.
type Chain struct {
	matchers []Matcher
}

// NewChain builds a chain from the given matchers, tried in order.
func NewChain(matchers ...Matcher) *Chain {
	return &Chain{matchers: matchers}
}

// DefaultChain returns the standard resolution order: exact, whitespace
// normalized, sentence boundary, key phrase.
func DefaultChain() *Chain {
	return NewChain(
		ExactMatcher{},
		NormalizedMatcher{},
		SentenceMatcher{},
		KeyPhraseMatcher{},
	)
}

// Resolve runs the chain against doc. The first strategy producing a match
// with confidence >= threshold wins. Returns ok=false when no strategy
// qualifies; anchor resolution failure is a validation condition for the
// caller to explain, never a panic.
func (c *Chain) Resolve(doc, anchor string, threshold float64) (Match, bool) {
	if strings.TrimSpace(anchor) == "" || doc == "" {
		return Match{}, false
	}

	for _, m := range c.matchers {
		if m.Confidence() < threshold {
			continue
		}
		if span, ok := m.Match(doc, anchor); ok {
			return Match{Span: span, Confidence: m.Confidence(), Strategy: m.Name()}, true
		}
	}

	return Match{}, false
}

// ExactMatcher finds the anchor verbatim.
type ExactMatcher struct{}

// Name implements Matcher.
func (ExactMatcher) Name() string { return "exact" }

// Confidence implements Matcher.
func (ExactMatcher) Confidence() float64 { return ConfidenceExact }

// Match implements Matcher.
func (ExactMatcher) Match(doc, anchor string) (Span, bool) {
	idx := strings.Index(doc, anchor)
	if idx < 0 {
		return Span{}, false
	}
	return Span{Start: idx, End: idx + len(anchor)}, true
}

// NormalizedMatcher collapses runs of whitespace on both sides before
// matching, then maps the hit back to original document offsets.
type NormalizedMatcher struct{}

// Name implements Matcher.
func (NormalizedMatcher) Name() string { return "whitespace_normalized" }

// Confidence implements Matcher.
func (NormalizedMatcher) Confidence() float64 { return ConfidenceNormalized }

// Match implements Matcher.
func (NormalizedMatcher) Match(doc, anchor string) (Span, bool) {
	normDoc, offsets := normalizeWithOffsets(doc)
	normAnchor, _ := normalizeWithOffsets(anchor)
	if normAnchor == "" {
		return Span{}, false
	}

	idx := strings.Index(normDoc, normAnchor)
	if idx < 0 {
		return Span{}, false
	}

	start := offsets[idx]
	endNorm := idx + len(normAnchor) - 1
	end := offsets[endNorm] + 1
	return Span{Start: start, End: end}, true
}

// SentenceMatcher splits the anchor into sentences and locates the document
// region spanning from the first found sentence to the last. Useful when the
// model re-quoted an edited passage with small interior changes.
type SentenceMatcher struct{}

// Name implements Matcher.
func (SentenceMatcher) Name() string { return "sentence_boundary" }

// Confidence implements Matcher.
func (SentenceMatcher) Confidence() float64 { return ConfidenceSentence }

// Match implements Matcher.
func (SentenceMatcher) Match(doc, anchor string) (Span, bool) {
	sentences := splitSentences(anchor)
	if len(sentences) == 0 {
		return Span{}, false
	}

	first := strings.TrimSpace(sentences[0])
	last := strings.TrimSpace(sentences[len(sentences)-1])
	if first == "" || last == "" {
		return Span{}, false
	}

	start := strings.Index(doc, first)
	if start < 0 {
		return Span{}, false
	}

	endIdx := strings.Index(doc[start:], last)
	if endIdx < 0 {
		return Span{}, false
	}
	end := start + endIdx + len(last)

	return Span{Start: start, End: end}, true
}

// KeyPhraseMatcher extracts the longest word run from the anchor and locates
// the containing sentence in the document. Lowest-confidence fallback.
type KeyPhraseMatcher struct{}

// Name implements Matcher.
func (KeyPhraseMatcher) Name() string { return "key_phrase" }

// Confidence implements Matcher.
func (KeyPhraseMatcher) Confidence() float64 { return ConfidenceKeyPhrase }

// Match implements Matcher.
func (KeyPhraseMatcher) Match(doc, anchor string) (Span, bool) {
	phrase := keyPhrase(anchor, 5)
	if phrase == "" {
		return Span{}, false
	}

	idx := strings.Index(strings.ToLower(doc), strings.ToLower(phrase))
	if idx < 0 {
		return Span{}, false
	}

	// Expand to the sentence containing the phrase.
	start := idx
	for start > 0 && !isSentenceEnd(doc[start-1]) {
		start--
	}
	for start < len(doc) && unicode.IsSpace(rune(doc[start])) {
		start++
	}

	end := idx + len(phrase)
	for end < len(doc) && !isSentenceEnd(doc[end]) {
		end++
	}
	if end < len(doc) {
		end++ // include the terminator
	}

	return Span{Start: start, End: end}, true
}

// normalizeWithOffsets lowercase-preserving whitespace collapse; offsets[i]
// is the original index of normalized byte i.
func normalizeWithOffsets(s string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(s))
	inSpace := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if unicode.IsSpace(rune(c)) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
			offsets = append(offsets, i-1)
		}
		inSpace = false
		b.WriteByte(c)
		offsets = append(offsets, i)
	}

	return b.String(), offsets
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if isSentenceEnd(text[i]) {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}

// keyPhrase returns up to maxWords consecutive words from the anchor,
// skipping a leading stop-word-only prefix by preferring the longest words.
func keyPhrase(anchor string, maxWords int) string {
	words := strings.Fields(anchor)
	if len(words) == 0 {
		return ""
	}
	if len(words) > maxWords {
		// Middle window: edges of a quote are the most likely to drift.
		start := (len(words) - maxWords) / 2
		words = words[start : start+maxWords]
	}
	return strings.Join(words, " ")
}
