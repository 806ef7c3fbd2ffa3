package parser

import (
	"regexp"
	"strings"

	"github.com/parley-ai/parley/core"
)

// MaxCitations caps the reconciled source list length.
const MaxCitations = 10

// localEntryPattern delimits one local-document search hit:
//
//	[3] The Winter Campaign (score: 0.82, collection: books)
//
// followed by excerpt lines until the next entry header.
var localEntryPattern = regexp.MustCompile(`(?m)^\[(\d+)\]\s*(.+?)\s*\(score:\s*([0-9.]+),\s*collection:\s*([^)]+)\)\s*$`)

// WebResult is one entry of a web-search JSON payload after decoding.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Author  string `json:"author,omitempty"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// ReconcileCitations merges local document results (semi-structured text
// form) and web results (decoded JSON form) into one normalized, numbered
// source list. Duplicates are collapsed by title/URL identity; ids are
// sequential starting at 1; the list is capped at MaxCitations. Local
// sources come first, preserving each input's order.
func ReconcileCitations(localText string, webResults []WebResult) []core.Citation {
	var out []core.Citation
	seen := map[string]bool{}

	add := func(c core.Citation) {
		if len(out) >= MaxCitations {
			return
		}
		key := dedupKey(c)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		c.ID = len(out) + 1
		out = append(out, c)
	}

	for _, c := range ParseLocalResults(localText) {
		add(c)
	}

	for _, w := range webResults {
		add(core.Citation{
			Title:   w.Title,
			Type:    core.CitationWebpage,
			URL:     w.URL,
			Author:  w.Author,
			Date:    w.Date,
			Excerpt: w.Snippet,
		})
	}

	return out
}

// ParseLocalResults decodes the semi-structured local-document result text
// into unnumbered citations. Entries the pattern does not match are skipped;
// a malformed payload yields an empty list, never an error.
func ParseLocalResults(text string) []core.Citation {
	matches := localEntryPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]core.Citation, 0, len(matches))
	for i, m := range matches {
		title := strings.TrimSpace(text[m[4]:m[5]])
		collection := strings.TrimSpace(text[m[8]:m[9]])

		// Excerpt runs from the end of this header to the next header.
		excerptEnd := len(text)
		if i+1 < len(matches) {
			excerptEnd = matches[i+1][0]
		}
		excerpt := strings.TrimSpace(text[m[1]:excerptEnd])

		ctype := core.CitationDocument
		if strings.EqualFold(collection, "books") || strings.EqualFold(collection, "book") {
			ctype = core.CitationBook
		}

		out = append(out, core.Citation{
			Title:   title,
			Type:    ctype,
			Excerpt: excerpt,
		})
	}

	return out
}

// dedupKey derives the identity key for a citation: URL when present
// (case-insensitive, trailing slash ignored), else normalized title.
func dedupKey(c core.Citation) string {
	if c.URL != "" {
		return "url:" + strings.TrimRight(strings.ToLower(c.URL), "/")
	}
	if c.Title != "" {
		return "title:" + strings.ToLower(strings.TrimSpace(c.Title))
	}
	return ""
}
