package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
)

const localResults = `[1] The Winter Campaign (score: 0.82, collection: books)
An account of the northern offensive and its aftermath.

[2] Logistics Quarterly (score: 0.71, collection: documents)
Supply chain notes from the same period.
`

func TestParseLocalResults(t *testing.T) {
	cites := ParseLocalResults(localResults)
	require.Len(t, cites, 2)

	assert.Equal(t, "The Winter Campaign", cites[0].Title)
	assert.Equal(t, core.CitationBook, cites[0].Type)
	assert.Contains(t, cites[0].Excerpt, "northern offensive")

	assert.Equal(t, "Logistics Quarterly", cites[1].Title)
	assert.Equal(t, core.CitationDocument, cites[1].Type)
}

func TestParseLocalResults_Malformed(t *testing.T) {
	assert.Nil(t, ParseLocalResults("no entries here"))
	assert.Nil(t, ParseLocalResults(""))
}

func TestReconcileCitations_MergesAndNumbers(t *testing.T) {
	web := []WebResult{
		{Title: "Campaign retrospective", URL: "https://example.com/campaign", Snippet: "A look back."},
	}

	cites := ReconcileCitations(localResults, web)
	require.Len(t, cites, 3)

	// Local sources first, then web; ids sequential from 1.
	for i, c := range cites {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, core.CitationBook, cites[0].Type)
	assert.Equal(t, core.CitationWebpage, cites[2].Type)
	assert.Equal(t, "https://example.com/campaign", cites[2].URL)
}

func TestReconcileCitations_Dedup(t *testing.T) {
	local := "[1] Shared Title (score: 0.9, collection: documents)\nExcerpt.\n"
	web := []WebResult{
		{Title: "Shared Title"}, // same title as local, no URL
		{Title: "Page", URL: "https://example.com/a/"},
		{Title: "Page again", URL: "HTTPS://EXAMPLE.COM/a"}, // same URL modulo case and slash
	}

	cites := ReconcileCitations(local, web)
	require.Len(t, cites, 2)
	assert.Equal(t, "Shared Title", cites[0].Title)
	assert.Equal(t, "Page", cites[1].Title)
}

func TestReconcileCitations_Cap(t *testing.T) {
	var web []WebResult
	for i := 0; i < 15; i++ {
		web = append(web, WebResult{
			Title: fmt.Sprintf("Result %d", i),
			URL:   fmt.Sprintf("https://example.com/%d", i),
		})
	}

	cites := ReconcileCitations("", web)
	assert.Len(t, cites, MaxCitations)
	assert.Equal(t, MaxCitations, cites[len(cites)-1].ID)
}

func TestReconcileCitations_Empty(t *testing.T) {
	assert.Empty(t, ReconcileCitations("", nil))
}
