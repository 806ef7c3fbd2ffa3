package agent

import (
	"fmt"
	"sync"

	"github.com/parley-ai/parley/core"
	"github.com/parley-ai/parley/model"
)

// Document is one summarization input.
type Document struct {
	ID    string
	Title string
	Text  string
}

// Summary is one summarization outcome. Failed entries carry the error text
// in Err and a placeholder in Text; a failure never hides sibling results.
type Summary struct {
	DocumentID string
	Title      string
	Text       string
	Err        string
}

// Failed reports whether this document's summarization failed.
func (s Summary) Failed() bool { return s.Err != "" }

// SummarizeAll summarizes every document concurrently and joins the results
// in input order. Per-document failures are isolated: each failed entry is
// marked and the rest are returned normally.
func (e *Executor) SummarizeAll(tc *core.TurnContext, docs []Document, instructions string) []Summary {
	if instructions == "" {
		instructions = "Summarize the document in a few sentences, keeping concrete facts and names."
	}

	out := make([]Summary, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc Document) {
			defer wg.Done()
			out[i] = e.summarizeOne(tc, doc, instructions)
		}(i, doc)
	}
	wg.Wait()

	return out
}

func (e *Executor) summarizeOne(tc *core.TurnContext, doc Document, instructions string) (s Summary) {
	s = Summary{DocumentID: doc.ID, Title: doc.Title}

	defer func() {
		if r := recover(); r != nil {
			s.Text = "summary unavailable"
			s.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	prompt := fmt.Sprintf("%s\n\nTitle: %s\n\n%s", instructions, doc.Title, doc.Text)
	resp, err := e.backend.Complete(tc.Context, model.Request{
		Messages:   []core.Message{core.NewUserMessage(prompt)},
		ToolChoice: "none",
	})
	if err != nil {
		tc.Logger().Warn("summarize.failed", "document_id", doc.ID, "error", err.Error())
		s.Text = "summary unavailable"
		s.Err = err.Error()
		return s
	}

	s.Text = resp.Content
	return s
}
