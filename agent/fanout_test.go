package agent

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/model"
)

func TestSummarizeAll_OrderPreserved(t *testing.T) {
	backend := model.NewMockBackend()
	exec := NewExecutor(backend, nil)

	docs := make([]Document, 5)
	for i := range docs {
		docs[i] = Document{
			ID:    fmt.Sprintf("d%d", i),
			Title: fmt.Sprintf("Doc %d", i),
			Text:  fmt.Sprintf("body %d", i),
		}
	}

	out := exec.SummarizeAll(turnContext(nil), docs, "")

	require.Len(t, out, 5)
	// Results joined in input order regardless of completion order.
	for i, s := range out {
		assert.Equal(t, fmt.Sprintf("d%d", i), s.DocumentID)
		assert.False(t, s.Failed())
		assert.NotEmpty(t, s.Text)
	}
	assert.Len(t, backend.Requests(), 5)
}

func TestSummarizeAll_FailureIsolation(t *testing.T) {
	// One scripted failure; the unscripted fallback serves the others.
	backend := model.NewMockBackend().EnqueueError(errors.New("timeout"))
	exec := NewExecutor(backend, nil)

	docs := []Document{
		{ID: "a", Title: "A", Text: "alpha"},
		{ID: "b", Title: "B", Text: "beta"},
		{ID: "c", Title: "C", Text: "gamma"},
	}

	out := exec.SummarizeAll(turnContext(nil), docs, "Summarize briefly.")

	require.Len(t, out, 3)
	failed := 0
	for _, s := range out {
		if s.Failed() {
			failed++
			assert.Equal(t, "summary unavailable", s.Text)
			assert.Contains(t, s.Err, "timeout")
		} else {
			assert.NotEmpty(t, s.Text)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestSummarizeAll_Empty(t *testing.T) {
	exec := NewExecutor(model.NewMockBackend(), nil)
	assert.Empty(t, exec.SummarizeAll(turnContext(nil), nil, ""))
}
