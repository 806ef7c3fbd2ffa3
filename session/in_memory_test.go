package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core"
)

func TestInMemoryStore_LoadUnknownReturnsFresh(t *testing.T) {
	s := NewInMemoryStore()

	st, err := s.Load("c1", "u1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "c1", st.ConversationID)
	assert.Equal(t, "u1", st.UserID)
	assert.Empty(t, st.GetMessages())
}

func TestInMemoryStore_SaveAndLoad(t *testing.T) {
	s := NewInMemoryStore()

	st, _ := s.Load("c1", "u1")
	st.AppendMessage(core.NewUserMessage("hello"))
	require.NoError(t, s.Save(st))

	loaded, err := s.Load("c1", "u1")
	require.NoError(t, err)
	require.Len(t, loaded.GetMessages(), 1)

	// Loaded state is isolated from the stored copy.
	loaded.AppendMessage(core.NewUserMessage("local only"))
	again, _ := s.Load("c1", "u1")
	assert.Len(t, again.GetMessages(), 1)
}

func TestInMemoryStore_Delete(t *testing.T) {
	s := NewInMemoryStore()

	st, _ := s.Load("c1", "u1")
	st.AppendMessage(core.NewUserMessage("hello"))
	require.NoError(t, s.Save(st))

	require.NoError(t, s.Delete("c1"))

	fresh, _ := s.Load("c1", "u1")
	assert.Empty(t, fresh.GetMessages())

	// Deleting an unknown conversation is not an error.
	assert.NoError(t, s.Delete("never-existed"))
}
