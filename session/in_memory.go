// Package session provides StateStore implementations persisting
// conversation state between turns.
package session

import (
	"sync"

	"github.com/parley-ai/parley/core"
)

// InMemoryStore is a volatile StateStore keeping conversation state in a
// process-local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Every state handed out or taken in is
// deep-cloned so callers can never mutate the stored copy directly.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.State
}

// NewInMemoryStore constructs an empty in-memory state store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.State)}
}

// Load returns a clone of the stored state, or a freshly created state when
// the conversation is unknown. Unknown conversations are not an error.
func (s *InMemoryStore) Load(conversationID, userID string) (*core.State, error) {
	s.mu.RLock()
	st, ok := s.states[conversationID]
	s.mu.RUnlock()

	if ok {
		return st.Clone(), nil
	}

	return core.NewState(conversationID, userID), nil
}

// Save stores a clone of the provided state snapshot.
func (s *InMemoryStore) Save(st *core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.ConversationID] = st.Clone()
	return nil
}

// Delete removes a conversation; deleting an unknown id is a no-op.
func (s *InMemoryStore) Delete(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, conversationID)
	return nil
}
