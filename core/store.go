package core

// StateStore persists conversation state between turns. The stored form is an
// opaque JSON-compatible document; implementations must round-trip every
// State field with full fidelity. Load of an unknown conversation returns a
// freshly created State, not an error.
type StateStore interface {
	Load(conversationID, userID string) (*State, error)
	Save(st *State) error
	Delete(conversationID string) error
}
