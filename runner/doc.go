// Package runner coordinates orchestration turns: it loads conversation
// state, records the user's input, dispatches to the registered agent,
// persists the updated state, and returns the turn's structured result.
package runner
