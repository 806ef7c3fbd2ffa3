// Package core defines the shared data model threaded through every agent
// invocation: the conversation State with its typed shared-memory blackboard,
// role-tagged messages, tool-call records, the structured agent result
// envelope and the per-turn TurnContext carrying injected services.
//
// The central contract is State: message history is append-only and
// insertion-ordered, shared-memory writes are additive and namespaced per
// producer (enforced structurally via typed sub-fields rather than by
// convention), and AgentResults holds only the most recent agent output.
package core
