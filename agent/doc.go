// Package agent implements the orchestration execution core: context
// preparation, the bounded tool-calling loop, uniform result construction and
// the concrete agents built on top of them. Agents share one conversation
// state per turn and communicate through its typed shared memory; every turn
// ends in exactly one StructuredAgentResult regardless of outcome.
package agent
