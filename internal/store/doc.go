// Package store provides the in-memory repository for posts, threads, and
// agent runs.
//
// # Data Models
//
//   - Post: a timeline message; root posts have ThreadID == ID, replies
//     inherit the parent's thread
//   - AgentRun: lifecycle record for one agent's response to one post
//   - Thread: a root post plus its replies in creation order
//
// # Run State Machine
//
// AgentRun status moves strictly forward:
//
//	QUEUED -> RUNNING -> DONE
//	QUEUED -> RUNNING -> ERROR
//
// Transition enforces the edges and panics on violation — only the
// dispatcher drives transitions, so a bad edge is a programming error.
// EndedAt is set exactly when a run leaves RUNNING. A TransitionFunc hook
// observes every transition, which is how the audit recorder and metrics
// see run lifecycle events without the store depending on them.
//
// # Concurrency
//
// MemoryStore guards all state with a single mutex. Dispatch jobs run on
// preemptive goroutines, so every read-modify-write sequence (thread
// derivation, like bookkeeping, run transitions) completes under the lock.
// Reads return snapshots of runs to keep callers from observing later
// mutations.
package store
