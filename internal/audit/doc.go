// Package audit records every significant action the board takes.
//
// The in-memory Recorder is authoritative: queries, stats, and exports
// are always answered from memory. When a SQLite backend is configured,
// each entry is also queued for an asynchronous durable write. The queue
// is bounded; under sustained backend slowness the oldest pending write
// is dropped and counted, and the caller is never blocked. Losing a
// durable copy is acceptable, blocking a request path is not.
package audit
