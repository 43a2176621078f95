// Package dispatch is the scheduling core: it turns one incoming post
// into zero or more concurrent background jobs and drives every agent
// run through its state machine.
//
// ProcessPost is synchronous only up to record creation. The post and
// its QUEUED runs exist before any job starts, so callers never observe
// a job's side effects before the triggering post itself. Jobs run on a
// supervised pool with a handle per job, are independent of each other,
// and contain their own failures: the worst outcome of any job is a
// visibly labeled reply post in the thread. A run that ends in ERROR is
// terminal; there is no retry.
package dispatch
