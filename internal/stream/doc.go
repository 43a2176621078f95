// Package stream surfaces per-thread activity as an ordered event feed.
//
// An observer is a polling reconciliation loop, not a subscription: on
// every interval it re-reads the thread's runs and posts, diffs them
// against what it already reported, and emits agent_run,
// agent_status_change, and new_post events plus a heartbeat. The feed
// ends when the consumer cancels its context, or with one error event
// if a poll fails.
package stream
