// ABOUTME: Package documentation for the HTTP API layer
// ABOUTME: Describes routing, auth wrapping, and response conventions

// Package httpapi exposes the board over HTTP. All endpoints speak JSON
// except the per-thread stream, which is server-sent events. Identity is
// resolved on every request; mutating endpoints reject anonymous callers.
package httpapi
