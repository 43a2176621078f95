// Package agents maintains the registry of agent profiles mentionable from
// posts.
//
// Profiles carry the identity and prompt-shaping fields (role, policy,
// style) handed to the reply generator. The registry ships with built-in
// defaults and can load an agents.toml file at startup or at runtime.
//
// # Reload Semantics
//
// The registry stores its state behind an atomic.Pointer snapshot. Reload
// builds a complete new snapshot and swaps the pointer, so a parse that
// started before the reload keeps resolving handles against the old set —
// there is no window where a reader sees a partially updated registry.
//
// Disabled profiles stay listable (for the /agents surface) but are
// invisible to Get/Has, which is what makes mentions of disabled agents
// silently inert.
package agents
