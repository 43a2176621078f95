// Package auth resolves the identity behind HTTP requests.
//
// Clients authenticate with HS256-signed JWT bearer tokens; the "sub"
// claim is the user ID. Reads work anonymously, while write endpoints
// are gated by the middleware in this package. Failed verification is
// recorded as an auth_failed audit event.
package auth
