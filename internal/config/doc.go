// Package config handles configuration loading for agentboard.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${AGENTBOARD_JWT_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	agents:
//	  generate_timeout: "30s"
//	  media_timeout: "2m"
//	stream:
//	  poll_interval: "2s"
//
// # Services
//
// Each outbound service (llm, search, scrape, media, email) is enabled
// by the presence of its api_key. Everything about a missing key is
// graceful: the matching slash-command replies "not enabled", and reply
// generation falls back to the built-in offline generator.
package config
