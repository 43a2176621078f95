// ABOUTME: Package documentation for Prometheus collectors
// ABOUTME: All collectors are package-level and registered via promauto

// Package metrics holds the process-wide Prometheus collectors.
package metrics
