// Package services holds the outbound integrations agents call into:
// text generation, web search, page scraping, media generation, and
// email. Every integration is optional. A Bundle with a nil field
// answers ErrNotEnabled so command handlers can reply "not enabled"
// instead of failing, and the MockGenerator keeps agent replies working
// with no LLM configured at all.
package services
