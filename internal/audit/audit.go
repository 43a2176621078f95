// ABOUTME: Audit event types and records for tracking everything the board does
// ABOUTME: Records who did what to which resource for compliance and debugging

package audit

import (
	"time"
)

// EventType classifies an audit entry.
type EventType string

const (
	EventPostCreate EventType = "post_create"
	EventPostDelete EventType = "post_delete"
	EventPostLike   EventType = "post_like"
	EventPostUnlike EventType = "post_unlike"

	EventAgentRunStart    EventType = "agent_run_start"
	EventAgentRunComplete EventType = "agent_run_complete"
	EventAgentRunError    EventType = "agent_run_error"

	EventMediaVideoGenerate EventType = "media_video_generate"
	EventMediaImageGenerate EventType = "media_image_generate"
	EventMediaSearch        EventType = "media_search"

	EventAuthLogin  EventType = "auth_login"
	EventAuthLogout EventType = "auth_logout"
	EventAuthFailed EventType = "auth_failed"

	EventCommandExecuted EventType = "command_executed"
	EventCommandFailed   EventType = "command_failed"

	EventSystemError   EventType = "system_error"
	EventSystemStartup EventType = "system_startup"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audit record. The in-memory recorder is the
// authoritative copy; the durable backend is best-effort.
type Entry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Type         EventType      `json:"event_type"`
	UserID       string         `json:"user_id,omitempty"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	Status       string         `json:"status"`
	ThreadID     string         `json:"thread_id,omitempty"`
	PostID       string         `json:"post_id,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// MediaAsset records one generated or fetched media artifact.
type MediaAsset struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "image", "video", "search"
	Prompt      string    `json:"prompt"`
	URL         string    `json:"url,omitempty"`
	RequestedBy string    `json:"requested_by"`
	ThreadID    string    `json:"thread_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// ConversationAudit is the per-thread activity rollup the recorder keeps
// as a side effect of logging entries that carry a thread ID.
type ConversationAudit struct {
	ThreadID      string    `json:"thread_id"`
	PostCount     int       `json:"post_count"`
	RunCount      int       `json:"run_count"`
	ErrorCount    int       `json:"error_count"`
	Participants  []string  `json:"participants"`
	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
}

// Query filters and paginates the in-memory log. Zero values mean
// "no constraint" for every field except Limit, which defaults to 100.
type Query struct {
	Type         EventType
	UserID       string
	ResourceType string
	ResourceID   string
	ThreadID     string
	Status       string
	Since        *time.Time
	Until        *time.Time
	Search       string // substring match on resource, post, error message, details
	Limit        int
	Offset       int
}

// Stats summarizes the in-memory log.
type Stats struct {
	TotalEvents   int               `json:"total_events"`
	ByType        map[EventType]int `json:"by_type"`
	ByStatus      map[string]int    `json:"by_status"`
	Failures      int               `json:"failures"`
	MediaAssets   int               `json:"media_assets"`
	Conversations int               `json:"conversations"`
	Dropped       int64             `json:"dropped_durable_writes"`
	OldestEvent   *time.Time        `json:"oldest_event,omitempty"`
	NewestEvent   *time.Time        `json:"newest_event,omitempty"`
}
