// ABOUTME: Core data types for posts, threads, and agent runs
// ABOUTME: Defines the repository interface and the run status state machine

package store

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// AuthorKind identifies who authored a post.
type AuthorKind string

const (
	AuthorHuman  AuthorKind = "human"
	AuthorAgent  AuthorKind = "agent"
	AuthorSystem AuthorKind = "system"
)

// RunStatus is the lifecycle state of an AgentRun.
// Transitions are strictly forward-only: QUEUED -> RUNNING -> DONE|ERROR.
type RunStatus string

const (
	RunQueued  RunStatus = "queued"
	RunRunning RunStatus = "running"
	RunDone    RunStatus = "done"
	RunError   RunStatus = "error"
)

// Terminal reports whether the status ends a run's lifecycle.
func (s RunStatus) Terminal() bool {
	return s == RunDone || s == RunError
}

// canTransition defines the legal state machine edges.
func canTransition(from, to RunStatus) bool {
	switch from {
	case RunQueued:
		return to == RunRunning
	case RunRunning:
		return to == RunDone || to == RunError
	default:
		return false
	}
}

// Post is a single message on the timeline. Root posts have ThreadID equal
// to their own ID; replies inherit the parent's ThreadID. Immutable after
// creation except for like-count and soft-delete bookkeeping.
type Post struct {
	ID           string     `json:"id"`
	AuthorKind   AuthorKind `json:"author_kind"`
	AuthorHandle string     `json:"author_handle"`
	Text         string     `json:"text"`
	CreatedAt    time.Time  `json:"created_at"`
	ParentID     *string    `json:"parent_id,omitempty"`
	ThreadID     string     `json:"thread_id"`
	Mentions     []string   `json:"mentions"`
	LikeCount    int        `json:"like_count"`
	Deleted      bool       `json:"-"`
}

// AgentRun is the lifecycle record for one agent's attempt to respond to
// one triggering post. Identity is fixed at creation and never reused.
type AgentRun struct {
	ID            string         `json:"id"`
	AgentHandle   string         `json:"agent_handle"`
	ThreadID      string         `json:"thread_id"`
	TriggerPostID string         `json:"trigger_post_id"`
	Status        RunStatus      `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	EndedAt       *time.Time     `json:"ended_at,omitempty"`
	OutputPostID  *string        `json:"output_post_id,omitempty"`
	InputContext  map[string]any `json:"input_context,omitempty"`
}

// Thread is a root post together with its replies in creation order.
type Thread struct {
	RootPost *Post   `json:"root_post"`
	Replies  []*Post `json:"replies"`
}

// TimelinePost is a root post annotated with its reply count.
type TimelinePost struct {
	Post
	ReplyCount int `json:"reply_count"`
}

// ContextPost is one entry of the bounded history window handed to the
// reply generator.
type ContextPost struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
}

// UserStats aggregates a user's activity.
type UserStats struct {
	UserID     string `json:"user_id"`
	PostCount  int    `json:"post_count"`
	LikeCount  int    `json:"like_count"`
	ReplyCount int    `json:"reply_count"`
}

// TransitionFunc observes every run state change. prev is the status the
// run held before the transition.
type TransitionFunc func(run *AgentRun, prev RunStatus)

// illegalTransition panics: only the dispatcher drives transitions, so an
// out-of-order edge is a programming error, not a recoverable condition.
func illegalTransition(runID string, from, to RunStatus) {
	panic(fmt.Sprintf("store: illegal run transition %s -> %s for run %s", from, to, runID))
}
