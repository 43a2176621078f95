// ABOUTME: In-memory repository for posts and agent runs, mutex-guarded
// ABOUTME: All read-modify-write sequences happen under a single lock

package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps posts and agent runs in process memory. Every mutation
// happens under one mutex so concurrent dispatch jobs never observe a
// half-applied update. Accessors return copies: callers can hold results
// across goroutines without further locking.
type MemoryStore struct {
	mu           sync.RWMutex
	posts        map[string]*Post
	runs         map[string]*AgentRun
	likes        map[string]map[string]bool // post ID -> liker user IDs
	onTransition TransitionFunc
	logger       *slog.Logger
}

// NewMemoryStore creates an empty store. Pass nil logger for default.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		posts:  make(map[string]*Post),
		runs:   make(map[string]*AgentRun),
		likes:  make(map[string]map[string]bool),
		logger: logger.With("component", "store"),
	}
}

// SetTransitionFunc registers an observer called on every run transition.
// Must be set before any runs are created.
func (s *MemoryStore) SetTransitionFunc(fn TransitionFunc) {
	s.onTransition = fn
}

// CreatePost creates a human-authored post. Thread derivation: a reply
// inherits the parent's thread; a root post (or a reply to a missing
// parent) roots its own thread.
func (s *MemoryStore) CreatePost(authorHandle, text string, parentID *string, mentions []string) *Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	threadID := id
	if parentID != nil {
		if parent, ok := s.posts[*parentID]; ok {
			threadID = parent.ThreadID
		}
	}
	if mentions == nil {
		mentions = []string{}
	}

	post := &Post{
		ID:           id,
		AuthorKind:   AuthorHuman,
		AuthorHandle: authorHandle,
		Text:         text,
		CreatedAt:    time.Now(),
		ParentID:     parentID,
		ThreadID:     threadID,
		Mentions:     mentions,
	}
	s.posts[id] = post
	snapshot := *post
	return &snapshot
}

// CreateReply creates an agent- or system-authored reply post in an
// existing thread.
func (s *MemoryStore) CreateReply(kind AuthorKind, authorHandle, text, parentID, threadID string) *Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := &Post{
		ID:           uuid.New().String(),
		AuthorKind:   kind,
		AuthorHandle: authorHandle,
		Text:         text,
		CreatedAt:    time.Now(),
		ParentID:     &parentID,
		ThreadID:     threadID,
		Mentions:     []string{},
	}
	s.posts[post.ID] = post
	snapshot := *post
	return &snapshot
}

// GetPost returns a post by ID.
func (s *MemoryStore) GetPost(id string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok || post.Deleted {
		return nil, ErrNotFound
	}
	snapshot := *post
	return &snapshot, nil
}

// GetThread returns the root post and its replies in creation order.
func (s *MemoryStore) GetThread(threadID string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.posts[threadID]
	if !ok || root.Deleted {
		return nil, ErrNotFound
	}

	var replies []*Post
	for _, p := range s.posts {
		if p.ThreadID == threadID && p.ID != threadID && !p.Deleted {
			cp := *p
			replies = append(replies, &cp)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})

	rootCopy := *root
	return &Thread{RootPost: &rootCopy, Replies: replies}, nil
}

// Timeline returns root posts newest-first with reply counts.
func (s *MemoryStore) Timeline(limit int) []*TimelinePost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []*Post
	replyCounts := make(map[string]int)
	for _, p := range s.posts {
		if p.Deleted {
			continue
		}
		if p.ParentID == nil {
			roots = append(roots, p)
		} else {
			replyCounts[p.ThreadID]++
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	if limit > 0 && len(roots) > limit {
		roots = roots[:limit]
	}

	timeline := make([]*TimelinePost, 0, len(roots))
	for _, p := range roots {
		timeline = append(timeline, &TimelinePost{Post: *p, ReplyCount: replyCounts[p.ID]})
	}
	return timeline
}

// ThreadContext returns the last n posts of a thread oldest-first, reduced
// to the shape the reply generator consumes.
func (s *MemoryStore) ThreadContext(threadID string, n int) []ContextPost {
	thread, err := s.GetThread(threadID)
	if err != nil {
		return nil
	}

	all := append([]*Post{thread.RootPost}, thread.Replies...)
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}

	window := make([]ContextPost, 0, len(all))
	for _, p := range all {
		window = append(window, ContextPost{
			Author:    p.AuthorHandle,
			Text:      p.Text,
			Timestamp: p.CreatedAt,
			Kind:      string(p.AuthorKind),
		})
	}
	return window
}

// CreateRun records a new agent run in the QUEUED state.
func (s *MemoryStore) CreateRun(agentHandle, triggerPostID, threadID string) *AgentRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := map[string]any{}
	if trigger, ok := s.posts[triggerPostID]; ok {
		ctx["trigger_text"] = trigger.Text
	}

	run := &AgentRun{
		ID:            uuid.New().String(),
		AgentHandle:   agentHandle,
		ThreadID:      threadID,
		TriggerPostID: triggerPostID,
		Status:        RunQueued,
		StartedAt:     time.Now(),
		InputContext:  ctx,
	}
	s.runs[run.ID] = run
	snapshot := *run
	return &snapshot
}

// Transition moves a run along the state machine. outputPostID is only
// meaningful when entering DONE. Calling it out of order panics: only the
// dispatcher drives transitions, so a bad edge is a bug.
func (s *MemoryStore) Transition(runID string, to RunStatus, outputPostID *string) {
	s.mu.Lock()

	run, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		illegalTransition(runID, "", to)
	}
	prev := run.Status
	if !canTransition(prev, to) {
		s.mu.Unlock()
		illegalTransition(runID, prev, to)
	}

	run.Status = to
	if to.Terminal() {
		now := time.Now()
		run.EndedAt = &now
	}
	if outputPostID != nil {
		run.OutputPostID = outputPostID
	}
	snapshot := *run
	fn := s.onTransition
	s.mu.Unlock()

	s.logger.Debug("run transition",
		"run_id", runID,
		"agent", snapshot.AgentHandle,
		"from", prev,
		"to", to)

	if fn != nil {
		fn(&snapshot, prev)
	}
}

// GetRun returns a run by ID.
func (s *MemoryStore) GetRun(id string) (*AgentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	snapshot := *run
	return &snapshot, nil
}

// GetActiveRuns returns runs for a thread still in QUEUED or RUNNING.
func (s *MemoryStore) GetActiveRuns(threadID string) []*AgentRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*AgentRun
	for _, run := range s.runs {
		if run.ThreadID == threadID && !run.Status.Terminal() {
			snapshot := *run
			active = append(active, &snapshot)
		}
	}
	return active
}

// ThreadRuns returns all runs for a thread regardless of status.
func (s *MemoryStore) ThreadRuns(threadID string) []*AgentRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runs []*AgentRun
	for _, run := range s.runs {
		if run.ThreadID == threadID {
			snapshot := *run
			runs = append(runs, &snapshot)
		}
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs
}

// LikePost marks a post as liked by userID. Returns false if already liked
// or the post does not exist.
func (s *MemoryStore) LikePost(postID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || post.Deleted {
		return false
	}
	if s.likes[postID] == nil {
		s.likes[postID] = make(map[string]bool)
	}
	if s.likes[postID][userID] {
		return false
	}
	s.likes[postID][userID] = true
	post.LikeCount++
	return true
}

// UnlikePost removes userID's like. Returns false if not previously liked.
func (s *MemoryStore) UnlikePost(postID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || !s.likes[postID][userID] {
		return false
	}
	delete(s.likes[postID], userID)
	post.LikeCount--
	return true
}

// DeletePost soft-deletes a post authored by authorHandle. Returns false
// when the post is missing or owned by someone else.
func (s *MemoryStore) DeletePost(postID, authorHandle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || post.Deleted || post.AuthorHandle != authorHandle {
		return false
	}
	post.Deleted = true
	return true
}

// UserPosts returns posts authored by handle, newest-first.
func (s *MemoryStore) UserPosts(handle string, limit int) []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var posts []*Post
	for _, p := range s.posts {
		if p.AuthorHandle == handle && !p.Deleted {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

// Stats aggregates post, like, and reply counts for a user handle.
func (s *MemoryStore) Stats(handle string) UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := UserStats{UserID: handle}
	for _, p := range s.posts {
		if p.Deleted || p.AuthorHandle != handle {
			continue
		}
		stats.PostCount++
		stats.LikeCount += p.LikeCount
		if p.ParentID != nil {
			stats.ReplyCount++
		}
	}
	return stats
}
