// ABOUTME: Tests for the in-memory post/run repository
// ABOUTME: Covers thread derivation, run state machine, and bookkeeping

package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_RootOwnsItsThread(t *testing.T) {
	s := NewMemoryStore(nil)

	post := s.CreatePost("@me", "hello world", nil, nil)

	assert.Equal(t, post.ID, post.ThreadID)
	assert.Equal(t, AuthorHuman, post.AuthorKind)
	assert.Nil(t, post.ParentID)
	assert.NotNil(t, post.Mentions)
}

func TestCreatePost_ReplyInheritsThread(t *testing.T) {
	s := NewMemoryStore(nil)
	root := s.CreatePost("@me", "root", nil, nil)

	reply := s.CreatePost("@me", "reply", &root.ID, nil)

	assert.Equal(t, root.ID, reply.ThreadID)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)
}

func TestCreatePost_ReplyToMissingParentRootsItself(t *testing.T) {
	s := NewMemoryStore(nil)
	ghost := "no-such-post"

	reply := s.CreatePost("@me", "orphan", &ghost, nil)

	assert.Equal(t, reply.ID, reply.ThreadID)
}

func TestGetThread_RepliesSorted(t *testing.T) {
	s := NewMemoryStore(nil)
	root := s.CreatePost("@me", "root", nil, nil)
	first := s.CreateReply(AuthorAgent, "@grok", "first", root.ID, root.ID)
	second := s.CreateReply(AuthorAgent, "@writer", "second", root.ID, root.ID)

	thread, err := s.GetThread(root.ID)
	require.NoError(t, err)

	require.Len(t, thread.Replies, 2)
	assert.Equal(t, first.ID, thread.Replies[0].ID)
	assert.Equal(t, second.ID, thread.Replies[1].ID)
}

func TestGetThread_NotFound(t *testing.T) {
	s := NewMemoryStore(nil)

	_, err := s.GetThread("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimeline_RootsOnlyWithReplyCounts(t *testing.T) {
	s := NewMemoryStore(nil)
	root := s.CreatePost("@me", "root", nil, nil)
	s.CreateReply(AuthorAgent, "@grok", "reply", root.ID, root.ID)
	other := s.CreatePost("@me", "second root", nil, nil)

	timeline := s.Timeline(10)

	require.Len(t, timeline, 2)
	// Newest first
	assert.Equal(t, other.ID, timeline[0].ID)
	assert.Equal(t, 0, timeline[0].ReplyCount)
	assert.Equal(t, root.ID, timeline[1].ID)
	assert.Equal(t, 1, timeline[1].ReplyCount)
}

func TestThreadContext_BoundedOldestFirst(t *testing.T) {
	s := NewMemoryStore(nil)
	root := s.CreatePost("@me", "root", nil, nil)
	for i := 0; i < 6; i++ {
		s.CreateReply(AuthorAgent, "@grok", "r", root.ID, root.ID)
	}

	window := s.ThreadContext(root.ID, 5)

	require.Len(t, window, 5)
	for i := 1; i < len(window); i++ {
		assert.False(t, window[i].Timestamp.Before(window[i-1].Timestamp))
	}
	assert.Equal(t, "agent", window[0].Kind)
}

func TestCreateRun_StartsQueued(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi @grok", nil, []string{"grok"})

	run := s.CreateRun("grok", post.ID, post.ThreadID)

	assert.Equal(t, RunQueued, run.Status)
	assert.Equal(t, post.ID, run.TriggerPostID)
	assert.Nil(t, run.EndedAt)
	assert.Equal(t, "hi @grok", run.InputContext["trigger_text"])
}

func TestTransition_HappyPath(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi", nil, nil)
	run := s.CreateRun("grok", post.ID, post.ThreadID)
	reply := s.CreateReply(AuthorAgent, "@grok", "hello", post.ID, post.ThreadID)

	s.Transition(run.ID, RunRunning, nil)
	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunRunning, got.Status)
	assert.Nil(t, got.EndedAt)

	s.Transition(run.ID, RunDone, &reply.ID)
	got, err = s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunDone, got.Status)
	require.NotNil(t, got.EndedAt)
	require.NotNil(t, got.OutputPostID)
	assert.Equal(t, reply.ID, *got.OutputPostID)
}

func TestTransition_IllegalEdgePanics(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi", nil, nil)
	run := s.CreateRun("grok", post.ID, post.ThreadID)

	// Skipping RUNNING is a programming error.
	assert.Panics(t, func() { s.Transition(run.ID, RunDone, nil) })

	s.Transition(run.ID, RunRunning, nil)
	s.Transition(run.ID, RunError, nil)

	// Terminal states are final.
	assert.Panics(t, func() { s.Transition(run.ID, RunDone, nil) })
	assert.Panics(t, func() { s.Transition(run.ID, RunRunning, nil) })
}

func TestTransition_UnknownRunPanics(t *testing.T) {
	s := NewMemoryStore(nil)
	assert.Panics(t, func() { s.Transition("missing", RunRunning, nil) })
}

func TestTransition_ObserverSeesEveryEdge(t *testing.T) {
	s := NewMemoryStore(nil)

	var mu sync.Mutex
	var seen []RunStatus
	s.SetTransitionFunc(func(run *AgentRun, prev RunStatus) {
		mu.Lock()
		seen = append(seen, run.Status)
		mu.Unlock()
	})

	post := s.CreatePost("@me", "hi", nil, nil)
	run := s.CreateRun("grok", post.ID, post.ThreadID)
	s.Transition(run.ID, RunRunning, nil)
	s.Transition(run.ID, RunDone, nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []RunStatus{RunRunning, RunDone}, seen)
}

func TestGetActiveRuns_ExcludesTerminal(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi", nil, nil)
	active := s.CreateRun("grok", post.ID, post.ThreadID)
	finished := s.CreateRun("writer", post.ID, post.ThreadID)
	s.Transition(finished.ID, RunRunning, nil)
	s.Transition(finished.ID, RunError, nil)

	runs := s.GetActiveRuns(post.ThreadID)

	require.Len(t, runs, 1)
	assert.Equal(t, active.ID, runs[0].ID)
}

func TestLikeUnlike_Bookkeeping(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi", nil, nil)

	assert.True(t, s.LikePost(post.ID, "user_1"))
	assert.False(t, s.LikePost(post.ID, "user_1"), "double like should be a no-op")
	assert.True(t, s.LikePost(post.ID, "user_2"))

	got, err := s.GetPost(post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LikeCount)

	assert.True(t, s.UnlikePost(post.ID, "user_1"))
	assert.False(t, s.UnlikePost(post.ID, "user_1"))

	got, _ = s.GetPost(post.ID)
	assert.Equal(t, 1, got.LikeCount)
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	s := NewMemoryStore(nil)
	post := s.CreatePost("@me", "hi", nil, nil)

	assert.False(t, s.DeletePost(post.ID, "@someone-else"))
	assert.True(t, s.DeletePost(post.ID, "@me"))

	_, err := s.GetPost(post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats_CountsPostsLikesReplies(t *testing.T) {
	s := NewMemoryStore(nil)
	root := s.CreatePost("@me", "root", nil, nil)
	s.CreatePost("@me", "reply", &root.ID, nil)
	s.LikePost(root.ID, "user_2")

	stats := s.Stats("@me")

	assert.Equal(t, 2, stats.PostCount)
	assert.Equal(t, 1, stats.LikeCount)
	assert.Equal(t, 1, stats.ReplyCount)
}
