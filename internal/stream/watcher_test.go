// ABOUTME: Tests for the polling thread observer
// ABOUTME: Uses a short poll interval and drives the store directly

package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaam/agentboard/internal/store"
)

const testInterval = 10 * time.Millisecond

func newTestWatcher(t *testing.T) (*Watcher, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore(nil)
	return NewWatcher(st, testInterval, nil), st
}

// nextEvent reads one event or fails the test after a timeout.
func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream event")
		return Event{}
	}
}

// collectUntilHeartbeat reads events up to and including the next
// heartbeat.
func collectUntilHeartbeat(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for {
		e := nextEvent(t, ch)
		events = append(events, e)
		if e.Type == EventHeartbeat {
			return events
		}
	}
}

func TestFirstPollReportsExistingStateRunsBeforePosts(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "@grok hello", nil, []string{"grok"})
	st.CreateRun("grok", post.ID, post.ThreadID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, post.ThreadID)

	events := collectUntilHeartbeat(t, ch)
	require.Len(t, events, 3)
	assert.Equal(t, EventAgentRun, events[0].Type)
	assert.Equal(t, EventNewPost, events[1].Type)
	assert.Equal(t, EventHeartbeat, events[2].Type)
}

func TestStatusChangeEmittedOncePerEdge(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "@grok hello", nil, []string{"grok"})
	run := st.CreateRun("grok", post.ID, post.ThreadID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, post.ThreadID)
	collectUntilHeartbeat(t, ch)

	st.Transition(run.ID, store.RunRunning, nil)

	events := collectUntilHeartbeat(t, ch)
	require.Len(t, events, 2)
	assert.Equal(t, EventStatusChange, events[0].Type)
	change := events[0].Data.(StatusChange)
	assert.Equal(t, run.ID, change.RunID)
	assert.Equal(t, store.RunRunning, change.Status)
	assert.Nil(t, change.EndedAt)

	// no data means heartbeat only
	st.Transition(run.ID, store.RunDone, nil)
	events = collectUntilHeartbeat(t, ch)
	require.Len(t, events, 2)
	done := events[0].Data.(StatusChange)
	assert.Equal(t, store.RunDone, done.Status)
	assert.NotNil(t, done.EndedAt)

	events = collectUntilHeartbeat(t, ch)
	assert.Len(t, events, 1)
}

func TestNewReplySurfacesAsNewPost(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "hello", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, post.ThreadID)
	collectUntilHeartbeat(t, ch)

	reply := st.CreateReply(store.AuthorAgent, "grok", "hi back", post.ID, post.ThreadID)

	events := collectUntilHeartbeat(t, ch)
	require.Len(t, events, 2)
	assert.Equal(t, EventNewPost, events[0].Type)
	got := events[0].Data.(*store.Post)
	assert.Equal(t, reply.ID, got.ID)
}

func TestFullRunLifecycleOrdering(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "root", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, post.ThreadID)
	collectUntilHeartbeat(t, ch)

	// simulate a dispatched mention completing across polls
	run := st.CreateRun("grok", post.ID, post.ThreadID)
	st.Transition(run.ID, store.RunRunning, nil)
	reply := st.CreateReply(store.AuthorAgent, "grok", "answer", post.ID, post.ThreadID)
	st.Transition(run.ID, store.RunDone, &reply.ID)

	// regardless of how the poll interleaves with the mutations, the
	// run must surface before the reply post
	var events []Event
	for {
		events = append(events, collectUntilHeartbeat(t, ch)...)
		if hasEvent(events, EventNewPost) {
			break
		}
	}
	runIdx := indexOfEvent(events, EventAgentRun)
	postIdx := indexOfEvent(events, EventNewPost)
	require.GreaterOrEqual(t, runIdx, 0)
	require.GreaterOrEqual(t, postIdx, 0)
	assert.Less(t, runIdx, postIdx)

	// once the run is terminal and reported, the thread goes quiet
	events = collectUntilHeartbeat(t, ch)
	events = append(events, collectUntilHeartbeat(t, ch)...)
	assert.False(t, hasEvent(events, EventNewPost))
	assert.False(t, hasEvent(events, EventAgentRun))
}

func hasEvent(events []Event, t EventType) bool {
	return indexOfEvent(events, t) >= 0
}

func indexOfEvent(events []Event, t EventType) int {
	for i, e := range events {
		if e.Type == t {
			return i
		}
	}
	return -1
}

func TestHeartbeatEveryInterval(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "quiet thread", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, post.ThreadID)

	var heartbeats int
	deadline := time.After(2 * time.Second)
	for heartbeats < 3 {
		select {
		case e := <-ch:
			if e.Type == EventHeartbeat {
				heartbeats++
			}
		case <-deadline:
			t.Fatal("did not receive 3 heartbeats in time")
		}
	}
}

func TestCancelClosesStream(t *testing.T) {
	w, st := newTestWatcher(t)
	post := st.CreatePost("alice", "hello", nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ch := w.Observe(ctx, post.ThreadID)
	collectUntilHeartbeat(t, ch)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, testInterval)
}

func TestUnknownThreadEmitsErrorAndCloses(t *testing.T) {
	w, _ := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := w.Observe(ctx, "no-such-thread")

	e := nextEvent(t, ch)
	assert.Equal(t, EventError, e.Type)

	_, ok := <-ch
	assert.False(t, ok)
}
