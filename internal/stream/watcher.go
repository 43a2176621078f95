// ABOUTME: Polling reconciliation loop that turns thread state into an ordered event feed
// ABOUTME: Diffs runs and posts against previously-seen IDs every interval

package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/yaam/agentboard/internal/metrics"
	"github.com/yaam/agentboard/internal/store"
)

// DefaultInterval is the poll cadence of an observer loop.
const DefaultInterval = 2 * time.Second

// EventType names one stream event.
type EventType string

const (
	EventAgentRun     EventType = "agent_run"
	EventStatusChange EventType = "agent_status_change"
	EventNewPost      EventType = "new_post"
	EventHeartbeat    EventType = "heartbeat"
	EventError        EventType = "error"
)

// Event is one item of the per-thread feed.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// StatusChange is the payload of an agent_status_change event.
type StatusChange struct {
	RunID       string          `json:"id"`
	AgentHandle string          `json:"agent_handle"`
	Status      store.RunStatus `json:"status"`
	ThreadID    string          `json:"thread_id"`
	EndedAt     *time.Time      `json:"ended_at,omitempty"`
}

// Watcher produces live-update streams over the store. It is a polling
// design: latency is bounded by the interval, and no pub/sub layer is
// needed.
type Watcher struct {
	store    *store.MemoryStore
	interval time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher polling at interval (DefaultInterval
// when zero).
func NewWatcher(st *store.MemoryStore, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:    st,
		interval: interval,
		logger:   logger.With("component", "stream"),
	}
}

// Observe returns the event feed for one thread. Each poll emits run
// events before post events, then one heartbeat. The channel closes
// when ctx is cancelled or after a single error event. Nothing seen
// before the first poll is skipped: existing runs and posts are
// reported once on the first iteration.
func (w *Watcher) Observe(ctx context.Context, threadID string) <-chan Event {
	ch := make(chan Event)
	go w.loop(ctx, threadID, ch)
	return ch
}

func (w *Watcher) loop(ctx context.Context, threadID string, ch chan<- Event) {
	defer close(ch)
	metrics.StreamWatchers.Inc()
	defer metrics.StreamWatchers.Dec()
	w.logger.Debug("stream opened", "thread_id", threadID)
	defer w.logger.Debug("stream closed", "thread_id", threadID)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	seenStatus := make(map[string]store.RunStatus)
	seenPosts := make(map[string]bool)

	for {
		if !w.poll(ctx, threadID, ch, seenStatus, seenPosts) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll performs one reconciliation pass. Returns false when the loop
// should stop.
func (w *Watcher) poll(ctx context.Context, threadID string, ch chan<- Event, seenStatus map[string]store.RunStatus, seenPosts map[string]bool) bool {
	for _, run := range w.store.ThreadRuns(threadID) {
		prev, known := seenStatus[run.ID]
		switch {
		case !known:
			if !w.send(ctx, ch, Event{Type: EventAgentRun, Data: run}) {
				return false
			}
		case prev != run.Status:
			change := StatusChange{
				RunID:       run.ID,
				AgentHandle: run.AgentHandle,
				Status:      run.Status,
				ThreadID:    run.ThreadID,
				EndedAt:     run.EndedAt,
			}
			if !w.send(ctx, ch, Event{Type: EventStatusChange, Data: change}) {
				return false
			}
		}
		seenStatus[run.ID] = run.Status
	}

	thread, err := w.store.GetThread(threadID)
	if err != nil {
		w.logger.Warn("stream poll failed", "thread_id", threadID, "error", err)
		w.send(ctx, ch, Event{Type: EventError, Data: map[string]string{"message": err.Error()}})
		return false
	}
	for _, post := range append([]*store.Post{thread.RootPost}, thread.Replies...) {
		if seenPosts[post.ID] {
			continue
		}
		if !w.send(ctx, ch, Event{Type: EventNewPost, Data: post}) {
			return false
		}
		seenPosts[post.ID] = true
	}

	return w.send(ctx, ch, Event{Type: EventHeartbeat})
}

func (w *Watcher) send(ctx context.Context, ch chan<- Event, e Event) bool {
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
