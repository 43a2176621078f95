// ABOUTME: In-memory audit recorder with a bounded best-effort durable write queue
// ABOUTME: Logging never blocks or fails; when the queue is full the oldest write is dropped

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/yaam/agentboard/internal/metrics"
)

// queueCap bounds the durable write queue. A full queue sheds the oldest
// pending write rather than blocking the caller.
const queueCap = 1024

const defaultQueryLimit = 100

// Backend persists entries durably. Writes are best-effort: a failing
// backend never affects the in-memory log.
type Backend interface {
	Insert(ctx context.Context, e *Entry) error
	Close() error
}

// Recorder is the authoritative in-memory audit log. All reads are
// answered from memory; a Backend, when present, receives async copies.
type Recorder struct {
	mu            sync.RWMutex
	entries       []*Entry
	media         []*MediaAsset
	conversations map[string]*ConversationAudit

	queue   chan *Entry
	dropped atomic.Int64

	backend Backend
	logger  *slog.Logger
}

// NewRecorder creates a recorder. backend may be nil for memory-only
// operation; Run must be called for durable writes to drain.
func NewRecorder(backend Backend, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		conversations: make(map[string]*ConversationAudit),
		queue:         make(chan *Entry, queueCap),
		backend:       backend,
		logger:        logger.With("component", "audit"),
	}
}

// Log records an entry. ID and Timestamp are filled in when unset, the
// entry is appended to the in-memory log, conversation rollups are
// updated, and a copy is queued for the durable backend. Log never
// blocks and never fails.
func (r *Recorder) Log(e Entry) *Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}

	r.mu.Lock()
	r.entries = append(r.entries, &e)
	r.updateConversation(&e)
	r.mu.Unlock()

	if r.backend != nil {
		r.enqueue(&e)
	}

	r.logger.Debug("audit entry recorded",
		"id", e.ID,
		"type", e.Type,
		"user", e.UserID,
		"status", e.Status,
	)
	return &e
}

// Error is a shorthand for logging a failure entry of the given type.
func (r *Recorder) Error(t EventType, userID string, err error, details map[string]any) *Entry {
	e := Entry{
		Type:    t,
		UserID:  userID,
		Status:  StatusFailure,
		Details: details,
	}
	if err != nil {
		e.ErrorMessage = err.Error()
	}
	return r.Log(e)
}

// RecordMedia stores a media asset record and returns it with ID and
// CreatedAt filled in.
func (r *Recorder) RecordMedia(asset MediaAsset) *MediaAsset {
	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.media = append(r.media, &asset)
	r.mu.Unlock()
	return &asset
}

// updateConversation folds an entry into its thread rollup.
// Caller must hold r.mu.
func (r *Recorder) updateConversation(e *Entry) {
	if e.ThreadID == "" {
		return
	}
	c, ok := r.conversations[e.ThreadID]
	if !ok {
		c = &ConversationAudit{ThreadID: e.ThreadID, FirstActivity: e.Timestamp}
		r.conversations[e.ThreadID] = c
	}
	c.LastActivity = e.Timestamp

	switch e.Type {
	case EventPostCreate:
		c.PostCount++
	case EventAgentRunStart:
		c.RunCount++
	case EventAgentRunError:
		c.ErrorCount++
	}
	if e.UserID != "" && !lo.Contains(c.Participants, e.UserID) {
		c.Participants = append(c.Participants, e.UserID)
	}
}

// enqueue offers the entry to the durable queue, evicting the oldest
// pending write when full.
func (r *Recorder) enqueue(e *Entry) {
	for {
		select {
		case r.queue <- e:
			return
		default:
		}
		select {
		case old := <-r.queue:
			r.dropped.Add(1)
			metrics.AuditDropped.Inc()
			r.logger.Warn("durable audit queue full, dropping oldest write", "id", old.ID)
		default:
		}
	}
}

// Run drains the durable write queue into the backend until ctx is
// cancelled, then flushes whatever remains. Backend failures are logged
// and swallowed.
func (r *Recorder) Run(ctx context.Context) error {
	if r.backend == nil {
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		case <-ctx.Done():
			r.flush()
			return nil
		}
	}
}

func (r *Recorder) write(ctx context.Context, e *Entry) {
	if err := r.backend.Insert(ctx, e); err != nil {
		r.logger.Warn("durable audit write failed", "id", e.ID, "error", err)
	}
}

// flush writes remaining queued entries with a fresh short deadline so
// shutdown cannot hang on a slow backend.
func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case e := <-r.queue:
			r.write(ctx, e)
		default:
			return
		}
	}
}

// Close flushes pending writes and closes the backend.
func (r *Recorder) Close() error {
	r.flush()
	if r.backend != nil {
		return r.backend.Close()
	}
	return nil
}

// Query returns the matching page of entries, newest first, plus the
// total match count before pagination.
func (r *Recorder) Query(q Query) ([]*Entry, int) {
	r.mu.RLock()
	matched := lo.Filter(r.entries, func(e *Entry, _ int) bool {
		return q.matches(e)
	})
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	total := len(matched)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if q.Offset >= total {
		return nil, total
	}
	matched = matched[q.Offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total
}

func (q Query) matches(e *Entry) bool {
	if q.Type != "" && e.Type != q.Type {
		return false
	}
	if q.UserID != "" && e.UserID != q.UserID {
		return false
	}
	if q.ResourceType != "" && e.ResourceType != q.ResourceType {
		return false
	}
	if q.ResourceID != "" && e.ResourceID != q.ResourceID {
		return false
	}
	if q.ThreadID != "" && e.ThreadID != q.ThreadID {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	if q.Since != nil && e.Timestamp.Before(*q.Since) {
		return false
	}
	if q.Until != nil && e.Timestamp.After(*q.Until) {
		return false
	}
	if q.Search != "" && !entryContains(e, q.Search) {
		return false
	}
	return true
}

func entryContains(e *Entry, needle string) bool {
	needle = strings.ToLower(needle)
	for _, hay := range []string{e.ResourceType, e.ResourceID, e.PostID, e.ErrorMessage} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	if len(e.Details) > 0 {
		if data, err := json.Marshal(e.Details); err == nil {
			return strings.Contains(strings.ToLower(string(data)), needle)
		}
	}
	return false
}

// Stats summarizes the in-memory log.
func (r *Recorder) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		TotalEvents:   len(r.entries),
		ByType:        lo.CountValuesBy(r.entries, func(e *Entry) EventType { return e.Type }),
		ByStatus:      lo.CountValuesBy(r.entries, func(e *Entry) string { return e.Status }),
		MediaAssets:   len(r.media),
		Conversations: len(r.conversations),
		Dropped:       r.dropped.Load(),
	}
	s.Failures = s.ByStatus[StatusFailure]
	if len(r.entries) > 0 {
		oldest := r.entries[0].Timestamp
		newest := r.entries[len(r.entries)-1].Timestamp
		s.OldestEvent = &oldest
		s.NewestEvent = &newest
	}
	return s
}

// Media returns recorded media assets, newest first, capped at limit
// (0 means all).
func (r *Recorder) Media(limit int) []*MediaAsset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*MediaAsset, len(r.media))
	copy(out, r.media)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Conversations returns all thread rollups, most recently active first.
func (r *Recorder) Conversations() []*ConversationAudit {
	r.mu.RLock()
	out := lo.Map(lo.Values(r.conversations), func(c *ConversationAudit, _ int) *ConversationAudit {
		cp := *c
		return &cp
	})
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// Conversation returns the rollup for one thread.
func (r *Recorder) Conversation(threadID string) (*ConversationAudit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conversations[threadID]
	if !ok {
		return nil, fmt.Errorf("no audit activity for thread %s", threadID)
	}
	cp := *c
	return &cp, nil
}

// Entries returns a snapshot of the full log in insertion order,
// primarily for export.
func (r *Recorder) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// EntriesBetween returns entries inside the half-open time window, in
// insertion order. Nil bounds mean unbounded.
func (r *Recorder) EntriesBetween(since, until *time.Time) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Filter(r.entries, func(e *Entry, _ int) bool {
		if since != nil && e.Timestamp.Before(*since) {
			return false
		}
		if until != nil && e.Timestamp.After(*until) {
			return false
		}
		return true
	})
}
