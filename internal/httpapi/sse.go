// ABOUTME: Server-sent events endpoint for live thread updates.
// ABOUTME: Bridges the polling watcher onto an SSE response stream.

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yaam/agentboard/internal/store"
	"github.com/yaam/agentboard/internal/stream"
)

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")

	if _, err := s.store.GetThread(threadID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "thread not found")
			return
		}
		s.sendJSONError(w, http.StatusInternalServerError, "failed to load thread")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.sendJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := s.watcher.Observe(r.Context(), threadID)
	for ev := range events {
		if err := writeSSE(w, ev); err != nil {
			s.logger.Debug("stream write failed", "thread_id", threadID, "error", err)
			return
		}
		flusher.Flush()
	}
}

// writeSSE encodes a single event in wire format. Heartbeats go out as
// comments so clients keep the connection alive without dispatching them.
func writeSSE(w http.ResponseWriter, ev stream.Event) error {
	if ev.Type == stream.EventHeartbeat {
		_, err := fmt.Fprint(w, ": heartbeat\n\n")
		return err
	}

	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
