// ABOUTME: Read-only endpoints over the audit recorder.
// ABOUTME: Filtered log queries, stats, media, conversations, and export.

package httpapi

import (
	"net/http"
	"time"

	"github.com/yaam/agentboard/internal/audit"
)

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{
		Type:         audit.EventType(r.URL.Query().Get("type")),
		UserID:       r.URL.Query().Get("user_id"),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
		ThreadID:     r.URL.Query().Get("thread_id"),
		Status:       r.URL.Query().Get("status"),
		Search:       r.URL.Query().Get("search"),
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}

	if !s.parseTimeWindow(w, r, &q.Since, &q.Until) {
		return
	}

	entries, total := s.audit.Query(q)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"logs":     entries,
		"total":    total,
		"has_more": q.Offset+len(entries) < total,
	})
}

// parseTimeWindow fills since/until from RFC3339 query parameters.
// Returns false after writing an error response when a value is malformed.
func (s *Server) parseTimeWindow(w http.ResponseWriter, r *http.Request, since, until **time.Time) bool {
	for param, dst := range map[string]**time.Time{"since": since, "until": until} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, param+" must be RFC3339")
			return false
		}
		*dst = &t
	}
	return true
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	var since, until *time.Time
	if !s.parseTimeWindow(w, r, &since, &until) {
		return
	}
	entries := s.audit.EntriesBetween(since, until)
	stamp := time.Now().UTC().Format("20060102-150405")

	switch format := r.URL.Query().Get("format"); format {
	case "csv":
		data, err := audit.ExportCSV(entries)
		if err != nil {
			s.sendJSONError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-`+stamp+`.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "", "json":
		data, err := audit.ExportJSON(entries)
		if err != nil {
			s.sendJSONError(w, http.StatusInternalServerError, "export failed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-`+stamp+`.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		s.sendJSONError(w, http.StatusBadRequest, "format must be json or csv")
	}
}

func (s *Server) handleAuditStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.audit.Stats())
}

func (s *Server) handleAuditMedia(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"media": s.audit.Media(queryInt(r, "limit", 0)),
	})
}

func (s *Server) handleAuditConversations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"conversations": s.audit.Conversations(),
	})
}

func (s *Server) handleAuditConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.audit.Conversation(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "no activity recorded for thread")
		return
	}
	s.writeJSON(w, http.StatusOK, conv)
}
