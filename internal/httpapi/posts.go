// ABOUTME: Handlers for posts, threads, timeline, likes, agents, and agent runs
// ABOUTME: Post creation delegates to the dispatcher; everything else reads the store

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/auth"
	"github.com/yaam/agentboard/internal/store"
)

const maxPostLength = 2000

// anonymousHandle is the author used for writes when no auth is
// configured and the request carries no identity.
const anonymousHandle = "me"

func requestUser(r *http.Request) string {
	if userID := auth.CurrentUser(r.Context()); userID != "" {
		return userID
	}
	return anonymousHandle
}

// CreatePostRequest is the JSON request body for POST /posts.
type CreatePostRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreatePostResponse is the JSON response for POST /posts.
type CreatePostResponse struct {
	Post          *store.Post       `json:"post"`
	TriggeredRuns []*store.AgentRun `json:"triggered_agent_runs"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		s.sendJSONError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxPostLength {
		s.sendJSONError(w, http.StatusBadRequest, "text exceeds maximum length")
		return
	}
	if req.ParentID != nil {
		if _, err := s.store.GetPost(*req.ParentID); err != nil {
			s.sendJSONError(w, http.StatusNotFound, "parent post not found")
			return
		}
	}

	userID := requestUser(r)
	post, runs := s.dispatcher.ProcessPost(r.Context(), req.Text, req.ParentID, userID)
	s.writeJSON(w, http.StatusCreated, CreatePostResponse{Post: post, TriggeredRuns: runs})
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.GetPost(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "post not found")
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := requestUser(r)
	if !s.store.DeletePost(id, userID) {
		s.sendJSONError(w, http.StatusNotFound, "post not found or not owned by caller")
		return
	}
	s.audit.Log(audit.Entry{
		Type:         audit.EventPostDelete,
		UserID:       userID,
		ResourceType: "post",
		ResourceID:   id,
		PostID:       id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := requestUser(r)
	if !s.store.LikePost(id, userID) {
		s.sendJSONError(w, http.StatusConflict, "post missing or already liked")
		return
	}
	s.audit.Log(audit.Entry{
		Type:         audit.EventPostLike,
		UserID:       userID,
		ResourceType: "post",
		ResourceID:   id,
		PostID:       id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnlikePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := requestUser(r)
	if !s.store.UnlikePost(id, userID) {
		s.sendJSONError(w, http.StatusConflict, "post missing or not liked")
		return
	}
	s.audit.Log(audit.Entry{
		Type:         audit.EventPostUnlike,
		UserID:       userID,
		ResourceType: "post",
		ResourceID:   id,
		PostID:       id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	s.writeJSON(w, http.StatusOK, map[string]any{"posts": s.store.Timeline(limit)})
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.store.GetThread(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "thread not found")
			return
		}
		s.sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, thread)
}

func (s *Server) handleThreadRuns(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	if r.URL.Query().Get("active") == "true" {
		s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.store.GetActiveRuns(threadID)})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": s.store.ThreadRuns(threadID)})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"agents": s.registry.List()})
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	profile, err := s.registry.Get(r.PathValue("handle"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.PathValue("id"))
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "agent run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleRetryRun is deliberately unimplemented: a failed run is
// terminal.
func (s *Server) handleRetryRun(w http.ResponseWriter, _ *http.Request) {
	s.sendJSONError(w, http.StatusNotImplemented, "retry is not implemented")
}

func (s *Server) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	handle := r.PathValue("handle")
	limit := queryInt(r, "limit", 50)
	s.writeJSON(w, http.StatusOK, map[string]any{"posts": s.store.UserPosts(handle, limit)})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Stats(r.PathValue("handle")))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
