// ABOUTME: Direct service endpoints outside the post/dispatch pipeline
// ABOUTME: One-off agent prompts, web search, scraping, media generation, and email

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/yaam/agentboard/internal/audit"
	"github.com/yaam/agentboard/internal/services"
)

const maxScrapeResponse = 5000

// AgentPromptRequest is the JSON body for POST /agents/prompt.
type AgentPromptRequest struct {
	AgentHandle string `json:"agent_handle"`
	Prompt      string `json:"prompt"`
}

// handleAgentPrompt sends a one-off prompt to an agent without creating
// a post or a tracked run.
func (s *Server) handleAgentPrompt(w http.ResponseWriter, r *http.Request) {
	var req AgentPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		s.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	profile, err := s.registry.Get(req.AgentHandle)
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}

	reply, err := s.dispatcher.Services().Generate(r.Context(), services.GenerateRequest{
		Profile: profile,
		Prompt:  req.Prompt,
	})
	if err != nil {
		s.serviceError(w, "generation", err)
		return
	}
	if reply == "" {
		s.sendJSONError(w, http.StatusInternalServerError, "failed to generate response")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"agent":    profile.Handle,
		"response": reply,
	})
}

// SearchRequest is the JSON body for POST /search/web.
type SearchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleWebSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		s.sendJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := s.dispatcher.Services().Search(r.Context(), req.Query)
	if err != nil {
		s.serviceError(w, "search", err)
		return
	}
	if results == nil {
		results = []services.SearchResult{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"results": results,
	})
}

// ScrapeRequest is the JSON body for POST /scrape.
type ScrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.URL == "" {
		s.sendJSONError(w, http.StatusBadRequest, "url is required")
		return
	}

	content, err := s.dispatcher.Services().Scrape(r.Context(), req.URL)
	if err != nil {
		s.serviceError(w, "scraping", err)
		return
	}
	if len(content) > maxScrapeResponse {
		content = content[:maxScrapeResponse]
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"url":     req.URL,
		"content": content,
	})
}

// MediaGenerateRequest is the JSON body for the media generation endpoints.
type MediaGenerateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	s.handleGenerateMedia(w, r, "image")
}

func (s *Server) handleGenerateVideo(w http.ResponseWriter, r *http.Request) {
	s.handleGenerateMedia(w, r, "video")
}

func (s *Server) handleGenerateMedia(w http.ResponseWriter, r *http.Request, kind string) {
	var req MediaGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Prompt == "" {
		s.sendJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	start := time.Now()
	var url string
	var err error
	eventType := audit.EventMediaImageGenerate
	if kind == "video" {
		url, err = s.dispatcher.Services().GenerateVideo(r.Context(), req.Prompt)
		eventType = audit.EventMediaVideoGenerate
	} else {
		url, err = s.dispatcher.Services().GenerateImage(r.Context(), req.Prompt)
	}
	if err != nil {
		s.serviceError(w, kind+" generation", err)
		return
	}

	s.audit.RecordMedia(audit.MediaAsset{
		Kind:        kind,
		Prompt:      req.Prompt,
		URL:         url,
		RequestedBy: requestUser(r),
		DurationMS:  time.Since(start).Milliseconds(),
	})
	s.audit.Log(audit.Entry{
		Type:         eventType,
		UserID:       requestUser(r),
		ResourceType: "media",
		ResourceID:   kind,
		Details:      map[string]any{"prompt": req.Prompt},
	})

	s.writeJSON(w, http.StatusOK, map[string]string{
		"prompt": req.Prompt,
		"url":    url,
	})
}

// EmailSendRequest is the JSON body for POST /email/send.
type EmailSendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.To == "" || req.Subject == "" {
		s.sendJSONError(w, http.StatusBadRequest, "to and subject are required")
		return
	}

	if err := s.dispatcher.Services().SendEmail(r.Context(), req.To, req.Subject, req.Text); err != nil {
		s.serviceError(w, "email", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// serviceError maps a collaborator failure to a status code: an
// unconfigured service is 501, an upstream failure is 500.
func (s *Server) serviceError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, services.ErrNotEnabled) {
		s.sendJSONError(w, http.StatusNotImplemented, what+" service not enabled")
		return
	}
	s.logger.Warn("service call failed", "service", what, "error", err)
	s.sendJSONError(w, http.StatusInternalServerError, what+" failed")
}
