// ABOUTME: HTTP middleware extracting bearer-token identity into the request context
// ABOUTME: Identify is permissive; RequireUser gates write endpoints

package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yaam/agentboard/internal/audit"
)

// Middleware resolves request identity from Authorization headers.
type Middleware struct {
	verifier TokenVerifier
	audit    *audit.Recorder
	logger   *slog.Logger
}

// NewMiddleware creates the auth middleware. verifier may be nil, in
// which case every request stays anonymous.
func NewMiddleware(verifier TokenVerifier, rec *audit.Recorder, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{
		verifier: verifier,
		audit:    rec,
		logger:   logger.With("component", "auth"),
	}
}

// Identify attaches the authenticated user ID to the request context
// when a valid bearer token is present. Requests without a token, or
// with no verifier configured, pass through anonymously; an invalid
// token is rejected and audited.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || m.verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("token verification failed", "error", err)
			if m.audit != nil {
				m.audit.Log(audit.Entry{
					Type:         audit.EventAuthFailed,
					Status:       audit.StatusFailure,
					IPAddress:    remoteIP(r),
					UserAgent:    r.UserAgent(),
					ErrorMessage: err.Error(),
				})
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
	})
}

// RequireUser rejects anonymous requests, but only when a verifier is
// configured. Without one there is no way to mint a token, so writes
// stay open and the whole API runs anonymously.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.verifier != nil && CurrentUser(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i > 0 {
		host = host[:i]
	}
	return host
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
