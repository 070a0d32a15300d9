// Package httpapi exposes the bot's HTTP surface: room token issuance for
// chat clients, health, and metrics.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/memora/internal/observability"
	"github.com/antoniostano/memora/internal/token"
)

type Server struct {
	issuer *token.Issuer
}

// New builds the HTTP API. issuer may be nil when no signing key is
// configured; token requests then fail with a configuration error while the
// rest of the surface stays up.
func New(issuer *token.Issuer) *Server {
	return &Server{issuer: issuer}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Post("/token", s.handleToken)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())
	return r
}

type tokenRequest struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.issuer == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Server configuration error: Missing room signing key",
		})
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON data"})
		return
	}
	if req.Room == "" || req.Identity == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields: room and identity",
		})
		return
	}

	tok, err := s.issuer.Issue(req.Room, req.Identity)
	if err != nil {
		slog.Error("token issuance failed", "room", req.Room, "identity", req.Identity, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	slog.Info("issued room token", "room", req.Room, "identity", req.Identity)
	writeJSON(w, http.StatusOK, map[string]string{
		"token":    tok,
		"room":     req.Room,
		"identity": req.Identity,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "memora-token-server",
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Memora Token Server",
		"endpoints": map[string]string{
			"/token":   "POST - Generate room access token",
			"/healthz": "GET - Health check",
			"/metrics": "GET - Prometheus metrics",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write response", "err", err)
	}
}
