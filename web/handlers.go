/* handlers.go
 * Contains the HTTP handlers. Every handler answers with JSON
 */

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/homebackend/gnome-live-tennis-sub000/api/api"
	"github.com/sirupsen/logrus"
)

// NewServer creates the server. A nil logger logs to the logrus standard logger
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{api: cfg.API, log: log.WithField("component", "web")}
}

// Routes returns the mux with every handler bound to s
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.StatusHandler)
	mux.HandleFunc("/matches", s.MatchesHandler)
	mux.HandleFunc("/matches/toggle", s.ToggleHandler)
	mux.HandleFunc("/refresh", s.RefreshHandler)
	return mux
}

// StatusHandler returns the live view status
// Preconditions: GET request
// Postconditions: Writes the status of the last cycle as JSON
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.api.Status())
}

// MatchesHandler returns every match of the last cycle
func (s *Server) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.api.Matches())
}

// RefreshHandler runs a fetch cycle right away
// Preconditions: POST request
// Postconditions: Writes the status after the cycle as JSON
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.log.Info("Manual refresh requested")
	s.writeJSON(w, http.StatusOK, s.api.Refresh(r.Context()))
}

// ToggleHandler toggles the selection of the match named by the q query parameter
// Preconditions: POST request with a non-empty q
// Postconditions: Writes the match id and its new selection. 404 when nothing matches, 409 when the query is ambiguous
func (s *Server) ToggleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query parameter q is required"})
		return
	}

	match, selected, err := s.api.ToggleMatch(r.Context(), query)
	switch {
	case errors.Is(err, api.ErrNoMatch):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, api.ErrAmbiguous):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.log.WithError(err).WithField("query", query).Error("Failed to toggle match")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to toggle match"})
		return
	}

	s.writeJSON(w, http.StatusOK, toggleResponse{ID: match.UniqID(), Name: match.DisplayName, Selected: selected})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Warn("Failed to write response")
	}
}
