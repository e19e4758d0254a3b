package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/moonscan/tokenrank/internal/persistence"
	"github.com/moonscan/tokenrank/internal/scan"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// handleScore scores one submitted candidate synchronously and returns the
// stored record. The request body is a scan.Candidate: the caller has
// already collected metrics and resolved wallet activity.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var candidate scan.Candidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if candidate.TokenID == "" {
		writeError(w, http.StatusBadRequest, "token_id is required")
		return
	}

	stored := s.scanner.ScoreCandidate(r.Context(), candidate)
	writeJSON(w, http.StatusOK, stored)
}

// handleLatest returns the most recent archived record for a token.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "score archive not configured")
		return
	}
	tokenID := mux.Vars(r)["token"]

	stored, err := s.scores.Latest(r.Context(), tokenID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no score for token "+tokenID)
			return
		}
		log.Error().Err(err).Str("token", tokenID).Msg("latest score lookup failed")
		writeError(w, http.StatusInternalServerError, "score lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// handleLeaderboard returns the top latest-per-token records.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		writeError(w, http.StatusServiceUnavailable, "score archive not configured")
		return
	}

	limit := 25
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be an integer in [1,500]")
			return
		}
		limit = n
	}

	scores, err := s.scores.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard query failed")
		writeError(w, http.StatusInternalServerError, "leaderboard query failed")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
