package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/harrison/verdict/internal/frequency"
	"github.com/harrison/verdict/internal/models"
)

// maxRequestBytes bounds the size of a submitted request body.
const maxRequestBytes = 1 << 20

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	Analysis        models.ErrorAnalysis `json:"analysis"`
	SimilarExamples []string             `json:"similarExamples"`
}

// PatternsResponse is returned by GET /patterns.
type PatternsResponse struct {
	Patterns []frequency.PatternCount `json:"patterns"`
	Count    int                      `json:"count"`
}

// SimilarResponse is returned by GET /similar.
type SimilarResponse struct {
	Pattern  models.ErrorPattern `json:"pattern"`
	Examples []string            `json:"examples"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyze handles POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid JSON request: "+err.Error())
		return
	}

	analysis := s.svc.Analyze(r.Context(), req)
	s.writeJSON(w, http.StatusOK, AnalyzeResponse{
		Analysis:        analysis,
		SimilarExamples: nonNil(s.svc.SimilarExamples(analysis)),
	})
}

// handlePatterns handles GET /patterns?limit=N
func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	patterns := s.svc.Store.TopPatterns()
	if limit > 0 && len(patterns) > limit {
		patterns = patterns[:limit]
	}
	s.writeJSON(w, http.StatusOK, PatternsResponse{Patterns: patterns, Count: len(patterns)})
}

// handleSimilar handles GET /similar?pattern=P&exclude=MSG
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pattern, ok := models.ParseErrorPattern(q.Get("pattern"))
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown pattern "+strconv.Quote(q.Get("pattern")))
		return
	}

	examples := s.svc.Store.SimilarExamples(pattern, q.Get("exclude"))
	s.writeJSON(w, http.StatusOK, SimilarResponse{Pattern: pattern, Examples: nonNil(examples)})
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"patterns": s.svc.Store.Len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.logger.Debugf("request rejected (%d): %s", status, msg)
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
