package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/middleware"
)

const defaultReviewLimit = 500

// StatusHandler returns the aggregate assignment state: spots per category,
// assignments per campaign type, review and no-coverage counts.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "status"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	summary, err := s.Store.Summary(r.Context())
	if err != nil {
		logger.Error("load status summary", zap.Error(err))
		httpError(w, "summary unavailable", http.StatusInternalServerError)
		s.Metrics.IncrementRequests(endpoint, r.Method, "500")
		return
	}

	s.writeJSON(w, summary)
	s.Metrics.IncrementRequests(endpoint, r.Method, "200")
	s.Metrics.RecordRequestLatency(endpoint, r.Method, time.Since(start))
}

// ReviewRequiredHandler returns the queue of spots needing human review.
// An optional ?limit= caps the result size.
func (s *Server) ReviewRequiredHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "review_required"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	limit := defaultReviewLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpError(w, "invalid limit", http.StatusBadRequest)
			s.Metrics.IncrementRequests(endpoint, r.Method, "400")
			return
		}
		limit = n
	}

	items, err := s.Store.ReviewQueue(r.Context(), limit)
	if err != nil {
		logger.Error("load review queue", zap.Error(err))
		httpError(w, "review queue unavailable", http.StatusInternalServerError)
		s.Metrics.IncrementRequests(endpoint, r.Method, "500")
		return
	}

	s.writeJSON(w, map[string]any{"count": len(items), "items": items})
	s.Metrics.IncrementRequests(endpoint, r.Method, "200")
	s.Metrics.RecordRequestLatency(endpoint, r.Method, time.Since(start))
}

// BatchProgressHandler reports the live counters for one batch run, read
// from Redis. Returns 404 for unknown or expired batches and 503 when no
// Redis store is wired.
func (s *Server) BatchProgressHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "batch_progress"
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if s.Redis == nil || s.Redis.Client == nil {
		httpError(w, "batch progress not available", http.StatusServiceUnavailable)
		s.Metrics.IncrementRequests(endpoint, r.Method, "503")
		return
	}

	batchID := mux.Vars(r)["id"]
	progress, err := s.Redis.BatchProgress(batchID)
	if err != nil {
		logger.Error("load batch progress", zap.String("batch_id", batchID), zap.Error(err))
		httpError(w, "batch progress unavailable", http.StatusInternalServerError)
		s.Metrics.IncrementRequests(endpoint, r.Method, "500")
		return
	}
	if len(progress) == 0 {
		httpError(w, "batch not found", http.StatusNotFound)
		s.Metrics.IncrementRequests(endpoint, r.Method, "404")
		return
	}

	s.writeJSON(w, map[string]any{"batch_id": batchID, "progress": progress})
	s.Metrics.IncrementRequests(endpoint, r.Method, "200")
	s.Metrics.RecordRequestLatency(endpoint, r.Method, time.Since(start))
}
