package api

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/middleware"
)

// HealthHandler reports liveness plus spot-store reachability: 200 while the
// database answers pings, 503 once it stops.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	status := "ok"
	code := http.StatusOK
	if s.Store != nil {
		if err := s.Store.Ping(r.Context()); err != nil {
			middleware.LoggerFromRequest(r, s.Logger).Warn("health: spot store unreachable", zap.Error(err))
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `"}`))

	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(code))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
