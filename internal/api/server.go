package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/config"
	"github.com/patrickwarner/spotlang/internal/db"
	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/observability"
)

// Server groups dependencies for HTTP handlers. The API is read-only: batch
// mutations happen through the CLI, the server only reports state.
type Server struct {
	Logger  *zap.Logger
	Store   models.SpotStore
	Redis   *db.RedisStore
	Metrics observability.MetricsRegistry
	Config  config.Config
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store models.SpotStore, redis *db.RedisStore, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:  logger,
		Store:   store,
		Redis:   redis,
		Metrics: metrics,
		Config:  cfg,
	}
}

// writeJSON serializes v with a 200 status. Encoding failures are logged;
// the header has already been written by then.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", zap.Error(err))
	}
}

func httpError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
