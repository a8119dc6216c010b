package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/api"
	"github.com/patrickwarner/spotlang/internal/config"
	"github.com/patrickwarner/spotlang/internal/middleware"
	"github.com/patrickwarner/spotlang/internal/observability"
)

func newServeCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the read-only status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), logger, cfg)
		},
	}
}

func runServer(ctx context.Context, logger *zap.Logger, cfg config.Config) error {
	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			logger.Warn("tracing init failed, continuing without", zap.Error(err))
		} else {
			defer shutdown()
		}
	}

	d, cleanup, err := openDeps(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srvDeps := api.NewServer(logger, d.pg, d.redis, observability.NewPrometheusRegistry(), cfg)

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))
	r.HandleFunc("/health", srvDeps.HealthHandler).Methods("GET")
	r.HandleFunc("/status", srvDeps.StatusHandler).Methods("GET")
	r.HandleFunc("/review-required", srvDeps.ReviewRequiredHandler).Methods("GET")
	r.HandleFunc("/batches/{id}", srvDeps.BatchProgressHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = r
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(r, "status-api")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("Status API running", zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
