// Command spotlang categorizes broadcast spots, resolves their language
// codes, and assigns them to programming-grid language blocks. Batch
// processing runs through the CLI verbs; `serve` exposes the read-only
// status API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/analytics"
	"github.com/patrickwarner/spotlang/internal/config"
	"github.com/patrickwarner/spotlang/internal/db"
	"github.com/patrickwarner/spotlang/internal/observability"
	"github.com/patrickwarner/spotlang/internal/pipeline"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, cfg)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger, cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "spotlang",
		Short:         "Spot categorization and language block assignment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCategorizeCmd(logger, cfg),
		newProcessCmd(logger, cfg),
		newStatusCmd(logger, cfg),
		newReviewRequiredCmd(logger, cfg),
		newServeCmd(logger, cfg),
	)
	return root
}

// deps holds the wired infrastructure for one command invocation.
type deps struct {
	pg    *db.Postgres
	redis *db.RedisStore
	audit *analytics.Analytics
	ref   *refdata.Set
	pipe  *pipeline.Pipeline
}

// openDeps connects Postgres (required), Redis and ClickHouse (both
// optional; the pipeline degrades without them) and loads the reference
// data. The returned func closes everything.
func openDeps(ctx context.Context, logger *zap.Logger, cfg config.Config) (*deps, func(), error) {
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	ref, err := refdata.Load(ctx, pg)
	if err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("load reference data: %w", err)
	}

	d := &deps{pg: pg, ref: ref}

	if rs, err := db.InitRedis(cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, batch progress disabled", zap.Error(err))
	} else {
		d.redis = rs
	}

	if cfg.AuditEvents {
		if ch, err := analytics.InitClickHouse(cfg.ClickHouseDSN); err != nil {
			logger.Warn("clickhouse unavailable, audit events disabled", zap.Error(err))
		} else {
			d.audit = ch
		}
	}

	var progress pipeline.ProgressStore
	if d.redis != nil {
		progress = d.redis
	}
	var audit analytics.Recorder
	if d.audit != nil {
		audit = d.audit
	}

	d.pipe = pipeline.New(pg, ref, audit, progress, observability.NewPrometheusRegistry(), logger, cfg)

	cleanup := func() {
		if d.audit != nil {
			d.audit.Close()
		}
		if d.redis != nil {
			d.redis.Close()
		}
		pg.Close()
	}
	return d, cleanup, nil
}
