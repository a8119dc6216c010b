// Package pipeline orchestrates batch spot processing: categorization, then
// per-category fan-out through the language-code resolver and the block
// assignment engine, with statistics aggregation and progress reporting.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/analytics"
	"github.com/patrickwarner/spotlang/internal/config"
	"github.com/patrickwarner/spotlang/internal/logic"
	"github.com/patrickwarner/spotlang/internal/logic/blocks"
	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/observability"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// ProgressStore publishes live batch counters. Satisfied by db.RedisStore;
// a nil store disables progress reporting.
type ProgressStore interface {
	StartBatch(batchID, category string) error
	IncrementBatchCounter(batchID, counter string) error
	FinishBatch(batchID string) error
}

// Pipeline wires the engines to the store and runs batches.
type Pipeline struct {
	store    models.SpotStore
	ref      *refdata.Set
	resolver *logic.LanguageResolver
	engine   *blocks.Engine
	audit    analytics.Recorder
	progress ProgressStore
	metrics  observability.MetricsRegistry
	logger   *zap.Logger
	cfg      config.Config
}

// New constructs a Pipeline. audit and progress may be nil; metrics falls
// back to the no-op registry.
func New(store models.SpotStore, ref *refdata.Set, audit analytics.Recorder,
	progress ProgressStore, metrics observability.MetricsRegistry,
	logger *zap.Logger, cfg config.Config) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Pipeline{
		store:    store,
		ref:      ref,
		resolver: logic.NewLanguageResolver(ref, logger),
		engine:   blocks.NewEngine(store, ref, logger),
		audit:    audit,
		progress: progress,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// Preflight verifies the reference data needed before any batch runs: the
// language table loaded and at least one active schedule assignment exists.
func (p *Pipeline) Preflight(ctx context.Context) error {
	if p.ref == nil {
		return fmt.Errorf("reference data not loaded")
	}
	ok, err := p.store.HasActiveSchedule(ctx)
	if err != nil {
		return fmt.Errorf("preflight: %w", err)
	}
	if !ok {
		return fmt.Errorf("preflight: no active schedule assignments")
	}
	return nil
}

// CategorizeResult summarizes a categorization pass.
type CategorizeResult struct {
	Tagged int `json:"tagged"`
	Errors int `json:"errors"`
}

// Categorize tags every uncategorized spot with its processing category.
// With force set, all existing categories and both assignment tables are
// cleared first so the whole book reprocesses from scratch.
func (p *Pipeline) Categorize(ctx context.Context, force bool) (CategorizeResult, error) {
	var res CategorizeResult

	if force {
		if err := p.store.ClearCategories(ctx); err != nil {
			return res, err
		}
		if err := p.store.ClearAssignments(ctx); err != nil {
			return res, err
		}
		p.logger.Info("cleared categories and assignments for recategorization")
	}

	for {
		ids, err := p.store.ListUncategorized(ctx, p.cfg.ListLimit)
		if err != nil {
			return res, err
		}
		if len(ids) == 0 {
			return res, nil
		}
		taggedBefore := res.Tagged
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			spot, err := p.store.GetSpot(ctx, id)
			if err != nil {
				p.logger.Error("load spot for categorization", zap.Int("spot_id", id), zap.Error(err))
				res.Errors++
				continue
			}
			if spot.IsTrade() {
				continue
			}
			cat := logic.CategorizeSpot(spot)
			if err := p.store.SetCategory(ctx, id, cat); err != nil {
				p.logger.Error("set spot category", zap.Int("spot_id", id), zap.Error(err))
				res.Errors++
				continue
			}
			res.Tagged++
		}
		if len(ids) < p.cfg.ListLimit {
			return res, nil
		}
		if res.Tagged == taggedBefore {
			// A full page where nothing was tagged would be re-listed
			// unchanged forever.
			return res, fmt.Errorf("categorization stalled: %d spots failing", len(ids))
		}
	}
}

// ProcessCategory runs the full assignment pass over one category,
// optionally restricted to a single import batch.
func (p *Pipeline) ProcessCategory(ctx context.Context, category models.SpotCategory, importBatchID string) (models.BatchResult, error) {
	start := time.Now()
	result := models.BatchResult{BatchID: uuid.NewString()}

	if p.progress != nil {
		if err := p.progress.StartBatch(result.BatchID, string(category)); err != nil {
			p.logger.Warn("start batch progress", zap.Error(err))
		}
	}

	p.logger.Info("processing category",
		zap.String("category", string(category)),
		zap.String("batch_id", result.BatchID))

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	idCh := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range idCh {
				one := p.processSpot(ctx, id, category, result.BatchID)
				mu.Lock()
				result.Merge(one)
				mu.Unlock()
			}
		}()
	}

	// Keyset pagination over spot_id, so a category larger than one page is
	// still processed to exhaustion.
	var listErr error
	fed := 0
	afterID := 0
feed:
	for {
		ids, err := p.store.ListByCategory(ctx, category, importBatchID, afterID, p.cfg.ListLimit)
		if err != nil {
			listErr = fmt.Errorf("list %s spots: %w", category, err)
			break
		}
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			select {
			case <-ctx.Done():
				break feed
			case idCh <- id:
			}
		}
		fed += len(ids)
		afterID = ids[len(ids)-1]
		if len(ids) < p.cfg.ListLimit {
			break
		}
	}
	close(idCh)
	wg.Wait()

	if listErr != nil {
		return result, listErr
	}

	if p.progress != nil {
		if err := p.progress.FinishBatch(result.BatchID); err != nil {
			p.logger.Warn("finish batch progress", zap.Error(err))
		}
	}
	p.metrics.RecordBatchDuration(string(category), time.Since(start))
	p.logger.Info("category processed",
		zap.String("category", string(category)),
		zap.String("batch_id", result.BatchID),
		zap.Int("spots", fed),
		zap.Int("processed", result.Processed),
		zap.Int("assigned", result.Assigned),
		zap.Int("multi_block", result.MultiBlock),
		zap.Int("no_coverage", result.NoCoverage),
		zap.Int("review_flagged", result.ReviewFlagged),
		zap.Int("errors", result.Errors))

	return result, ctx.Err()
}

// ProcessAll runs every category in sequence and merges the results.
func (p *Pipeline) ProcessAll(ctx context.Context) (models.BatchResult, error) {
	var total models.BatchResult
	for _, cat := range []models.SpotCategory{
		models.CategoryLanguageRequired,
		models.CategoryReview,
		models.CategoryDefaultEnglish,
	} {
		res, err := p.ProcessCategory(ctx, cat, "")
		total.Merge(res)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// processSpot runs both engines for one spot and persists the results.
// Failures are isolated: the returned result carries the error count and
// the batch continues.
func (p *Pipeline) processSpot(ctx context.Context, spotID int, category models.SpotCategory, batchID string) models.BatchResult {
	var res models.BatchResult

	spot, err := p.store.GetSpot(ctx, spotID)
	if err != nil {
		p.logger.Error("load spot", zap.Int("spot_id", spotID), zap.Error(err))
		p.metrics.IncrementErrors()
		res.Errors++
		return res
	}
	if spot.IsTrade() {
		// Trade is excluded upstream; a tagged trade spot means the
		// importer misbehaved. Skip without counting it processed.
		p.logger.Warn("trade spot reached the pipeline", zap.Int("spot_id", spotID))
		return res
	}

	la := p.resolver.ResolveForCategory(spot, category)
	if err := p.store.UpsertLanguageAssignment(ctx, la); err != nil {
		p.logger.Error("upsert language assignment", zap.Int("spot_id", spotID), zap.Error(err))
		p.metrics.IncrementErrors()
		res.Errors++
		return res
	}
	if la.RequiresReview {
		res.ReviewFlagged++
		p.metrics.IncrementReviewFlagged()
	}

	ba, err := p.engine.Assign(ctx, spot)
	if err != nil {
		p.logger.Error("block assignment", zap.Int("spot_id", spotID), zap.Error(err))
		p.metrics.IncrementErrors()
		res.Errors++
		return res
	}
	ba.AssignedBy = p.cfg.AssignedBy
	if err := p.store.UpsertBlockAssignment(ctx, *ba); err != nil {
		p.logger.Error("upsert block assignment", zap.Int("spot_id", spotID), zap.Error(err))
		p.metrics.IncrementErrors()
		res.Errors++
		return res
	}

	res.Processed++
	p.metrics.IncrementProcessed(string(category))
	p.metrics.IncrementBlockAssignments(string(ba.CampaignType))
	switch classify(ba) {
	case outcomeNoCoverage:
		res.NoCoverage++
		p.metrics.IncrementNoCoverage()
	case outcomeMultiBlock:
		res.MultiBlock++
	default:
		res.Assigned++
	}

	p.recordAudit(ctx, batchID, category, la, *ba)
	p.reportProgress(batchID, ba)

	return res
}

type outcome int

const (
	outcomeAssigned outcome = iota
	outcomeMultiBlock
	outcomeNoCoverage
)

// classify buckets a block assignment for the batch counters: grid misses,
// true cross-language or day-wide spans, and everything else assigned.
func classify(b *models.BlockAssignment) outcome {
	if b.CustomerIntent == models.IntentNoGridCoverage {
		return outcomeNoCoverage
	}
	switch b.CampaignType {
	case models.CampaignROS, models.CampaignMultiLanguage,
		models.CampaignDirectResponse, models.CampaignPaidProgramming:
		return outcomeMultiBlock
	}
	return outcomeAssigned
}

// recordAudit appends both decisions to the analytics trail when configured.
func (p *Pipeline) recordAudit(ctx context.Context, batchID string, category models.SpotCategory,
	la models.LanguageAssignment, ba models.BlockAssignment) {
	if p.audit == nil || !p.cfg.AuditEvents {
		return
	}
	if err := p.audit.RecordLanguageResolution(ctx, batchID, category, la); err != nil && err != analytics.ErrUnavailable {
		p.logger.Warn("record language resolution", zap.Error(err))
	}
	if err := p.audit.RecordBlockDecision(ctx, batchID, ba); err != nil && err != analytics.ErrUnavailable {
		p.logger.Warn("record block decision", zap.Error(err))
	}
}

// reportProgress bumps the live batch counters when a progress store is wired.
func (p *Pipeline) reportProgress(batchID string, ba *models.BlockAssignment) {
	if p.progress == nil {
		return
	}
	if err := p.progress.IncrementBatchCounter(batchID, "processed"); err != nil {
		p.logger.Debug("progress counter", zap.Error(err))
		return
	}
	counter := "assigned"
	switch classify(ba) {
	case outcomeNoCoverage:
		counter = "no_coverage"
	case outcomeMultiBlock:
		counter = "multi_block"
	}
	if err := p.progress.IncrementBatchCounter(batchID, counter); err != nil {
		p.logger.Debug("progress counter", zap.Error(err))
	}
}

// Status reports the aggregate assignment state.
func (p *Pipeline) Status(ctx context.Context) (models.StatusSummary, error) {
	return p.store.Summary(ctx)
}

// ReviewRequired returns the human review queue.
func (p *Pipeline) ReviewRequired(ctx context.Context, limit int) ([]models.ReviewItem, error) {
	return p.store.ReviewQueue(ctx, limit)
}
