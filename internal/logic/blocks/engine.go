// Package blocks implements the language block assignment engine: an
// ordered business-rule cascade followed by grid overlap analysis. Rules are
// data in a slice so precedence is inspectable; the first rule to return a
// decision wins and later rules never run.
package blocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/airtime"
	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// AssignedBy is recorded on every engine-produced block assignment.
const AssignedBy = "block_engine"

// ScheduleSource is the slice of the spot store the engine needs: schedule
// resolution and grid reads.
type ScheduleSource interface {
	ActiveScheduleFor(ctx context.Context, marketID int, airDate time.Time) (int, bool, error)
	BlocksFor(ctx context.Context, scheduleID int, dayOfWeek string) ([]models.LanguageBlock, error)
}

// Engine assigns spots to language blocks.
type Engine struct {
	grid   ScheduleSource
	ref    *refdata.Set
	logger *zap.Logger
	rules  []businessRule
	nowFn  func() time.Time
}

// businessRule is one step of the precedence cascade. apply returns a nil
// assignment when the rule does not match, letting the cascade continue.
type businessRule struct {
	name  string
	apply func(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error)
}

// NewEngine constructs the engine with the standard rule ordering:
// WorldLink direct response, paid programming, operational Chinese time,
// enhanced Chinese pattern, ROS by duration, ROS by time pattern. Grid
// analysis runs when no rule fires.
func NewEngine(grid ScheduleSource, ref *refdata.Set, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{grid: grid, ref: ref, logger: logger, nowFn: time.Now}
	e.rules = []businessRule{
		{name: "worldlink_direct_response", apply: e.applyWorldLink},
		{name: "revenue_type_paid_programming", apply: e.applyPaidProgramming},
		{name: "operational_chinese_time", apply: e.applyOperationalChinese},
		{name: "enhanced_chinese_pattern", apply: e.applyEnhancedChinese},
		{name: "ros_duration", apply: e.applyROSDuration},
		{name: "ros_time_pattern", apply: e.applyROSTimePattern},
	}
	return e
}

// spotContext carries the parsed time fields and lazily resolved grid state
// for one spot through the cascade.
type spotContext struct {
	spot     *models.Spot
	start    int // minutes since midnight
	end      int // normalized; next-day midnight is 1440, a clock rollover runs past it
	duration int
	hint     string // upper-cased raw language code
	nextDay  bool   // end was a next-day midnight spelling

	scheduleResolved bool
	scheduleID       int
	scheduleOK       bool

	blocksResolved bool
	blocks         []models.LanguageBlock
}

// eodEnd reports whether the spot runs to end of day: 23:59, 24:00:00, or a
// next-day midnight token.
func (sc *spotContext) eodEnd() bool {
	return sc.end == airtime.MinutesPerDay || sc.end == 23*60+59
}

// weekend reports whether the spot airs Saturday or Sunday.
func (sc *spotContext) weekend() bool {
	d := strings.ToLower(sc.spot.DayOfWeek)
	return d == "saturday" || d == "sunday"
}

// Assign runs the cascade for one spot and returns its block assignment.
// Missing inputs short-circuit to a no-coverage assignment; the engine
// never returns a nil assignment alongside a nil error.
func (e *Engine) Assign(ctx context.Context, spot *models.Spot) (*models.BlockAssignment, error) {
	if spot == nil {
		return nil, models.ErrNotFound
	}
	if spot.MarketID == nil {
		return e.noCoverage(spot, "Spot has no market assignment"), nil
	}
	if spot.AirDate.IsZero() || spot.DayOfWeek == "" || spot.TimeIn == "" || spot.TimeOut == "" {
		return e.noCoverage(spot, "Spot is missing air date or time fields"), nil
	}

	sc, err := e.newSpotContext(spot)
	if err != nil {
		e.logger.Warn("unparseable spot times",
			zap.Int("spot_id", spot.SpotID),
			zap.String("time_in", spot.TimeIn),
			zap.String("time_out", spot.TimeOut),
			zap.Error(err))
		return e.noCoverage(spot, fmt.Sprintf("Unparseable spot times: %v", err)), nil
	}

	for _, rule := range e.rules {
		a, err := rule.apply(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.name, err)
		}
		if a != nil {
			e.logger.Debug("business rule matched",
				zap.Int("spot_id", spot.SpotID),
				zap.String("rule", rule.name))
			return a, nil
		}
	}

	a, err := e.analyzeGrid(ctx, sc)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// The analyzer covers every branch; reaching here means a bug
		// upstream, so emit a constraint-satisfying fallback instead of
		// dropping the spot.
		fb := e.noCoverage(spot, "Block analysis returned no decision")
		fb.BusinessRule = "defensive_fallback"
		return fb, nil
	}
	return a, nil
}

// newSpotContext parses the spot's time fields.
func (e *Engine) newSpotContext(spot *models.Spot) (*spotContext, error) {
	start, err := airtime.ParseClock(spot.TimeIn)
	if err != nil {
		return nil, fmt.Errorf("time_in: %w", err)
	}
	end, err := airtime.NormalizeEnd(spot.TimeOut)
	if err != nil {
		return nil, fmt.Errorf("time_out: %w", err)
	}
	if end < start {
		// A plain clock end before the start is a midnight crossing, e.g.
		// 22:00:00-01:00:00. Carrying the end past MinutesPerDay keeps the
		// duration right and lets overlap checks see both segments.
		end += airtime.MinutesPerDay
	}
	return &spotContext{
		spot:     spot,
		start:    start,
		end:      end,
		duration: airtime.Span(start, end),
		hint:     strings.ToUpper(strings.TrimSpace(spot.LanguageCode)),
		nextDay:  airtime.IsNextDayMidnight(spot.TimeOut),
	}, nil
}

// resolveSchedule resolves and caches the active schedule for the spot.
func (e *Engine) resolveSchedule(ctx context.Context, sc *spotContext) (int, bool, error) {
	if sc.scheduleResolved {
		return sc.scheduleID, sc.scheduleOK, nil
	}
	id, ok, err := e.grid.ActiveScheduleFor(ctx, *sc.spot.MarketID, sc.spot.AirDate)
	if err != nil {
		return 0, false, fmt.Errorf("resolve schedule: %w", err)
	}
	sc.scheduleResolved = true
	sc.scheduleID = id
	sc.scheduleOK = ok
	return id, ok, nil
}

// overlappedBlocks returns the active blocks for the spot's schedule and day
// that overlap its air window, cached on the context.
func (e *Engine) overlappedBlocks(ctx context.Context, sc *spotContext) ([]models.LanguageBlock, error) {
	if sc.blocksResolved {
		return sc.blocks, nil
	}
	id, ok, err := e.resolveSchedule(ctx, sc)
	if err != nil {
		return nil, err
	}
	sc.blocksResolved = true
	if !ok {
		sc.blocks = nil
		return nil, nil
	}
	all, err := e.grid.BlocksFor(ctx, id, sc.spot.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	var overlapped []models.LanguageBlock
	for _, b := range all {
		bs, err := airtime.ParseClock(b.TimeStart)
		if err != nil {
			e.logger.Warn("malformed block start", zap.Int("block_id", b.BlockID), zap.Error(err))
			continue
		}
		be, err := airtime.NormalizeEnd(b.TimeEnd)
		if err != nil {
			e.logger.Warn("malformed block end", zap.Int("block_id", b.BlockID), zap.Error(err))
			continue
		}
		if airtime.Overlaps(sc.start, sc.end, bs, be) {
			overlapped = append(overlapped, b)
		}
	}
	sc.blocks = overlapped
	return overlapped, nil
}

// noCoverage builds the short-circuit assignment for spots the grid cannot
// place.
func (e *Engine) noCoverage(spot *models.Spot, reason string) *models.BlockAssignment {
	return &models.BlockAssignment{
		SpotID:            spot.SpotID,
		CustomerIntent:    models.IntentNoGridCoverage,
		RequiresAttention: true,
		AlertReason:       reason,
		AssignedDate:      e.nowFn(),
		AssignedBy:        AssignedBy,
	}
}
