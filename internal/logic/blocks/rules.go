package blocks

import (
	"context"
	"strings"

	"github.com/patrickwarner/spotlang/internal/airtime"
	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// Minute positions for the named time patterns.
const (
	minute0600 = 6 * 60
	minute1300 = 13 * 60
	minute1600 = 16 * 60
	minute1700 = 17 * 60
	minute1900 = 19 * 60
	minute2000 = 20 * 60
	minute2330 = 23*60 + 30
	minute2359 = 23*60 + 59
)

// rosDurationMinutes is the threshold past which a spot is run-of-schedule
// by duration alone (6 hours).
const rosDurationMinutes = 360

// rosFamilyDurationMinutes and rosFamilyBlockCount are the multi-family
// thresholds past which a cross-language span stops being an alert and
// becomes plain ROS (17 hours or 15 blocks).
const (
	rosFamilyDurationMinutes = 1020
	rosFamilyBlockCount      = 15
)

// chineseHint reports whether the raw language code points at the Chinese
// family: Mandarin, Cantonese, or the mixed M/C form.
func chineseHint(hint string) bool {
	return hint == "M" || hint == "C" || hint == "M/C"
}

// chineseTimePattern is the enhanced Chinese prime pattern: a Chinese-hinted
// spot starting at 19:00 or 20:00 and running to end of day, or starting
// anywhere from 19:00 through 23:30.
func chineseTimePattern(sc *spotContext) bool {
	if !chineseHint(sc.hint) {
		return false
	}
	if (sc.start == minute1900 || sc.start == minute2000) && sc.eodEnd() {
		return true
	}
	return sc.start >= minute1900 && sc.start <= minute2330
}

// tagalogTimePattern is the Tagalog early-evening pattern: 16:00 or 17:00
// through 19:00 with a "T" hint.
func tagalogTimePattern(sc *spotContext) bool {
	return sc.hint == "T" &&
		(sc.start == minute1600 || sc.start == minute1700) &&
		sc.end == minute1900
}

// applyWorldLink is the highest-precedence rule: WorldLink placements are
// direct response regardless of any time or language pattern.
func (e *Engine) applyWorldLink(_ context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if !strings.Contains(sc.spot.AgencyName, "WorldLink") &&
		!strings.Contains(sc.spot.BillCode, "WorldLink") {
		return nil, nil
	}
	return e.dayWideAssignment(sc, models.CampaignDirectResponse, "worldlink_direct_response"), nil
}

// applyPaidProgramming tags paid programming revenue with the same day-wide
// shape as direct response.
func (e *Engine) applyPaidProgramming(_ context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if sc.spot.RevenueType != models.RevenuePaidProgramming {
		return nil, nil
	}
	return e.dayWideAssignment(sc, models.CampaignPaidProgramming, "revenue_type_paid_programming"), nil
}

// dayWideAssignment is the structural shape shared by WorldLink and paid
// programming decisions: schedule 1, no block, day-wide span. The empty
// span list is deliberate; legacy report totals depend on it.
func (e *Engine) dayWideAssignment(sc *spotContext, ct models.CampaignType, rule string) *models.BlockAssignment {
	scheduleID := 1
	return &models.BlockAssignment{
		SpotID:         sc.spot.SpotID,
		ScheduleID:     &scheduleID,
		SpansMultiple:  true,
		BlocksSpanned:  []int{},
		CustomerIntent: models.IntentIndifferent,
		CampaignType:   ct,
		BusinessRule:   rule,
		AssignedDate:   e.nowFn(),
		AssignedBy:     AssignedBy,
	}
}

// applyOperationalChinese places short spots airing in the Chinese
// operational windows (06:00-08:00 morning, 19:00-24:00 evening) onto the
// overlapping Chinese blocks. When no Chinese block overlaps, the rule
// suppresses itself and the cascade continues; this keeps genuinely
// non-Chinese evening programming out of the Chinese buckets.
func (e *Engine) applyOperationalChinese(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if sc.duration > rosDurationMinutes {
		return nil, nil
	}
	// The 13:00-23:59 full-afternoon shape is a ROS pattern, not a
	// Chinese window, even though it enters the evening hours.
	if sc.start == minute1300 && sc.end == minute2359 {
		return nil, nil
	}

	hour := airtime.Hour(sc.start)
	// An 18:00 Tagalog spot falls through so the Tagalog grid pattern can
	// claim it.
	if hour == 18 && sc.hint == "T" {
		return nil, nil
	}
	morning := hour >= 6 && hour < 8
	evening := hour >= 19 && hour < 24
	if !morning && !evening {
		return nil, nil
	}
	// Weekend early-evening Hmong programming: leave it for grid overlap.
	if evening && sc.weekend() && hour < 20 && sc.hint == "H" {
		return nil, nil
	}

	return e.assignChineseSpan(ctx, sc, "operational_chinese_time")
}

// applyEnhancedChinese catches Chinese-hinted prime spots the operational
// window missed, typically long 19:00-to-midnight buys.
func (e *Engine) applyEnhancedChinese(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if !chineseTimePattern(sc) {
		return nil, nil
	}
	return e.assignChineseSpan(ctx, sc, "enhanced_chinese_pattern")
}

// assignChineseSpan resolves the grid and emits a language-specific
// assignment over the overlapping Chinese blocks, or nil when there are
// none so the cascade can continue.
func (e *Engine) assignChineseSpan(ctx context.Context, sc *spotContext, rule string) (*models.BlockAssignment, error) {
	blocks, err := e.overlappedBlocks(ctx, sc)
	if err != nil {
		return nil, err
	}
	var chinese []models.LanguageBlock
	for _, b := range blocks {
		if e.ref.IsChinese(b.LanguageID) {
			chinese = append(chinese, b)
		}
	}
	if len(chinese) == 0 {
		return nil, nil
	}

	primary := e.primaryChinese(chinese)
	a := &models.BlockAssignment{
		SpotID:         sc.spot.SpotID,
		ScheduleID:     intPtr(sc.scheduleID),
		SpansMultiple:  len(chinese) > 1,
		BlocksSpanned:  blockIDs(chinese),
		PrimaryBlockID: intPtr(primary.BlockID),
		CustomerIntent: models.IntentLanguageSpecific,
		CampaignType:   models.CampaignLanguageSpecific,
		BusinessRule:   rule,
		AssignedDate:   e.nowFn(),
		AssignedBy:     AssignedBy,
	}
	if len(chinese) == 1 {
		a.BlockID = intPtr(primary.BlockID)
	}
	return a, nil
}

// applyROSDuration tags anything longer than six hours as run-of-schedule,
// unless the Tagalog pattern claims it first during grid analysis.
func (e *Engine) applyROSDuration(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if tagalogTimePattern(sc) {
		return nil, nil
	}
	if sc.duration <= rosDurationMinutes {
		return nil, nil
	}
	return e.rosAssignment(ctx, sc, "ros_duration")
}

// applyROSTimePattern tags the named full-day and overnight shapes as
// run-of-schedule. Chinese and Tagalog patterns are excluded so their grid
// rules keep precedence over the shape match.
func (e *Engine) applyROSTimePattern(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	if chineseTimePattern(sc) || tagalogTimePattern(sc) {
		return nil, nil
	}
	startHour := airtime.Hour(sc.start)
	match := (sc.start == minute1300 && sc.end == minute2359) ||
		(sc.nextDay && startHour >= 21) ||
		(sc.nextDay && startHour <= 6) ||
		(sc.start == minute0600 && sc.end == minute2359)
	if !match {
		return nil, nil
	}
	return e.rosAssignment(ctx, sc, "ros_time_pattern")
}

// rosAssignment emits the run-of-schedule shape. The schedule is resolved
// when the market has one but a miss is not an error here: ROS needs no
// block.
func (e *Engine) rosAssignment(ctx context.Context, sc *spotContext, rule string) (*models.BlockAssignment, error) {
	a := &models.BlockAssignment{
		SpotID:         sc.spot.SpotID,
		SpansMultiple:  true,
		BlocksSpanned:  []int{},
		CustomerIntent: models.IntentIndifferent,
		CampaignType:   models.CampaignROS,
		BusinessRule:   rule,
		AssignedDate:   e.nowFn(),
		AssignedBy:     AssignedBy,
	}
	if id, ok, err := e.resolveSchedule(ctx, sc); err == nil && ok {
		a.ScheduleID = intPtr(id)
	}
	return a, nil
}

// primaryChinese picks the reporting block among Chinese blocks: a Mandarin
// prime block first, then any Mandarin, then any Cantonese, then the first.
func (e *Engine) primaryChinese(chinese []models.LanguageBlock) models.LanguageBlock {
	for _, b := range chinese {
		if b.LanguageID == refdata.LangMandarin && strings.Contains(b.BlockName, "Prime") {
			return b
		}
	}
	for _, b := range chinese {
		if b.LanguageID == refdata.LangMandarin {
			return b
		}
	}
	for _, b := range chinese {
		if b.LanguageID == refdata.LangCantonese {
			return b
		}
	}
	return chinese[0]
}

func blockIDs(blocks []models.LanguageBlock) []int {
	ids := make([]int, len(blocks))
	for i, b := range blocks {
		ids[i] = b.BlockID
	}
	return ids
}

func intPtr(v int) *int { return &v }
