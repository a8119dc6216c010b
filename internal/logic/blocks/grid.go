package blocks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// analyzeGrid places a spot that matched no business rule by overlapping it
// against the market's weekly grid.
func (e *Engine) analyzeGrid(ctx context.Context, sc *spotContext) (*models.BlockAssignment, error) {
	_, ok, err := e.resolveSchedule(ctx, sc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return e.noCoverage(sc.spot,
			fmt.Sprintf("No active schedule for market %d on %s",
				*sc.spot.MarketID, sc.spot.AirDate.Format("2006-01-02"))), nil
	}

	blocks, err := e.overlappedBlocks(ctx, sc)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return e.noCoverage(sc.spot,
			fmt.Sprintf("No language blocks overlap %s-%s on %s",
				sc.spot.TimeIn, sc.spot.TimeOut, sc.spot.DayOfWeek)), nil
	}

	// Chinese family span: a 19:00-to-midnight buy over any Chinese block
	// belongs to the Chinese prime bucket whole. The normalized 1440 end is
	// canonical; a literal 23:59:00 end is treated as the same shape.
	if sc.start == minute1900 && sc.eodEnd() {
		var chinese []models.LanguageBlock
		for _, b := range blocks {
			if e.ref.IsChinese(b.LanguageID) {
				chinese = append(chinese, b)
			}
		}
		if len(chinese) > 0 {
			primary := e.primaryChinese(chinese)
			a := &models.BlockAssignment{
				SpotID:         sc.spot.SpotID,
				ScheduleID:     intPtr(sc.scheduleID),
				SpansMultiple:  len(blocks) > 1,
				BlocksSpanned:  blockIDs(blocks),
				PrimaryBlockID: intPtr(primary.BlockID),
				CustomerIntent: models.IntentLanguageSpecific,
				CampaignType:   models.CampaignLanguageSpecific,
				BusinessRule:   "chinese_family_span",
				AssignedDate:   e.nowFn(),
				AssignedBy:     AssignedBy,
			}
			if len(blocks) == 1 {
				a.BlockID = intPtr(primary.BlockID)
			}
			return a, nil
		}
	}

	// Tagalog pattern, evaluated here so the actual Tagalog block from the
	// grid gets selected.
	if tagalogTimePattern(sc) {
		for _, b := range blocks {
			if b.LanguageID == refdata.LangTagalog {
				return e.singleBlockAssignment(sc, b, "tagalog_pattern"), nil
			}
		}
	}

	if len(blocks) == 1 {
		return e.singleBlockAssignment(sc, blocks[0], "single_block_match"), nil
	}

	return e.analyzeMultiBlock(sc, blocks), nil
}

// singleBlockAssignment emits the one-block language-specific shape.
func (e *Engine) singleBlockAssignment(sc *spotContext, b models.LanguageBlock, rule string) *models.BlockAssignment {
	return &models.BlockAssignment{
		SpotID:         sc.spot.SpotID,
		ScheduleID:     intPtr(sc.scheduleID),
		BlockID:        intPtr(b.BlockID),
		BlocksSpanned:  []int{b.BlockID},
		PrimaryBlockID: intPtr(b.BlockID),
		CustomerIntent: models.IntentLanguageSpecific,
		CampaignType:   models.CampaignLanguageSpecific,
		BusinessRule:   rule,
		AssignedDate:   e.nowFn(),
		AssignedBy:     AssignedBy,
	}
}

// analyzeMultiBlock classifies a spot spanning two or more blocks by the
// languages involved: one language or one family stays language-specific; a
// cross-family span is either an attention-worthy multi-language buy or,
// past the duration/block-count thresholds, plain ROS.
func (e *Engine) analyzeMultiBlock(sc *spotContext, blocks []models.LanguageBlock) *models.BlockAssignment {
	unique := make(map[int]struct{}, len(blocks))
	for _, b := range blocks {
		unique[b.LanguageID] = struct{}{}
	}
	languageIDs := make([]int, 0, len(unique))
	for id := range unique {
		languageIDs = append(languageIDs, id)
	}
	sort.Ints(languageIDs)

	primary := e.primaryBlockFor(sc, blocks)
	base := models.BlockAssignment{
		SpotID:         sc.spot.SpotID,
		ScheduleID:     intPtr(sc.scheduleID),
		SpansMultiple:  true,
		BlocksSpanned:  blockIDs(blocks),
		PrimaryBlockID: intPtr(primary.BlockID),
		AssignedDate:   e.nowFn(),
		AssignedBy:     AssignedBy,
	}

	if len(languageIDs) == 1 {
		base.CustomerIntent = models.IntentLanguageSpecific
		base.CampaignType = models.CampaignLanguageSpecific
		base.BusinessRule = "multi_block_same_language"
		return &base
	}
	if _, ok := e.ref.SameFamily(languageIDs); ok {
		base.CustomerIntent = models.IntentLanguageSpecific
		base.CampaignType = models.CampaignLanguageSpecific
		base.BusinessRule = "multi_block_same_family"
		return &base
	}

	if sc.duration >= rosFamilyDurationMinutes || len(blocks) >= rosFamilyBlockCount {
		base.CustomerIntent = models.IntentIndifferent
		base.CampaignType = models.CampaignROS
		base.BusinessRule = "ros_multi_family_span"
		return &base
	}

	names := make([]string, len(languageIDs))
	for i, id := range languageIDs {
		names[i] = e.ref.LanguageName(id)
	}
	base.CustomerIntent = models.IntentTimeSpecific
	base.CampaignType = models.CampaignMultiLanguage
	base.RequiresAttention = true
	base.AlertReason = fmt.Sprintf("Spans %d languages: %s", len(names), strings.Join(names, ", "))
	base.BusinessRule = "multi_language_span"
	return &base
}

// primaryBlockFor picks the block whose language matches the spot's own
// language code when there is one, falling back to the first block in
// schedule order.
func (e *Engine) primaryBlockFor(sc *spotContext, blocks []models.LanguageBlock) models.LanguageBlock {
	if langID, ok := e.ref.LanguageIDForCode(sc.hint); ok {
		for _, b := range blocks {
			if b.LanguageID == langID {
				return b
			}
		}
	}
	return blocks[0]
}
