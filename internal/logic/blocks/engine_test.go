package blocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/refdata"
)

// fakeGrid is an in-memory ScheduleSource.
type fakeGrid struct {
	scheduleID  int
	hasSchedule bool
	blocks      []models.LanguageBlock
}

func (f *fakeGrid) ActiveScheduleFor(_ context.Context, _ int, _ time.Time) (int, bool, error) {
	return f.scheduleID, f.hasSchedule, nil
}

func (f *fakeGrid) BlocksFor(_ context.Context, _ int, _ string) ([]models.LanguageBlock, error) {
	return f.blocks, nil
}

func testRef() *refdata.Set {
	return refdata.NewSet([]models.Language{
		{LanguageID: refdata.LangEnglish, LanguageCode: "EN", LanguageName: "English"},
		{LanguageID: refdata.LangMandarin, LanguageCode: "M", LanguageName: "Mandarin"},
		{LanguageID: refdata.LangCantonese, LanguageCode: "C", LanguageName: "Cantonese"},
		{LanguageID: refdata.LangTagalog, LanguageCode: "T", LanguageName: "Tagalog"},
		{LanguageID: refdata.LangHmong, LanguageCode: "H", LanguageName: "Hmong"},
		{LanguageID: refdata.LangVietnamese, LanguageCode: "V", LanguageName: "Vietnamese"},
	})
}

func block(id, langID int, start, end, name string) models.LanguageBlock {
	return models.LanguageBlock{
		BlockID:    id,
		ScheduleID: 7,
		DayOfWeek:  "monday",
		TimeStart:  start,
		TimeEnd:    end,
		LanguageID: langID,
		BlockName:  name,
		IsActive:   true,
	}
}

func testSpot(id int, timeIn, timeOut, code string) *models.Spot {
	market := 1
	return &models.Spot{
		SpotID:       id,
		MarketID:     &market,
		AirDate:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		DayOfWeek:    "monday",
		TimeIn:       timeIn,
		TimeOut:      timeOut,
		LanguageCode: code,
	}
}

func newTestEngine(grid *fakeGrid) *Engine {
	return NewEngine(grid, testRef(), nil)
}

func TestAssign_NilSpot(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	_, err := e.Assign(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssign_NoMarket(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	spot := testSpot(1, "19:00:00", "20:00:00", "M")
	spot.MarketID = nil

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)

	assert.Equal(t, models.IntentNoGridCoverage, a.CustomerIntent)
	assert.True(t, a.RequiresAttention)
	assert.Contains(t, a.AlertReason, "no market")
}

func TestAssign_MissingTimeFields(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	spot := testSpot(2, "", "", "")

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)
	assert.Equal(t, models.IntentNoGridCoverage, a.CustomerIntent)
}

func TestAssign_UnparseableTimes(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	spot := testSpot(3, "not a time", "20:00:00", "")

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)
	assert.Equal(t, models.IntentNoGridCoverage, a.CustomerIntent)
	assert.Contains(t, a.AlertReason, "Unparseable")
}

func TestAssign_WorldLinkAgency(t *testing.T) {
	e := newTestEngine(&fakeGrid{hasSchedule: true, scheduleID: 7})
	spot := testSpot(10, "19:00:00", "19:30:00", "M")
	spot.AgencyName = "WorldLink Media"

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)

	assert.Equal(t, models.CampaignDirectResponse, a.CampaignType)
	assert.Equal(t, models.IntentIndifferent, a.CustomerIntent)
	assert.Equal(t, "worldlink_direct_response", a.BusinessRule)
	assert.True(t, a.SpansMultiple)
	assert.Empty(t, a.BlocksSpanned)
	require.NotNil(t, a.ScheduleID)
	assert.Equal(t, 1, *a.ScheduleID)
	assert.Nil(t, a.BlockID)
}

func TestAssign_WorldLinkBillCode(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	spot := testSpot(11, "08:00:00", "08:01:00", "")
	spot.BillCode = "WorldLink:ACME:123"

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)
	assert.Equal(t, "worldlink_direct_response", a.BusinessRule)
}

func TestAssign_PaidProgramming(t *testing.T) {
	e := newTestEngine(&fakeGrid{})
	spot := testSpot(12, "06:00:00", "07:00:00", "")
	spot.RevenueType = models.RevenuePaidProgramming

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)

	assert.Equal(t, models.CampaignPaidProgramming, a.CampaignType)
	assert.Equal(t, models.IntentIndifferent, a.CustomerIntent)
	assert.Equal(t, "revenue_type_paid_programming", a.BusinessRule)
	assert.True(t, a.SpansMultiple)
	assert.Empty(t, a.BlocksSpanned)
}

func TestAssign_OperationalChineseEvening(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(101, refdata.LangMandarin, "19:00:00", "20:00:00", "Mandarin Prime"),
		block(102, refdata.LangCantonese, "20:00:00", "21:00:00", "Cantonese Evening"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(20, "19:30:00", "20:30:00", "M"))
	require.NoError(t, err)

	assert.Equal(t, "operational_chinese_time", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	assert.Equal(t, models.IntentLanguageSpecific, a.CustomerIntent)
	assert.True(t, a.SpansMultiple)
	assert.Equal(t, []int{101, 102}, a.BlocksSpanned)
	require.NotNil(t, a.PrimaryBlockID)
	assert.Equal(t, 101, *a.PrimaryBlockID, "Mandarin Prime wins primary")
}

func TestAssign_OperationalChineseMorningSingleBlock(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(103, refdata.LangCantonese, "06:00:00", "08:00:00", "Cantonese Morning"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(21, "06:30:00", "07:00:00", "C"))
	require.NoError(t, err)

	assert.Equal(t, "operational_chinese_time", a.BusinessRule)
	assert.False(t, a.SpansMultiple)
	require.NotNil(t, a.BlockID)
	assert.Equal(t, 103, *a.BlockID)
}

func TestAssign_OperationalChineseFallsThroughWithoutChineseBlocks(t *testing.T) {
	// An evening spot over a Vietnamese-only grid must not be forced into a
	// Chinese bucket; the cascade continues to grid analysis.
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(104, refdata.LangVietnamese, "19:00:00", "21:00:00", "Vietnamese Evening"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(22, "19:00:00", "20:00:00", "V"))
	require.NoError(t, err)

	assert.Equal(t, "single_block_match", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	require.NotNil(t, a.BlockID)
	assert.Equal(t, 104, *a.BlockID)
}

func TestAssign_EnhancedChinesePattern(t *testing.T) {
	// A 19:00 start rolling past midnight runs over six hours, so the
	// operational window declines and the enhanced pattern picks it up,
	// spanning the evening Chinese blocks the spot actually airs over.
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(105, refdata.LangMandarin, "19:00:00", "21:00:00", "Mandarin Prime"),
		block(106, refdata.LangCantonese, "21:00:00", "24:00:00", "Cantonese Late"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(23, "19:00:00", "02:00:00", "M"))
	require.NoError(t, err)

	assert.Equal(t, "enhanced_chinese_pattern", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	assert.True(t, a.SpansMultiple)
	assert.Equal(t, []int{105, 106}, a.BlocksSpanned)
	require.NotNil(t, a.PrimaryBlockID)
	assert.Equal(t, 105, *a.PrimaryBlockID)
}

func TestAssign_MidnightRolloverOverlapsEveningBlock(t *testing.T) {
	// A 22:00-01:00 spot written with a plain clock end crosses midnight; it
	// still airs inside the 22:00 block and must not strand as no-coverage.
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(130, refdata.LangVietnamese, "22:00:00", "24:00:00", "Vietnamese Late"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(24, "22:00:00", "01:00:00", "V"))
	require.NoError(t, err)

	assert.Equal(t, "single_block_match", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	require.NotNil(t, a.BlockID)
	assert.Equal(t, 130, *a.BlockID)
}

func TestAssign_MidnightRolloverSpansBothSides(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(131, refdata.LangVietnamese, "22:00:00", "24:00:00", "Vietnamese Late"),
		block(132, refdata.LangVietnamese, "00:00:00", "02:00:00", "Vietnamese Overnight"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(25, "23:00:00", "01:00:00", "V"))
	require.NoError(t, err)

	assert.Equal(t, "multi_block_same_language", a.BusinessRule)
	assert.True(t, a.SpansMultiple)
	assert.Equal(t, []int{131, 132}, a.BlocksSpanned)
}

func TestAssign_ROSByDuration(t *testing.T) {
	e := newTestEngine(&fakeGrid{hasSchedule: true, scheduleID: 7})

	a, err := e.Assign(context.Background(), testSpot(30, "06:00:00", "19:00:00", ""))
	require.NoError(t, err)

	assert.Equal(t, models.CampaignROS, a.CampaignType)
	assert.Equal(t, models.IntentIndifferent, a.CustomerIntent)
	assert.Equal(t, "ros_duration", a.BusinessRule)
	assert.True(t, a.SpansMultiple)
	assert.Empty(t, a.BlocksSpanned)
	require.NotNil(t, a.ScheduleID)
	assert.Equal(t, 7, *a.ScheduleID)
}

func TestAssign_ROSDurationBoundary(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(106, refdata.LangVietnamese, "08:00:00", "15:00:00", "Vietnamese Day"),
	}}
	e := newTestEngine(grid)

	// Exactly 360 minutes is not ROS; 361 is.
	a, err := e.Assign(context.Background(), testSpot(31, "08:00:00", "14:00:00", ""))
	require.NoError(t, err)
	assert.Equal(t, "single_block_match", a.BusinessRule)

	a, err = e.Assign(context.Background(), testSpot(32, "08:00:00", "14:01:00", ""))
	require.NoError(t, err)
	assert.Equal(t, "ros_duration", a.BusinessRule)
}

func TestAssign_ROSTimePattern(t *testing.T) {
	e := newTestEngine(&fakeGrid{hasSchedule: true, scheduleID: 7})

	cases := []struct {
		name             string
		timeIn, timeOut  string
	}{
		{"full afternoon", "13:00:00", "23:59:00"},
		{"late overnight", "22:00:00", "1 day, 0:00:00"},
		{"early overnight", "05:00:00", "1 day, 0:00:00"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := e.Assign(context.Background(), testSpot(33, c.timeIn, c.timeOut, ""))
			require.NoError(t, err)
			assert.Equal(t, models.CampaignROS, a.CampaignType)
		})
	}
}

func TestAssign_TagalogPattern(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(107, refdata.LangTagalog, "16:00:00", "19:00:00", "Tagalog Evening"),
		block(108, refdata.LangVietnamese, "15:00:00", "17:00:00", "Vietnamese Afternoon"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(40, "17:00:00", "19:00:00", "T"))
	require.NoError(t, err)

	assert.Equal(t, "tagalog_pattern", a.BusinessRule)
	require.NotNil(t, a.BlockID)
	assert.Equal(t, 107, *a.BlockID)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
}

func TestAssign_ChineseFamilySpanFromGrid(t *testing.T) {
	// A weekend early-evening Hmong-hinted spot skips the operational
	// window; the 19:00-to-midnight shape over Chinese blocks then gets the
	// family span treatment with every overlapped block recorded.
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(110, refdata.LangMandarin, "19:00:00", "21:00:00", "Mandarin Prime"),
		block(111, refdata.LangCantonese, "21:00:00", "23:00:00", "Cantonese Late"),
		block(112, refdata.LangHmong, "23:00:00", "24:00:00", "Hmong Late"),
	}}
	e := newTestEngine(grid)
	spot := testSpot(41, "19:00:00", "23:59:00", "H")
	spot.DayOfWeek = "saturday"

	a, err := e.Assign(context.Background(), spot)
	require.NoError(t, err)

	assert.Equal(t, "chinese_family_span", a.BusinessRule)
	assert.True(t, a.SpansMultiple)
	assert.Equal(t, []int{110, 111, 112}, a.BlocksSpanned)
	require.NotNil(t, a.PrimaryBlockID)
	assert.Equal(t, 110, *a.PrimaryBlockID)
}

func TestAssign_MultiBlockSameLanguage(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(113, refdata.LangVietnamese, "08:00:00", "10:00:00", "Vietnamese AM"),
		block(114, refdata.LangVietnamese, "10:00:00", "12:00:00", "Vietnamese Midday"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(42, "08:30:00", "11:30:00", "V"))
	require.NoError(t, err)

	assert.Equal(t, "multi_block_same_language", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	assert.True(t, a.SpansMultiple)
	assert.Len(t, a.BlocksSpanned, 2)
	assert.False(t, a.RequiresAttention)
}

func TestAssign_MultiBlockSameFamily(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(115, refdata.LangMandarin, "09:00:00", "11:00:00", "Mandarin AM"),
		block(116, refdata.LangCantonese, "11:00:00", "13:00:00", "Cantonese Midday"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(43, "09:30:00", "12:30:00", ""))
	require.NoError(t, err)

	assert.Equal(t, "multi_block_same_family", a.BusinessRule)
	assert.Equal(t, models.CampaignLanguageSpecific, a.CampaignType)
	assert.False(t, a.RequiresAttention)
}

func TestAssign_MultiLanguageSpanFlagsAttention(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(117, refdata.LangTagalog, "08:00:00", "10:00:00", "Tagalog AM"),
		block(118, refdata.LangVietnamese, "10:00:00", "12:00:00", "Vietnamese Midday"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(44, "08:30:00", "11:30:00", "T"))
	require.NoError(t, err)

	assert.Equal(t, "multi_language_span", a.BusinessRule)
	assert.Equal(t, models.CampaignMultiLanguage, a.CampaignType)
	assert.Equal(t, models.IntentTimeSpecific, a.CustomerIntent)
	assert.True(t, a.RequiresAttention)
	assert.Equal(t, "Spans 2 languages: Tagalog, Vietnamese", a.AlertReason)
	require.NotNil(t, a.PrimaryBlockID)
	assert.Equal(t, 117, *a.PrimaryBlockID, "primary follows the spot's own language")
}

func TestAssign_CrossFamilyBlockCountBecomesROS(t *testing.T) {
	// Fifteen short blocks across families is treated as run-of-schedule,
	// not an alert.
	var blocks []models.LanguageBlock
	langs := []int{refdata.LangTagalog, refdata.LangVietnamese, refdata.LangHmong}
	for i := 0; i < 15; i++ {
		start := 8*60 + i*24
		end := start + 24
		blocks = append(blocks, models.LanguageBlock{
			BlockID:    200 + i,
			ScheduleID: 7,
			DayOfWeek:  "monday",
			TimeStart:  clock(start),
			TimeEnd:    clock(end),
			LanguageID: langs[i%len(langs)],
			IsActive:   true,
		})
	}
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: blocks}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(45, "08:00:00", "14:00:00", ""))
	require.NoError(t, err)

	assert.Equal(t, "ros_multi_family_span", a.BusinessRule)
	assert.Equal(t, models.CampaignROS, a.CampaignType)
	assert.Equal(t, models.IntentIndifferent, a.CustomerIntent)
	assert.False(t, a.RequiresAttention)
	assert.Len(t, a.BlocksSpanned, 15)
}

func TestAssign_NoActiveSchedule(t *testing.T) {
	e := newTestEngine(&fakeGrid{hasSchedule: false})

	a, err := e.Assign(context.Background(), testSpot(50, "10:00:00", "11:00:00", ""))
	require.NoError(t, err)

	assert.Equal(t, models.IntentNoGridCoverage, a.CustomerIntent)
	assert.True(t, a.RequiresAttention)
	assert.Contains(t, a.AlertReason, "No active schedule")
}

func TestAssign_NoOverlappingBlocks(t *testing.T) {
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(120, refdata.LangVietnamese, "18:00:00", "20:00:00", "Vietnamese Evening"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(51, "10:00:00", "11:00:00", ""))
	require.NoError(t, err)

	assert.Equal(t, models.IntentNoGridCoverage, a.CustomerIntent)
	assert.Contains(t, a.AlertReason, "No language blocks overlap")
}

func TestAssign_GridSpansAlwaysCarryBlocks(t *testing.T) {
	// Any grid-derived multi-block assignment must list at least two blocks;
	// only the day-wide business rules carry an empty span list.
	grid := &fakeGrid{hasSchedule: true, scheduleID: 7, blocks: []models.LanguageBlock{
		block(121, refdata.LangTagalog, "08:00:00", "10:00:00", "Tagalog AM"),
		block(122, refdata.LangVietnamese, "10:00:00", "12:00:00", "Vietnamese Midday"),
	}}
	e := newTestEngine(grid)

	a, err := e.Assign(context.Background(), testSpot(52, "08:30:00", "11:30:00", ""))
	require.NoError(t, err)
	require.True(t, a.SpansMultiple)
	assert.GreaterOrEqual(t, len(a.BlocksSpanned), 2)
}

// clock renders minutes since midnight as HH:MM:SS.
func clock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format("15:04:05")
}
