package models

import "time"

// SpotCategory partitions spots into the three processing paths.
// The string values are the persistence form in the spots.spot_category column.
type SpotCategory string

const (
	CategoryLanguageRequired SpotCategory = "language_required" // language code must resolve
	CategoryReview           SpotCategory = "review"            // human review before trusting
	CategoryDefaultEnglish   SpotCategory = "default_english"   // fixed English assignment
)

// LanguageStatus describes how the language code on an assignment was arrived at.
type LanguageStatus string

const (
	StatusDetermined   LanguageStatus = "determined"   // code resolved from the spot
	StatusUndetermined LanguageStatus = "undetermined" // raw code was the "L" sentinel
	StatusDefault      LanguageStatus = "default"      // defaulted to English
	StatusInvalid      LanguageStatus = "invalid"      // raw code not in the languages table
)

// Assignment method tags recorded on language assignments. Kept stable: the
// revenue reports group by these strings.
const (
	MethodErrorFallback          = "error_fallback"
	MethodAutoDefaultComBB       = "auto_default_com_bb"
	MethodDefaultEnglish         = "default_english"
	MethodUndeterminedFlagged    = "undetermined_flagged"
	MethodDirectMapping          = "direct_mapping"
	MethodInvalidCodeFlagged     = "invalid_code_flagged"
	MethodBusinessReviewRequired = "business_review_required"
	MethodBusinessDefaultEnglish = "business_rule_default_english"
)

// CustomerIntent is the inferred targeting shape behind a spot buy.
type CustomerIntent string

const (
	IntentLanguageSpecific CustomerIntent = "language_specific"
	IntentTimeSpecific     CustomerIntent = "time_specific"
	IntentIndifferent      CustomerIntent = "indifferent"
	IntentNoGridCoverage   CustomerIntent = "no_grid_coverage"
)

// CampaignType is the coarse revenue-report bucket derived from a block assignment.
type CampaignType string

const (
	CampaignLanguageSpecific CampaignType = "language_specific"
	CampaignMultiLanguage    CampaignType = "multi_language"
	CampaignROS              CampaignType = "ros"
	CampaignDirectResponse   CampaignType = "direct_response"
	CampaignPaidProgramming  CampaignType = "paid_programming"
	CampaignRoadblock        CampaignType = "roadblock"
)

// LanguageAssignment is the per-spot language code decision, keyed by SpotID
// with upsert semantics.
type LanguageAssignment struct {
	SpotID         int            `json:"spot_id"`
	LanguageCode   string         `json:"language_code"` // canonical, or the raw value on failure
	Status         LanguageStatus `json:"status"`
	Confidence     float64        `json:"confidence"` // 0..1
	Method         string         `json:"method"`
	RequiresReview bool           `json:"requires_review"`
	Notes          string         `json:"notes,omitempty"`
	AssignedDate   time.Time      `json:"assigned_date"`
}

// BlockAssignment is the per-spot language block decision, keyed by SpotID
// with upsert semantics.
//
// When SpansMultiple is true the spot has no single BlockID; BlocksSpanned
// carries the overlapped blocks (in schedule order) and PrimaryBlockID the
// reporting block. Business-rule decisions (WorldLink, paid programming, ROS)
// span the whole day and carry an empty BlocksSpanned, matching the legacy
// report totals.
type BlockAssignment struct {
	SpotID            int            `json:"spot_id"`
	ScheduleID        *int           `json:"schedule_id,omitempty"`
	BlockID           *int           `json:"block_id,omitempty"`
	SpansMultiple     bool           `json:"spans_multiple_blocks"`
	BlocksSpanned     []int          `json:"blocks_spanned,omitempty"`
	PrimaryBlockID    *int           `json:"primary_block_id,omitempty"`
	CustomerIntent    CustomerIntent `json:"customer_intent"`
	CampaignType      CampaignType   `json:"campaign_type,omitempty"`
	RequiresAttention bool           `json:"requires_attention"`
	AlertReason       string         `json:"alert_reason,omitempty"`
	BusinessRule      string         `json:"business_rule_applied,omitempty"`
	AssignedDate      time.Time      `json:"assigned_date"`
	AssignedBy        string         `json:"assigned_by"`
}

// BatchResult aggregates one processing run.
type BatchResult struct {
	BatchID       string `json:"batch_id"`
	Processed     int    `json:"processed"`
	Assigned      int    `json:"assigned"`
	MultiBlock    int    `json:"multi_block"`
	NoCoverage    int    `json:"no_coverage"`
	ReviewFlagged int    `json:"review_flagged"`
	Errors        int    `json:"errors"`
}

// Merge folds another result into this one.
func (r *BatchResult) Merge(other BatchResult) {
	r.Processed += other.Processed
	r.Assigned += other.Assigned
	r.MultiBlock += other.MultiBlock
	r.NoCoverage += other.NoCoverage
	r.ReviewFlagged += other.ReviewFlagged
	r.Errors += other.Errors
}

// StatusSummary is the aggregate view served by the status API and CLI.
type StatusSummary struct {
	TotalSpots       int            `json:"total_spots"`
	Uncategorized    int            `json:"uncategorized"`
	ByCategory       map[string]int `json:"by_category"`
	LanguageAssigned int            `json:"language_assigned"`
	BlockAssigned    int            `json:"block_assigned"`
	ReviewFlagged    int            `json:"review_flagged"`
	AttentionFlagged int            `json:"attention_flagged"`
	ByCampaignType   map[string]int `json:"by_campaign_type"`
}

// ReviewItem is one entry in the human review queue.
type ReviewItem struct {
	SpotID       int    `json:"spot_id"`
	BillCode     string `json:"bill_code"`
	RevenueType  string `json:"revenue_type,omitempty"`
	SpotType     string `json:"spot_type,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	AirDate      string `json:"air_date,omitempty"`
	Reason       string `json:"reason"`
}
