package models

import (
	"strings"
	"time"
)

// Recognized revenue types on imported spots. The traffic system exports
// these as free-form strings; anything else falls into the review queue.
const (
	RevenueInternalAdSales = "Internal Ad Sales"
	RevenueLocal           = "Local"
	RevenueOther           = "Other"
	RevenueDirectResponse  = "Direct Response Sales"
	RevenuePaidProgramming = "Paid Programming"
	RevenueBrandedContent  = "Branded Content"
	RevenueTrade           = "Trade" // excluded from all assignment processing
)

// Spot type codes as they appear on traffic exports.
const (
	SpotTypeCommercial = "COM"
	SpotTypeBillboard  = "BB"
	SpotTypeBonus      = "BNS"
	SpotTypePackage    = "PKG"
	SpotTypeCredit     = "CRD"
	SpotTypeAvail      = "AV"
	SpotTypeService    = "SVC"
	SpotTypeProduced   = "PRD"
	SpotTypeProgram    = "PRG"
)

// LanguageCodeUndetermined is the sentinel the traffic system writes when the
// seller did not pick a language for the spot.
const LanguageCodeUndetermined = "L"

// Spot is a single scheduled commercial airing as imported from the traffic
// system. Spots are immutable inputs; the assignment pipeline never mutates
// them, it only writes the two assignment records keyed by SpotID.
type Spot struct {
	SpotID        int     `json:"spot_id"`
	BillCode      string  `json:"bill_code"` // "Agency:Customer" or bare "Customer"
	AgencyName    string  `json:"agency_name,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	RevenueType   string  `json:"revenue_type,omitempty"`
	SpotType      string  `json:"spot_type,omitempty"`
	MarketID      *int    `json:"market_id,omitempty"`
	AirDate       time.Time `json:"air_date"`
	DayOfWeek     string  `json:"day_of_week"`
	TimeIn        string  `json:"time_in"`  // HH:MM:SS
	TimeOut       string  `json:"time_out"` // HH:MM:SS or a next-day midnight token
	LanguageCode  string  `json:"language_code,omitempty"` // raw; may be "L" (undetermined)
	GrossRate     float64 `json:"gross_rate,omitempty"`
	BroadcastMonth string `json:"broadcast_month,omitempty"` // Mmm-YY, e.g. Jan-24
	ImportBatchID string  `json:"import_batch_id,omitempty"`
	Category      SpotCategory `json:"spot_category,omitempty"`
}

// IsTrade reports whether the spot is a trade spot. Trade spots never enter
// the assignment pipeline.
func (s *Spot) IsTrade() bool {
	return s != nil && s.RevenueType == RevenueTrade
}

// SplitBillCode splits a "Agency:Customer" bill code on the first colon.
// A bill code without a colon is a bare customer name.
func SplitBillCode(billCode string) (agency, customer string) {
	if i := strings.Index(billCode, ":"); i >= 0 {
		return strings.TrimSpace(billCode[:i]), strings.TrimSpace(billCode[i+1:])
	}
	return "", strings.TrimSpace(billCode)
}
