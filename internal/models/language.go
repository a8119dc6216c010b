package models

import "time"

// Language is a row in the languages reference table. Codes are canonical
// upper-case single letters ("E", "M", "C", ...) defined by traffic.
type Language struct {
	LanguageID   int    `json:"language_id"`
	LanguageCode string `json:"language_code"`
	LanguageName string `json:"language_name"`
}

// LanguageBlock is a time-bounded programming segment on a market schedule,
// tagged with a single language. Times are stored in the same HH:MM:SS text
// form the spots carry so one parser covers both.
type LanguageBlock struct {
	BlockID    int    `json:"block_id"`
	ScheduleID int    `json:"schedule_id"`
	DayOfWeek  string `json:"day_of_week"`
	TimeStart  string `json:"time_start"`
	TimeEnd    string `json:"time_end"`
	LanguageID int    `json:"language_id"`
	BlockName  string `json:"block_name"`
	DayPart    string `json:"day_part,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// ProgrammingSchedule is a weekly grid of language blocks.
type ProgrammingSchedule struct {
	ScheduleID   int    `json:"schedule_id"`
	ScheduleName string `json:"schedule_name"`
	IsActive     bool   `json:"is_active"`
}

// Market identifies a broadcast market with its own weekly grid.
type Market struct {
	MarketID   int    `json:"market_id"`
	MarketCode string `json:"market_code"`
	MarketName string `json:"market_name"`
}

// ScheduleMarketAssignment binds a schedule to a market over an effective
// date range. When ranges overlap, the highest priority active row wins.
type ScheduleMarketAssignment struct {
	ID                 int        `json:"id"`
	ScheduleID         int        `json:"schedule_id"`
	MarketID           int        `json:"market_id"`
	EffectiveStartDate time.Time  `json:"effective_start_date"`
	EffectiveEndDate   *time.Time `json:"effective_end_date,omitempty"`
	Priority           int        `json:"priority"`
	IsActive           bool       `json:"is_active"`
}
