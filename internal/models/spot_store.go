package models

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an entity is not found in the spot store.
var ErrNotFound = errors.New("entity not found")

// SpotStore is the persistence contract the assignment engines consume.
// The physical backing is opaque to the engines; the production
// implementation is Postgres (internal/db) and tests use an in-memory fake.
//
// Guarantees: reads are consistent within a single spot's processing, and
// upserts are durable before the orchestrator advances its processed counter.
type SpotStore interface {
	// Spot reads.
	GetSpot(ctx context.Context, spotID int) (*Spot, error)
	ListUncategorized(ctx context.Context, limit int) ([]int, error)
	// ListByCategory pages through a category in spot_id order: only IDs
	// greater than afterSpotID are returned, so callers can walk an
	// arbitrarily large category one page at a time.
	ListByCategory(ctx context.Context, category SpotCategory, importBatchID string, afterSpotID, limit int) ([]int, error)
	// ListReviewRequired returns spots whose raw language code is the "L"
	// sentinel or not in the valid set, excluding Trade and excluding COM/BB
	// spot types (those auto-default to English).
	ListReviewRequired(ctx context.Context, limit int) ([]int, error)

	// Assignment writes, atomic per spot with replace-on-conflict semantics.
	UpsertLanguageAssignment(ctx context.Context, a LanguageAssignment) error
	UpsertBlockAssignment(ctx context.Context, b BlockAssignment) error

	// Category tagging.
	SetCategory(ctx context.Context, spotID int, category SpotCategory) error
	ClearCategories(ctx context.Context) error
	ClearAssignments(ctx context.Context) error

	// Grid lookups.
	ActiveScheduleFor(ctx context.Context, marketID int, airDate time.Time) (int, bool, error)
	BlocksFor(ctx context.Context, scheduleID int, dayOfWeek string) ([]LanguageBlock, error)
	LanguageName(ctx context.Context, languageID int) (string, error)

	// Reference data and pre-flight.
	LoadLanguages(ctx context.Context) ([]Language, error)
	HasActiveSchedule(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error

	// Reporting reads.
	Summary(ctx context.Context) (StatusSummary, error)
	ReviewQueue(ctx context.Context, limit int) ([]ReviewItem, error)
}
