package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/spotlang/internal/models"
)

// Recorder is the audit trail for assignment decisions. Every language
// resolution and block decision is appended so revenue reports can be built
// without re-running the engines. Implementations should return
// ErrUnavailable when the underlying storage is not configured.
type Recorder interface {
	RecordLanguageResolution(ctx context.Context, batchID string, category models.SpotCategory, a models.LanguageAssignment) error
	RecordBlockDecision(ctx context.Context, batchID string, b models.BlockAssignment) error
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB *sql.DB
}

var _ Recorder = (*Analytics)(nil)

// InitClickHouse connects to ClickHouse and ensures the assignment events
// table exists.
func InitClickHouse(dsn string) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS assignment_events (
       timestamp         DateTime,
       event_type        String,
       batch_id          String,
       spot_id           Int32,
       category          Nullable(String),
       language_code     Nullable(String),
       language_status   Nullable(String),
       method            Nullable(String),
       confidence        Float64,
       requires_review   UInt8,
       schedule_id       Nullable(Int32),
       block_id          Nullable(Int32),
       primary_block_id  Nullable(Int32),
       spans_multiple    UInt8,
       blocks_spanned    Int32,
       customer_intent   Nullable(String),
       campaign_type     Nullable(String),
       business_rule     Nullable(String),
       requires_attention UInt8
   ) ENGINE=MergeTree() ORDER BY (event_type, timestamp)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &Analytics{DB: db}, nil
}

// RecordLanguageResolution appends one language decision to the audit trail.
func (a *Analytics) RecordLanguageResolution(ctx context.Context, batchID string, category models.SpotCategory, la models.LanguageAssignment) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	_, err := a.DB.ExecContext(ctx, `INSERT INTO assignment_events (
            timestamp, event_type, batch_id, spot_id, category,
            language_code, language_status, method, confidence, requires_review,
            spans_multiple, blocks_spanned, requires_attention)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().UTC(), "language_resolution", batchID, int32(la.SpotID),
		string(category), la.LanguageCode, string(la.Status), la.Method,
		la.Confidence, boolToUInt8(la.RequiresReview), uint8(0), int32(0), uint8(0))
	if err != nil {
		return fmt.Errorf("insert language event: %w", err)
	}
	return nil
}

// RecordBlockDecision appends one block decision to the audit trail.
func (a *Analytics) RecordBlockDecision(ctx context.Context, batchID string, b models.BlockAssignment) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	var scheduleID, blockID, primaryID sql.NullInt32
	if b.ScheduleID != nil {
		scheduleID = sql.NullInt32{Int32: int32(*b.ScheduleID), Valid: true}
	}
	if b.BlockID != nil {
		blockID = sql.NullInt32{Int32: int32(*b.BlockID), Valid: true}
	}
	if b.PrimaryBlockID != nil {
		primaryID = sql.NullInt32{Int32: int32(*b.PrimaryBlockID), Valid: true}
	}
	_, err := a.DB.ExecContext(ctx, `INSERT INTO assignment_events (
            timestamp, event_type, batch_id, spot_id,
            schedule_id, block_id, primary_block_id, spans_multiple,
            blocks_spanned, customer_intent, campaign_type, business_rule,
            requires_attention, confidence, requires_review)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().UTC(), "block_decision", batchID, int32(b.SpotID),
		scheduleID, blockID, primaryID, boolToUInt8(b.SpansMultiple),
		int32(len(b.BlocksSpanned)), string(b.CustomerIntent),
		string(b.CampaignType), b.BusinessRule,
		boolToUInt8(b.RequiresAttention), float64(0), uint8(0))
	if err != nil {
		return fmt.Errorf("insert block event: %w", err)
	}
	return nil
}

// Close shuts down the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
