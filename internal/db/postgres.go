package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/models"
)

// Postgres wraps a postgres DB connection and implements models.SpotStore.
type Postgres struct {
	DB *sql.DB
}

var _ models.SpotStore = (*Postgres)(nil)

// schemaSQL sets up the necessary tables if they don't exist.
const schemaSQL = `CREATE TABLE IF NOT EXISTS markets (
    market_id SERIAL PRIMARY KEY,
    market_code TEXT NOT NULL UNIQUE,
    market_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS languages (
    language_id SERIAL PRIMARY KEY,
    language_code TEXT NOT NULL UNIQUE,
    language_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS programming_schedules (
    schedule_id SERIAL PRIMARY KEY,
    schedule_name TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS schedule_market_assignments (
    id SERIAL PRIMARY KEY,
    schedule_id INT REFERENCES programming_schedules(schedule_id),
    market_id INT REFERENCES markets(market_id),
    effective_start_date DATE NOT NULL,
    effective_end_date DATE,
    priority INT NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS language_blocks (
    block_id SERIAL PRIMARY KEY,
    schedule_id INT REFERENCES programming_schedules(schedule_id),
    day_of_week TEXT NOT NULL,
    time_start TEXT NOT NULL,
    time_end TEXT NOT NULL,
    language_id INT REFERENCES languages(language_id),
    block_name TEXT,
    day_part TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS spots (
    spot_id SERIAL PRIMARY KEY,
    bill_code TEXT NOT NULL,
    agency_name TEXT,
    customer_name TEXT,
    revenue_type TEXT,
    spot_type TEXT,
    market_id INT REFERENCES markets(market_id),
    air_date DATE,
    day_of_week TEXT,
    time_in TEXT,
    time_out TEXT,
    language_code TEXT,
    gross_rate DOUBLE PRECISION,
    broadcast_month TEXT,
    import_batch_id TEXT,
    spot_category TEXT
);

CREATE TABLE IF NOT EXISTS spot_language_assignments (
    spot_id INT PRIMARY KEY REFERENCES spots(spot_id),
    language_code TEXT NOT NULL,
    language_status TEXT NOT NULL,
    confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
    assignment_method TEXT NOT NULL,
    requires_review BOOLEAN NOT NULL DEFAULT FALSE,
    notes TEXT,
    assigned_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS spot_language_blocks (
    spot_id INT PRIMARY KEY REFERENCES spots(spot_id),
    schedule_id INT,
    block_id INT,
    spans_multiple_blocks BOOLEAN NOT NULL DEFAULT FALSE,
    blocks_spanned INT[],
    primary_block_id INT,
    customer_intent TEXT,
    campaign_type TEXT,
    requires_attention BOOLEAN NOT NULL DEFAULT FALSE,
    alert_reason TEXT,
    business_rule_applied TEXT,
    assigned_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    assigned_by TEXT
);

-- Performance indexes for batch processing
CREATE INDEX IF NOT EXISTS idx_spots_category ON spots (spot_category);
CREATE INDEX IF NOT EXISTS idx_spots_import_batch ON spots (import_batch_id);
CREATE INDEX IF NOT EXISTS idx_spots_language_code ON spots (language_code);
CREATE INDEX IF NOT EXISTS idx_language_blocks_schedule_day ON language_blocks (schedule_id, day_of_week) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_schedule_assignments_market ON schedule_market_assignments (market_id, is_active, priority);
`

// InitPostgres connects to Postgres with connection pooling configuration.
func InitPostgres(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Postgres, error) {
	// Register the otelsql wrapper for postgres
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	p := &Postgres{DB: db}
	if err := p.ensureSchema(); err != nil {
		return nil, err
	}
	zap.L().Info("Connected to Postgres with connection pooling",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns),
		zap.Duration("conn_max_lifetime", connMaxLifetime))
	return p, nil
}

// Close terminates the Postgres connection.
func (p *Postgres) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("postgres close", zap.Error(err))
		}
	}
}

// ensureSchema creates the required tables if they do not exist.
func (p *Postgres) ensureSchema() error {
	if _, err := p.DB.ExecContext(context.Background(), schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const spotColumns = `spot_id, bill_code, agency_name, customer_name, revenue_type,
    spot_type, market_id, air_date, day_of_week, time_in, time_out,
    language_code, gross_rate, broadcast_month, import_batch_id, spot_category`

// GetSpot retrieves a single spot by ID.
func (p *Postgres) GetSpot(ctx context.Context, spotID int) (*models.Spot, error) {
	row := p.DB.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM spots WHERE spot_id=$1`, spotID)

	var s models.Spot
	var agency, customer, revenueType, spotType sql.NullString
	var dayOfWeek, timeIn, timeOut, langCode, month, importBatch, category sql.NullString
	var marketID sql.NullInt64
	var airDate sql.NullTime
	var grossRate sql.NullFloat64
	err := row.Scan(&s.SpotID, &s.BillCode, &agency, &customer, &revenueType,
		&spotType, &marketID, &airDate, &dayOfWeek, &timeIn, &timeOut,
		&langCode, &grossRate, &month, &importBatch, &category)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan spot: %w", err)
	}
	s.AgencyName = agency.String
	s.CustomerName = customer.String
	s.RevenueType = revenueType.String
	s.SpotType = spotType.String
	if marketID.Valid {
		id := int(marketID.Int64)
		s.MarketID = &id
	}
	if airDate.Valid {
		s.AirDate = airDate.Time
	}
	s.DayOfWeek = dayOfWeek.String
	s.TimeIn = timeIn.String
	s.TimeOut = timeOut.String
	s.LanguageCode = langCode.String
	s.GrossRate = grossRate.Float64
	s.BroadcastMonth = month.String
	s.ImportBatchID = importBatch.String
	s.Category = models.SpotCategory(category.String)
	return &s, nil
}

// ListUncategorized returns spot IDs with no category tag, excluding Trade.
func (p *Postgres) ListUncategorized(ctx context.Context, limit int) ([]int, error) {
	return p.listIDs(ctx, `SELECT spot_id FROM spots
        WHERE spot_category IS NULL
          AND COALESCE(revenue_type, '') <> 'Trade'
        ORDER BY spot_id LIMIT $1`, limit)
}

// ListByCategory returns one page of spot IDs tagged with the given
// category, optionally restricted to one import batch. Pages are keyed on
// spot_id; pass the last ID of the previous page as afterSpotID.
func (p *Postgres) ListByCategory(ctx context.Context, category models.SpotCategory, importBatchID string, afterSpotID, limit int) ([]int, error) {
	if importBatchID != "" {
		rows, err := p.DB.QueryContext(ctx, `SELECT spot_id FROM spots
            WHERE spot_category=$1 AND import_batch_id=$2 AND spot_id>$3
            ORDER BY spot_id LIMIT $4`, string(category), importBatchID, afterSpotID, limit)
		if err != nil {
			return nil, fmt.Errorf("query spots by category: %w", err)
		}
		return scanIDs(rows)
	}
	rows, err := p.DB.QueryContext(ctx, `SELECT spot_id FROM spots
        WHERE spot_category=$1 AND spot_id>$2
        ORDER BY spot_id LIMIT $3`, string(category), afterSpotID, limit)
	if err != nil {
		return nil, fmt.Errorf("query spots by category: %w", err)
	}
	return scanIDs(rows)
}

// ListReviewRequired returns spots whose raw language code needs a human:
// the "L" sentinel or a code missing from the languages table. Trade spots
// and COM/BB spot types are excluded; the resolver auto-defaults the latter.
func (p *Postgres) ListReviewRequired(ctx context.Context, limit int) ([]int, error) {
	return p.listIDs(ctx, `SELECT s.spot_id FROM spots s
        WHERE COALESCE(s.revenue_type, '') <> 'Trade'
          AND COALESCE(s.spot_type, '') NOT IN ('COM', 'BB')
          AND (
              UPPER(COALESCE(s.language_code, '')) = 'L'
              OR (COALESCE(s.language_code, '') <> ''
                  AND UPPER(s.language_code) NOT IN (SELECT UPPER(language_code) FROM languages))
          )
        ORDER BY s.spot_id LIMIT $1`, limit)
}

func (p *Postgres) listIDs(ctx context.Context, query string, limit int) ([]int, error) {
	rows, err := p.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query spot ids: %w", err)
	}
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int, error) {
	defer func() {
		_ = rows.Close()
	}()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan spot id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ids, nil
}

// UpsertLanguageAssignment inserts or replaces the language assignment for a spot.
func (p *Postgres) UpsertLanguageAssignment(ctx context.Context, a models.LanguageAssignment) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO spot_language_assignments (
            spot_id, language_code, language_status, confidence,
            assignment_method, requires_review, notes, assigned_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (spot_id) DO UPDATE SET
            language_code=EXCLUDED.language_code,
            language_status=EXCLUDED.language_status,
            confidence=EXCLUDED.confidence,
            assignment_method=EXCLUDED.assignment_method,
            requires_review=EXCLUDED.requires_review,
            notes=EXCLUDED.notes,
            assigned_date=EXCLUDED.assigned_date`,
		a.SpotID, a.LanguageCode, string(a.Status), a.Confidence,
		a.Method, a.RequiresReview, nullString(a.Notes), a.AssignedDate)
	if err != nil {
		return fmt.Errorf("upsert language assignment: %w", err)
	}
	return nil
}

// UpsertBlockAssignment inserts or replaces the block assignment for a spot.
func (p *Postgres) UpsertBlockAssignment(ctx context.Context, b models.BlockAssignment) error {
	_, err := p.DB.ExecContext(ctx, `INSERT INTO spot_language_blocks (
            spot_id, schedule_id, block_id, spans_multiple_blocks,
            blocks_spanned, primary_block_id, customer_intent, campaign_type,
            requires_attention, alert_reason, business_rule_applied,
            assigned_date, assigned_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (spot_id) DO UPDATE SET
            schedule_id=EXCLUDED.schedule_id,
            block_id=EXCLUDED.block_id,
            spans_multiple_blocks=EXCLUDED.spans_multiple_blocks,
            blocks_spanned=EXCLUDED.blocks_spanned,
            primary_block_id=EXCLUDED.primary_block_id,
            customer_intent=EXCLUDED.customer_intent,
            campaign_type=EXCLUDED.campaign_type,
            requires_attention=EXCLUDED.requires_attention,
            alert_reason=EXCLUDED.alert_reason,
            business_rule_applied=EXCLUDED.business_rule_applied,
            assigned_date=EXCLUDED.assigned_date,
            assigned_by=EXCLUDED.assigned_by`,
		b.SpotID, nullInt(b.ScheduleID), nullInt(b.BlockID), b.SpansMultiple,
		pq.Array(b.BlocksSpanned), nullInt(b.PrimaryBlockID),
		string(b.CustomerIntent), nullString(string(b.CampaignType)),
		b.RequiresAttention, nullString(b.AlertReason), nullString(b.BusinessRule),
		b.AssignedDate, b.AssignedBy)
	if err != nil {
		return fmt.Errorf("upsert block assignment: %w", err)
	}
	return nil
}

// SetCategory tags a spot with its processing category.
func (p *Postgres) SetCategory(ctx context.Context, spotID int, category models.SpotCategory) error {
	_, err := p.DB.ExecContext(ctx, `UPDATE spots SET spot_category=$1 WHERE spot_id=$2`,
		string(category), spotID)
	if err != nil {
		return fmt.Errorf("set spot category: %w", err)
	}
	return nil
}

// ClearCategories removes every category tag. Used by force-recategorize.
func (p *Postgres) ClearCategories(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, `UPDATE spots SET spot_category=NULL`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	return nil
}

// ClearAssignments deletes both assignment tables. Used by force-recategorize.
func (p *Postgres) ClearAssignments(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM spot_language_assignments`); err != nil {
		return fmt.Errorf("clear language assignments: %w", err)
	}
	if _, err := p.DB.ExecContext(ctx, `DELETE FROM spot_language_blocks`); err != nil {
		return fmt.Errorf("clear block assignments: %w", err)
	}
	return nil
}

// ActiveScheduleFor resolves the schedule covering a market on an air date.
// Ties break by highest priority, then latest effective start on or before
// the air date. When no effective-date row matches, the market's
// highest-priority active schedule wins regardless of dates; this can pick a
// schedule whose start follows the air date, kept for parity with the
// historic report totals.
func (p *Postgres) ActiveScheduleFor(ctx context.Context, marketID int, airDate time.Time) (int, bool, error) {
	var id int
	err := p.DB.QueryRowContext(ctx, `SELECT schedule_id FROM schedule_market_assignments
        WHERE market_id=$1 AND is_active
          AND effective_start_date <= $2
          AND (effective_end_date IS NULL OR effective_end_date >= $2)
        ORDER BY priority DESC, effective_start_date DESC
        LIMIT 1`, marketID, airDate).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("query schedule for market: %w", err)
	}

	err = p.DB.QueryRowContext(ctx, `SELECT schedule_id FROM schedule_market_assignments
        WHERE market_id=$1 AND is_active
        ORDER BY priority DESC, effective_start_date DESC
        LIMIT 1`, marketID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query fallback schedule for market: %w", err)
	}
	return id, true, nil
}

// BlocksFor returns the active blocks for a schedule and day of week, in
// schedule order. Day comparison is case-insensitive.
func (p *Postgres) BlocksFor(ctx context.Context, scheduleID int, dayOfWeek string) ([]models.LanguageBlock, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT block_id, schedule_id, day_of_week,
            time_start, time_end, language_id, COALESCE(block_name, ''),
            COALESCE(day_part, ''), is_active
        FROM language_blocks
        WHERE schedule_id=$1 AND is_active AND LOWER(day_of_week)=LOWER($2)
        ORDER BY time_start, block_id`, scheduleID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("query language blocks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var blocks []models.LanguageBlock
	for rows.Next() {
		var b models.LanguageBlock
		if err := rows.Scan(&b.BlockID, &b.ScheduleID, &b.DayOfWeek,
			&b.TimeStart, &b.TimeEnd, &b.LanguageID, &b.BlockName,
			&b.DayPart, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan language block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return blocks, nil
}

// LanguageName returns the display name for a language ID.
func (p *Postgres) LanguageName(ctx context.Context, languageID int) (string, error) {
	var name string
	err := p.DB.QueryRowContext(ctx, `SELECT language_name FROM languages WHERE language_id=$1`,
		languageID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query language name: %w", err)
	}
	return name, nil
}

// LoadLanguages retrieves the full languages table.
func (p *Postgres) LoadLanguages(ctx context.Context) ([]models.Language, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT language_id, language_code, language_name FROM languages ORDER BY language_id`)
	if err != nil {
		return nil, fmt.Errorf("query languages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var langs []models.Language
	for rows.Next() {
		var l models.Language
		if err := rows.Scan(&l.LanguageID, &l.LanguageCode, &l.LanguageName); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return langs, nil
}

// HasActiveSchedule reports whether any active schedule assignment exists.
// Part of the batch pre-flight check.
func (p *Postgres) HasActiveSchedule(ctx context.Context) (bool, error) {
	var n int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM schedule_market_assignments WHERE is_active`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count active schedules: %w", err)
	}
	return n > 0, nil
}

// Ping reports database reachability for health checks.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Summary aggregates assignment state for the status API and CLI.
func (p *Postgres) Summary(ctx context.Context) (models.StatusSummary, error) {
	s := models.StatusSummary{
		ByCategory:     make(map[string]int),
		ByCampaignType: make(map[string]int),
	}

	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*),
            COUNT(*) FILTER (WHERE spot_category IS NULL AND COALESCE(revenue_type,'') <> 'Trade')
        FROM spots`).Scan(&s.TotalSpots, &s.Uncategorized)
	if err != nil {
		return s, fmt.Errorf("count spots: %w", err)
	}

	rows, err := p.DB.QueryContext(ctx, `SELECT spot_category, COUNT(*) FROM spots
        WHERE spot_category IS NOT NULL GROUP BY spot_category`)
	if err != nil {
		return s, fmt.Errorf("count by category: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return s, fmt.Errorf("scan category count: %w", err)
		}
		s.ByCategory[cat] = n
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("rows error: %w", err)
	}

	err = p.DB.QueryRowContext(ctx, `SELECT COUNT(*),
            COUNT(*) FILTER (WHERE requires_review)
        FROM spot_language_assignments`).Scan(&s.LanguageAssigned, &s.ReviewFlagged)
	if err != nil {
		return s, fmt.Errorf("count language assignments: %w", err)
	}

	err = p.DB.QueryRowContext(ctx, `SELECT COUNT(*),
            COUNT(*) FILTER (WHERE requires_attention)
        FROM spot_language_blocks`).Scan(&s.BlockAssigned, &s.AttentionFlagged)
	if err != nil {
		return s, fmt.Errorf("count block assignments: %w", err)
	}

	ctRows, err := p.DB.QueryContext(ctx, `SELECT COALESCE(campaign_type, ''), COUNT(*)
        FROM spot_language_blocks GROUP BY campaign_type`)
	if err != nil {
		return s, fmt.Errorf("count by campaign type: %w", err)
	}
	defer func() {
		_ = ctRows.Close()
	}()
	for ctRows.Next() {
		var ct string
		var n int
		if err := ctRows.Scan(&ct, &n); err != nil {
			return s, fmt.Errorf("scan campaign type count: %w", err)
		}
		if ct == "" {
			ct = "none"
		}
		s.ByCampaignType[ct] = n
	}
	if err := ctRows.Err(); err != nil {
		return s, fmt.Errorf("rows error: %w", err)
	}

	return s, nil
}

// ReviewQueue returns the human review queue with enough spot context to act on.
func (p *Postgres) ReviewQueue(ctx context.Context, limit int) ([]models.ReviewItem, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT s.spot_id, s.bill_code,
            COALESCE(s.revenue_type, ''), COALESCE(s.spot_type, ''),
            COALESCE(s.language_code, ''), COALESCE(TO_CHAR(s.air_date, 'YYYY-MM-DD'), '')
        FROM spots s
        WHERE COALESCE(s.revenue_type, '') <> 'Trade'
          AND COALESCE(s.spot_type, '') NOT IN ('COM', 'BB')
          AND (
              UPPER(COALESCE(s.language_code, '')) = 'L'
              OR (COALESCE(s.language_code, '') <> ''
                  AND UPPER(s.language_code) NOT IN (SELECT UPPER(language_code) FROM languages))
          )
        ORDER BY s.spot_id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query review queue: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var items []models.ReviewItem
	for rows.Next() {
		var it models.ReviewItem
		if err := rows.Scan(&it.SpotID, &it.BillCode, &it.RevenueType,
			&it.SpotType, &it.LanguageCode, &it.AirDate); err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		if it.LanguageCode == models.LanguageCodeUndetermined {
			it.Reason = "language undetermined"
		} else {
			it.Reason = "language code not in languages table"
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
