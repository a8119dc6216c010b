package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/patrickwarner/spotlang/internal/models"
	"github.com/patrickwarner/spotlang/internal/observability"
)

// stubStore overrides only the reads the handlers use.
type stubStore struct {
	models.SpotStore
	summary    models.StatusSummary
	summaryErr error
	review     []models.ReviewItem
	reviewErr  error
	pingErr    error
}

func (s *stubStore) Ping(_ context.Context) error {
	return s.pingErr
}

func (s *stubStore) Summary(_ context.Context) (models.StatusSummary, error) {
	return s.summary, s.summaryErr
}

func (s *stubStore) ReviewQueue(_ context.Context, _ int) ([]models.ReviewItem, error) {
	return s.review, s.reviewErr
}

func newTestServer(store *stubStore) *Server {
	return &Server{
		Logger:  zap.NewNop(),
		Store:   store,
		Metrics: observability.NewNoOpRegistry(),
	}
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.HealthHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestHealthHandler_StoreUnreachable(t *testing.T) {
	srv := newTestServer(&stubStore{pingErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.HealthHandler(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"degraded"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestStatusHandler(t *testing.T) {
	srv := newTestServer(&stubStore{summary: models.StatusSummary{
		TotalSpots:    10,
		BlockAssigned: 8,
		ByCategory:    map[string]int{"language_required": 6},
	}})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	srv.StatusHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got models.StatusSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.TotalSpots != 10 || got.BlockAssigned != 8 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestStatusHandler_StoreError(t *testing.T) {
	srv := newTestServer(&stubStore{summaryErr: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	srv.StatusHandler(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestReviewRequiredHandler(t *testing.T) {
	srv := newTestServer(&stubStore{review: []models.ReviewItem{
		{SpotID: 1, BillCode: "Acme", Reason: "language undetermined"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/review-required", nil)
	rec := httptest.NewRecorder()

	srv.ReviewRequiredHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got struct {
		Count int                 `json:"count"`
		Items []models.ReviewItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got.Count != 1 || len(got.Items) != 1 || got.Items[0].SpotID != 1 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestReviewRequiredHandler_InvalidLimit(t *testing.T) {
	srv := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/review-required?limit=zero", nil)
	rec := httptest.NewRecorder()

	srv.ReviewRequiredHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchProgressHandler_NoRedis(t *testing.T) {
	srv := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/batches/abc", nil)
	rec := httptest.NewRecorder()

	srv.BatchProgressHandler(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
