package analytics

import (
	"context"
	"sync"

	"github.com/patrickwarner/spotlang/internal/models"
)

var _ Recorder = (*MockRecorder)(nil)

// MockRecorder is an in-memory Recorder for tests and for running the
// pipeline without a ClickHouse instance.
type MockRecorder struct {
	mu                  sync.Mutex
	LanguageResolutions []models.LanguageAssignment
	BlockDecisions      []models.BlockAssignment
}

// NewMockRecorder creates a new mock recorder instance.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{}
}

// RecordLanguageResolution captures the language decision in memory.
func (m *MockRecorder) RecordLanguageResolution(_ context.Context, _ string, _ models.SpotCategory, a models.LanguageAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LanguageResolutions = append(m.LanguageResolutions, a)
	return nil
}

// RecordBlockDecision captures the block decision in memory.
func (m *MockRecorder) RecordBlockDecision(_ context.Context, _ string, b models.BlockAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BlockDecisions = append(m.BlockDecisions, b)
	return nil
}
