package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about data ingestion
type IngestionMetrics struct {
	mu             sync.RWMutex
	StartTime      time.Time
	Duration       time.Duration
	TotalSymbols   int
	FetchedPoints  int
	FilledPoints   int
	UpsertedPoints int
	Duplicates     int
	Errors         int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalSymbols = 0
	m.FetchedPoints = 0
	m.FilledPoints = 0
	m.UpsertedPoints = 0
	m.Duplicates = 0
	m.Errors = 0
}

// RecordFetched adds to the fetched point count
func (m *IngestionMetrics) RecordFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchedPoints += n
}

// RecordFilled adds to the forward-filled point count
func (m *IngestionMetrics) RecordFilled(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilledPoints += n
}

// RecordUpserted adds to the upserted point count
func (m *IngestionMetrics) RecordUpserted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertedPoints += n
}

// RecordDuplicate increments duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"IngestionMetrics{Symbols=%d, Fetched=%d, Filled=%d, Upserted=%d, Duplicates=%d, Errors=%d, Duration=%v}",
		m.TotalSymbols,
		m.FetchedPoints,
		m.FilledPoints,
		m.UpsertedPoints,
		m.Duplicates,
		m.Errors,
		m.Duration,
	)
}
