package service

import (
	"fmt"
	"sync"
	"time"
)

// ComputeStats tracks progress counters for a computation run. Workers share
// one instance; every field access goes through the mutex.
type ComputeStats struct {
	mu              sync.RWMutex
	StartTime       time.Time
	Duration        time.Duration
	TotalAssets     int
	AssetsProcessed int
	AssetsSkipped   int
	WindowsSelected int
	BuyHoldRows     int
	DCARows         int
	FailedBatches   int
	Errors          int
}

// NewComputeStats creates a new stats tracker
func NewComputeStats() *ComputeStats {
	return &ComputeStats{
		StartTime: time.Now(),
	}
}

// Reset resets all counters
func (s *ComputeStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.StartTime = time.Now()
	s.Duration = 0
	s.TotalAssets = 0
	s.AssetsProcessed = 0
	s.AssetsSkipped = 0
	s.WindowsSelected = 0
	s.BuyHoldRows = 0
	s.DCARows = 0
	s.FailedBatches = 0
	s.Errors = 0
}

// RecordAsset increments the processed asset count
func (s *ComputeStats) RecordAsset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AssetsProcessed++
}

// RecordSkip increments the skipped asset count
func (s *ComputeStats) RecordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AssetsSkipped++
}

// RecordWindows adds to the selected window count
func (s *ComputeStats) RecordWindows(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.WindowsSelected += n
}

// RecordBuyHoldRows adds to the persisted buy-and-hold row count
func (s *ComputeStats) RecordBuyHoldRows(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BuyHoldRows += n
}

// RecordDCARows adds to the persisted DCA row count
func (s *ComputeStats) RecordDCARows(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DCARows += n
}

// RecordFailedBatches adds to the failed write batch count
func (s *ComputeStats) RecordFailedBatches(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedBatches += n
}

// RecordError increments the error count
func (s *ComputeStats) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors++
}

// Partial reports whether the run completed with failed batches or errors.
func (s *ComputeStats) Partial() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FailedBatches > 0 || s.Errors > 0
}

// String returns a formatted string representation of the counters
func (s *ComputeStats) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf(
		"ComputeStats{Assets=%d/%d, Skipped=%d, Windows=%d, BuyHoldRows=%d, DCARows=%d, FailedBatches=%d, Errors=%d, Duration=%v}",
		s.AssetsProcessed,
		s.TotalAssets,
		s.AssetsSkipped,
		s.WindowsSelected,
		s.BuyHoldRows,
		s.DCARows,
		s.FailedBatches,
		s.Errors,
		s.Duration,
	)
}
