package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/models"
)

// MonthlyRecompute runs the incremental monthly update: only windows ending
// on the 1st of a month inside the lookback span are (re)computed, so each
// run touches the bounded set of end dates that became valid since the last
// one. There is no unbounded backward recomputation.
type MonthlyRecompute struct {
	compute      *ComputeService
	lookbackDays int
	logger       *logrus.Logger
}

// NewMonthlyRecompute creates a MonthlyRecompute.
func NewMonthlyRecompute(compute *ComputeService, lookbackDays int, logger *logrus.Logger) *MonthlyRecompute {
	if lookbackDays <= 0 {
		lookbackDays = 10
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &MonthlyRecompute{
		compute:      compute,
		lookbackDays: lookbackDays,
		logger:       logger,
	}
}

// Run executes the incremental recompute as of now.
func (m *MonthlyRecompute) Run(ctx context.Context) (*ComputeStats, error) {
	return m.RunAsOf(ctx, time.Now().UTC())
}

// RunAsOf executes the incremental recompute with an explicit reference time.
func (m *MonthlyRecompute) RunAsOf(ctx context.Context, now time.Time) (*ComputeStats, error) {
	filter := MonthStartFilter(now, m.lookbackDays)

	m.logger.WithFields(logrus.Fields{
		"as_of":    models.Day(now).Format("2006-01-02"),
		"lookback": m.lookbackDays,
	}).Info("Starting monthly recompute")

	return m.compute.ComputeAllFiltered(ctx, filter)
}

// MonthStartFilter accepts end dates that fall on the 1st of a month within
// the lookback span ending at now.
func MonthStartFilter(now time.Time, lookbackDays int) func(time.Time) bool {
	upper := models.Day(now)
	lower := upper.AddDate(0, 0, -lookbackDays)

	return func(end time.Time) bool {
		end = models.Day(end)
		if end.Day() != 1 {
			return false
		}
		return !end.Before(lower) && !end.After(upper)
	}
}
