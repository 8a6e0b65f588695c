// Package scheduler wires the recurring jobs: daily fetch, daily
// normalization check and the monthly incremental recompute.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/service"
)

// Scheduler manages the recurring pipeline jobs
type Scheduler struct {
	cron       *cron.Cron
	ingestion  *service.IngestionService
	normalizer *service.NormalizationService
	monthly    *service.MonthlyRecompute
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
	jobTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(
	ingestion *service.IngestionService,
	normalizer *service.NormalizationService,
	monthly *service.MonthlyRecompute,
	logger *logrus.Logger,
) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		ingestion:  ingestion,
		normalizer: normalizer,
		monthly:    monthly,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		jobTimeout: 4 * time.Hour,
	}
}

// ScheduleDailyFetch schedules the daily data fetch: prices for every asset
// type, forex rates and exchange holidays, all in trailing-lookback mode.
func (s *Scheduler) ScheduleDailyFetch(cronExpression string) error {
	return s.addJob("daily_fetch", cronExpression, func(ctx context.Context) {
		for _, assetType := range []models.AssetType{
			models.AssetTypeCrypto, models.AssetTypeCommodity, models.AssetTypeIndex,
		} {
			if _, err := s.ingestion.IngestPrices(ctx, assetType, true); err != nil {
				s.logger.WithField("asset_type", assetType).WithError(err).Error("Daily price fetch failed")
			}
		}
		if _, err := s.ingestion.IngestForex(ctx, true); err != nil {
			s.logger.WithError(err).Error("Daily forex fetch failed")
		}
		if err := s.ingestion.IngestHolidays(ctx); err != nil {
			s.logger.WithError(err).Error("Holiday fetch failed")
		}
	})
}

// ScheduleDailyNormalize schedules the daily normalization check over assets
// with recent prices.
func (s *Scheduler) ScheduleDailyNormalize(cronExpression string) error {
	return s.addJob("daily_normalize", cronExpression, func(ctx context.Context) {
		stats, err := s.normalizer.Run(ctx, true)
		if err != nil {
			s.logger.WithError(err).Error("Daily normalization failed")
			return
		}
		s.logger.Info(stats.String())
	})
}

// ScheduleMonthlyRecompute schedules the incremental performance recompute.
func (s *Scheduler) ScheduleMonthlyRecompute(cronExpression string) error {
	return s.addJob("monthly_recompute", cronExpression, func(ctx context.Context) {
		stats, err := s.monthly.Run(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Monthly recompute failed")
			return
		}
		s.logger.Info(stats.String())
	})
}

func (s *Scheduler) addJob(name, cronExpression string, run func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		started := time.Now()
		s.logger.WithField("job", name).Info("Starting scheduled job")
		run(ctx)
		s.logger.WithFields(logrus.Fields{
			"job":     name,
			"elapsed": time.Since(started).Round(time.Second),
		}).Info("Scheduled job finished")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("Job scheduled")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
