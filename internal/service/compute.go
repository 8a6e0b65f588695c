package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/calendar"
	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/engine"
	"github.com/yourusername/asset-horizon/internal/metrics"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

// ComputeService runs the performance pipeline: normalize, fill, select
// windows, calculate buy-and-hold and DCA metrics, write. Assets are
// independent, so a bounded worker pool fans them out; the only shared state
// between workers is the stats tracker and the writer's repositories.
type ComputeService struct {
	repos       *repository.Repositories
	calendars   *calendar.Provider
	normalizer  *NormalizationService
	writer      *UpsertWriter
	engineCfg   engine.Config
	frequencies []models.DCAFrequency
	workers     int
	stats       *ComputeStats
	logger      *logrus.Logger
}

// NewComputeService creates a ComputeService from the application config.
func NewComputeService(
	repos *repository.Repositories,
	calendars *calendar.Provider,
	normalizer *NormalizationService,
	writer *UpsertWriter,
	cfg *config.Config,
	logger *logrus.Logger,
) (*ComputeService, error) {
	engineCfg := engine.Config{
		HoldingPeriods:     cfg.Engine.HoldingPeriodsYears,
		RiskFreeRate:       cfg.Engine.RiskFreeRate,
		MinCompleteness:    cfg.Engine.MinCompleteness,
		ContributionAmount: cfg.Engine.ContributionAmount,
	}
	if err := engineCfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	var frequencies []models.DCAFrequency
	for _, f := range cfg.Engine.DCAFrequencies {
		freq := models.DCAFrequency(f)
		if !freq.Valid() {
			return nil, fmt.Errorf("unsupported dca frequency: %s", f)
		}
		frequencies = append(frequencies, freq)
	}

	workers := cfg.Engine.Workers
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &ComputeService{
		repos:       repos,
		calendars:   calendars,
		normalizer:  normalizer,
		writer:      writer,
		engineCfg:   engineCfg,
		frequencies: frequencies,
		workers:     workers,
		stats:       NewComputeStats(),
		logger:      logger,
	}, nil
}

// ComputeAll recomputes every asset's full performance matrix.
func (s *ComputeService) ComputeAll(ctx context.Context) (*ComputeStats, error) {
	return s.ComputeAllFiltered(ctx, nil)
}

// ComputeAllFiltered recomputes every asset, restricting candidate window end
// dates to those the filter accepts. A nil filter accepts everything. The
// monthly job passes a filter bounding the run to newly valid end dates.
func (s *ComputeService) ComputeAllFiltered(ctx context.Context, endDateFilter func(time.Time) bool) (*ComputeStats, error) {
	assets, err := s.repos.Asset.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	s.stats.Reset()
	s.stats.TotalAssets = len(assets)
	started := time.Now()
	runID := uuid.New().String()

	s.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"assets":  len(assets),
		"workers": s.workers,
	}).Info("Starting performance computation")

	jobs := make(chan *models.Asset)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asset := range jobs {
				if err := s.computeAsset(ctx, asset, endDateFilter); err != nil {
					s.stats.RecordError()
					s.logger.WithField("symbol", asset.Symbol).WithError(err).Error("Asset computation failed")
				}
			}
		}()
	}

	for _, asset := range assets {
		select {
		case jobs <- asset:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return s.stats, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	s.stats.mu.Lock()
	s.stats.Duration = time.Since(started)
	s.stats.mu.Unlock()

	metrics.RecordComputeRun(time.Since(started).Seconds())
	metrics.UpdateLastComputeAssets(float64(s.stats.AssetsProcessed))
	s.logger.WithField("run_id", runID).Info(s.stats.String())

	return s.stats, nil
}

// ComputeSymbol recomputes a single asset's full performance matrix.
func (s *ComputeService) ComputeSymbol(ctx context.Context, symbol string) error {
	asset, err := s.repos.Asset.GetBySymbol(ctx, symbol)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", symbol, err)
	}
	return s.computeAsset(ctx, asset, nil)
}

// computeAsset runs the pipeline stages for one asset. The stages are pure;
// the only side effect is the writer at the end.
func (s *ComputeService) computeAsset(ctx context.Context, asset *models.Asset, endDateFilter func(time.Time) bool) error {
	started := time.Now()

	series, err := s.normalizer.LoadNormalizedSeries(ctx, asset)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		s.stats.RecordSkip()
		return nil
	}

	tradingDay, err := s.calendars.TradingDayFn(ctx, asset)
	if err != nil {
		return fmt.Errorf("calendar for %s: %w", asset.Symbol, err)
	}

	calStart := models.Day(series[0].Date)
	calEnd := models.Day(series[len(series)-1].Date)
	filled := engine.Fill(series, calStart, calEnd, tradingDay)

	windows := engine.SelectWindows(filled.Series, engine.WindowOptions{
		Symbol:          asset.Symbol,
		AssetType:       asset.AssetType,
		HoldingPeriods:  s.engineCfg.HoldingPeriods,
		MinCompleteness: s.engineCfg.MinCompleteness,
		IsTradingDay:    tradingDay,
		EndDateFilter:   endDateFilter,
	})
	s.stats.RecordWindows(len(windows))
	if len(windows) == 0 {
		s.stats.RecordSkip()
		return nil
	}

	buyHold := make([]*models.BuyHoldPerformance, 0, len(windows))
	dca := make([]*models.DCAPerformance, 0, len(windows)*len(s.frequencies))
	for _, window := range windows {
		slice := engine.SliceWindow(filled.Series, window.StartDate, window.EndDate)

		row, err := engine.ComputeBuyAndHold(window, slice, s.engineCfg)
		if err != nil {
			// Upstream invariant violation: fatal for this record only.
			s.stats.RecordError()
			s.logger.WithFields(logrus.Fields{
				"symbol": window.Symbol,
				"start":  window.StartDate.Format("2006-01-02"),
				"end":    window.EndDate.Format("2006-01-02"),
			}).WithError(err).Error("Buy-and-hold calculation failed")
			continue
		}
		buyHold = append(buyHold, row)

		for _, freq := range s.frequencies {
			dcaRow, err := engine.ComputeDCA(window, slice, freq, s.engineCfg)
			if err != nil {
				s.stats.RecordError()
				s.logger.WithFields(logrus.Fields{
					"symbol":    window.Symbol,
					"frequency": freq,
				}).WithError(err).Error("DCA calculation failed")
				continue
			}
			dca = append(dca, dcaRow)
		}
	}

	bhReport := s.writer.WriteBuyHold(ctx, buyHold)
	dcaReport := s.writer.WriteDCA(ctx, dca)
	s.stats.RecordBuyHoldRows(bhReport.Written)
	s.stats.RecordDCARows(dcaReport.Written)
	s.stats.RecordFailedBatches(bhReport.FailedBatches + dcaReport.FailedBatches)
	s.stats.RecordAsset()

	metrics.RecordAssetComputed(string(asset.AssetType))
	metrics.RecordRowsUpserted(models.StrategyBuyAndHold, bhReport.Written)
	metrics.RecordRowsUpserted(models.StrategyDCA, dcaReport.Written)
	if bhReport.Partial() || dcaReport.Partial() {
		metrics.RecordBatchFailure()
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":   asset.Symbol,
		"windows":  len(windows),
		"buy_hold": bhReport.Written,
		"dca":      dcaReport.Written,
		"elapsed":  time.Since(started).Round(time.Millisecond),
	}).Debug("Asset computed")

	return nil
}

// Stats returns the shared stats tracker.
func (s *ComputeService) Stats() *ComputeStats {
	return s.stats
}
