package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/engine"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

// NormStats holds the shared counters for one normalization run.
type NormStats struct {
	mu          sync.Mutex
	Passthrough int
	Converted   int
	Failed      int
}

func (s *NormStats) record(converted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if converted {
		s.Converted++
	} else {
		s.Passthrough++
	}
}

func (s *NormStats) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
}

// String returns a formatted string representation of the counters
func (s *NormStats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("NormStats{Passthrough=%d, Converted=%d, Failed=%d}",
		s.Passthrough, s.Converted, s.Failed)
}

// NormalizationService derives USD price series from raw closes and daily
// forex rates. Normalized series are ephemeral and recomputed on demand, so
// the service is a loader, not a persister. Forex series are cached per pair
// because every asset quoting in the same currency shares one.
type NormalizationService struct {
	assetRepo repository.AssetRepository
	priceRepo repository.PriceRepository
	forexRepo repository.ForexRepository
	fxCache   *cache.Cache
	lookback  int
	logger    *logrus.Logger
}

// NewNormalizationService creates a NormalizationService. lookbackDays bounds
// the range loaded in daily mode.
func NewNormalizationService(repos *repository.Repositories, lookbackDays int, logger *logrus.Logger) *NormalizationService {
	if lookbackDays <= 0 {
		lookbackDays = 10
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &NormalizationService{
		assetRepo: repos.Asset,
		priceRepo: repos.Price,
		forexRepo: repos.Forex,
		fxCache:   cache.New(15*time.Minute, 30*time.Minute),
		lookback:  lookbackDays,
		logger:    logger,
	}
}

// LoadNormalizedSeries loads an asset's full raw series and returns it
// normalized to USD. A non-USD asset with no usable forex anchor fails with
// models.ErrMissingRate and produces no partial series.
func (n *NormalizationService) LoadNormalizedSeries(ctx context.Context, asset *models.Asset) ([]models.NormalizedPrice, error) {
	raw, err := n.priceRepo.GetAll(ctx, asset.AssetType, asset.Symbol)
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", asset.Symbol, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	fx, err := n.forexSeries(ctx, asset.ForexPair())
	if err != nil {
		return nil, err
	}

	return engine.Normalize(raw, fx)
}

// Run normalizes every asset once and reports how many passed through,
// converted or failed. Assets are grouped by currency and each group gets its
// own worker, so a forex series is loaded once per currency rather than once
// per asset. In daily mode only assets with recent prices are checked.
func (n *NormalizationService) Run(ctx context.Context, daily bool) (*NormStats, error) {
	assets, err := n.assetRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	byCurrency := map[string][]*models.Asset{}
	for _, a := range assets {
		currency := a.Currency
		if a.QuotesInUSD() {
			currency = "USD"
		}
		byCurrency[currency] = append(byCurrency[currency], a)
	}

	stats := &NormStats{}
	var wg sync.WaitGroup
	for currency, group := range byCurrency {
		wg.Add(1)
		go func(currency string, group []*models.Asset) {
			defer wg.Done()
			n.normalizeGroup(ctx, currency, group, daily, stats)
		}(currency, group)
	}
	wg.Wait()

	n.logger.WithFields(logrus.Fields{
		"currencies":  len(byCurrency),
		"passthrough": stats.Passthrough,
		"converted":   stats.Converted,
		"failed":      stats.Failed,
	}).Info("Normalization run complete")

	return stats, nil
}

func (n *NormalizationService) normalizeGroup(ctx context.Context, currency string, group []*models.Asset, daily bool, stats *NormStats) {
	since := models.Day(time.Now().UTC()).AddDate(0, 0, -n.lookback)

	for _, asset := range group {
		if daily {
			latest, err := n.priceRepo.GetLatestDate(ctx, asset.AssetType, asset.Symbol)
			if err != nil || latest.Before(since) {
				continue
			}
		}

		if _, err := n.LoadNormalizedSeries(ctx, asset); err != nil {
			stats.recordFailure()
			n.logger.WithFields(logrus.Fields{
				"symbol":   asset.Symbol,
				"currency": currency,
			}).WithError(err).Warn("Normalization failed")
			continue
		}
		stats.record(currency != "USD")
	}
}

// forexSeries returns the full rate series for a pair, cached per pair for
// the duration of a run. An empty pair means USD passthrough.
func (n *NormalizationService) forexSeries(ctx context.Context, pair string) ([]models.ForexRate, error) {
	if pair == "" {
		return nil, nil
	}

	if cached, found := n.fxCache.Get(pair); found {
		return cached.([]models.ForexRate), nil
	}

	fx, err := n.forexRepo.GetAll(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("load forex %s: %w", pair, err)
	}
	if len(fx) == 0 {
		return nil, fmt.Errorf("forex %s: %w", pair, models.ErrMissingRate)
	}

	n.fxCache.Set(pair, fx, cache.DefaultExpiration)
	return fx, nil
}
