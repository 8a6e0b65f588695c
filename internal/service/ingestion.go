package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/datasource"
	"github.com/yourusername/asset-horizon/internal/metrics"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

// historicalStart is the earliest date a full backfill requests from the
// provider. Daily updates re-fetch a short trailing span instead; provider
// corrections inside that span land through the upsert path.
const (
	historicalStart   = "2009-01-01"
	dailyLookbackDays = 10
)

// IngestionService fetches raw market data from the provider and lands it in
// the price, forex and holiday tables. Fetched series are deduplicated per
// day and forward-filled before insert so the raw tables stay dense; filled
// rows are marked and never mistaken for observations downstream.
type IngestionService struct {
	source    datasource.MarketDataSource
	repos     *repository.Repositories
	writer    *UpsertWriter
	validator *DataValidator
	metrics   *IngestionMetrics
	logger    *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.MarketDataSource,
	repos *repository.Repositories,
	writer *UpsertWriter,
	validator *DataValidator,
	logger *logrus.Logger,
) *IngestionService {
	if logger == nil {
		logger = logrus.New()
	}
	if validator == nil {
		validator = NewDataValidator(logger)
	}

	return &IngestionService{
		source:    source,
		repos:     repos,
		writer:    writer,
		validator: validator,
		metrics:   NewIngestionMetrics(),
		logger:    logger,
	}
}

// IngestPrices fetches daily closes for every asset of the given type. In
// daily mode only the trailing lookback span is requested and the fill
// extends to today; a backfill requests the full history and fills interior
// gaps only.
func (s *IngestionService) IngestPrices(ctx context.Context, assetType models.AssetType, daily bool) (*IngestionMetrics, error) {
	s.metrics.Reset()
	started := time.Now()

	assets, err := s.repos.Asset.ListByType(ctx, assetType)
	if err != nil {
		return nil, fmt.Errorf("list %s assets: %w", assetType, err)
	}
	s.metrics.TotalSymbols = len(assets)

	s.logger.WithFields(logrus.Fields{
		"asset_type": assetType,
		"symbols":    len(assets),
		"daily":      daily,
	}).Info("Starting price ingestion")

	for _, asset := range assets {
		if err := s.ingestSymbol(ctx, asset, daily); err != nil {
			s.metrics.RecordError()
			s.logger.WithField("symbol", asset.Symbol).WithError(err).Error("Symbol ingestion failed")
		}
	}

	s.metrics.mu.Lock()
	s.metrics.Duration = time.Since(started)
	s.metrics.mu.Unlock()
	metrics.RecordIngestRun(time.Since(started).Seconds(), s.metrics.UpsertedPoints)
	s.logger.Info(s.metrics.String())

	return s.metrics, nil
}

func (s *IngestionService) ingestSymbol(ctx context.Context, asset *models.Asset, daily bool) error {
	from := fetchStart(daily)

	points, err := s.source.FetchDailyCloses(ctx, asset.Symbol, from)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", asset.Symbol, err)
	}
	if len(points) == 0 {
		return nil
	}
	s.metrics.RecordFetched(len(points))

	points, rejected := s.validator.FilterPricePoints(points)
	for i := 0; i < rejected; i++ {
		s.metrics.RecordError()
	}
	if len(points) == 0 {
		return nil
	}

	deduped, dupes := dedupeByDay(points)
	for i := 0; i < dupes; i++ {
		s.metrics.RecordDuplicate()
	}

	var extendTo time.Time
	if daily {
		extendTo = models.Day(time.Now().UTC())
	}
	filled := forwardFillPoints(deduped, extendTo)
	s.metrics.RecordFilled(len(filled) - len(deduped))

	// An empty table takes the bulk copy path; anything else upserts so
	// re-fetched days overwrite in place.
	_, err = s.repos.Price.GetLatestDate(ctx, asset.AssetType, asset.Symbol)
	if errors.Is(err, models.ErrNotFound) {
		if err := s.repos.Price.InsertBatch(ctx, asset.AssetType, filled); err != nil {
			return fmt.Errorf("insert %s: %w", asset.Symbol, err)
		}
		s.metrics.RecordUpserted(len(filled))
		return nil
	}
	if err != nil {
		return fmt.Errorf("latest date %s: %w", asset.Symbol, err)
	}

	report := s.writer.WritePrices(ctx, asset.AssetType, filled)
	s.metrics.RecordUpserted(report.Written)
	if report.Partial() {
		return fmt.Errorf("upsert %s: %w", asset.Symbol, report.Err)
	}
	return nil
}

// IngestForex fetches daily rates for every currency pair the asset catalog
// needs, forward-filling to today in daily mode.
func (s *IngestionService) IngestForex(ctx context.Context, daily bool) (*IngestionMetrics, error) {
	s.metrics.Reset()
	started := time.Now()

	assets, err := s.repos.Asset.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	pairs := map[string]bool{}
	for _, a := range assets {
		if pair := a.ForexPair(); pair != "" {
			pairs[pair] = true
		}
	}
	s.metrics.TotalSymbols = len(pairs)

	from := fetchStart(daily)
	for pair := range pairs {
		rates, err := s.source.FetchForexRates(ctx, pair, from)
		if err != nil {
			s.metrics.RecordError()
			s.logger.WithField("pair", pair).WithError(err).Error("Forex fetch failed")
			continue
		}
		if len(rates) == 0 {
			continue
		}
		s.metrics.RecordFetched(len(rates))

		rates, rejected := s.validator.FilterForexRates(rates)
		for i := 0; i < rejected; i++ {
			s.metrics.RecordError()
		}
		if len(rates) == 0 {
			continue
		}

		var extendTo time.Time
		if daily {
			extendTo = models.Day(time.Now().UTC())
		}
		filled := forwardFillRates(rates, extendTo)
		s.metrics.RecordFilled(len(filled) - len(rates))

		report := s.writer.WriteForex(ctx, filled)
		s.metrics.RecordUpserted(report.Written)
		if report.Partial() {
			s.metrics.RecordError()
			s.logger.WithField("pair", pair).WithError(report.Err).Error("Forex upsert partial")
		}
	}

	s.metrics.mu.Lock()
	s.metrics.Duration = time.Since(started)
	s.metrics.mu.Unlock()
	s.logger.Info(s.metrics.String())

	return s.metrics, nil
}

// IngestHolidays fetches scheduled closures for the exchanges present in the
// asset catalog and upserts them.
func (s *IngestionService) IngestHolidays(ctx context.Context) error {
	assets, err := s.repos.Asset.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	exchanges := map[string]bool{}
	for _, a := range assets {
		if a.Exchange != "" && a.AssetType != models.AssetTypeCrypto {
			exchanges[a.Exchange] = true
		}
	}

	for exchange := range exchanges {
		holidays, err := s.source.FetchExchangeHolidays(ctx, exchange)
		if err != nil {
			s.logger.WithField("exchange", exchange).WithError(err).Error("Holiday fetch failed")
			continue
		}

		report := s.writer.WriteHolidays(ctx, holidays)
		s.logger.WithFields(logrus.Fields{
			"exchange": exchange,
			"holidays": report.Written,
		}).Info("Holidays upserted")
	}

	return nil
}

// SyncAssetCatalog refreshes commodity and index metadata from the provider.
// Crypto has no list endpoint upstream; those symbols are seeded by hand and
// left untouched here.
func (s *IngestionService) SyncAssetCatalog(ctx context.Context) error {
	for _, assetType := range []models.AssetType{models.AssetTypeCommodity, models.AssetTypeIndex} {
		listed, err := s.source.FetchAssetList(ctx, assetType)
		if err != nil {
			return fmt.Errorf("list %s symbols: %w", assetType, err)
		}

		created, updated := 0, 0
		for i := range listed {
			asset := listed[i]
			asset.AssetType = assetType

			if problems := s.validator.ValidateAsset(&asset); len(problems) > 0 {
				s.logger.WithFields(logrus.Fields{
					"symbol":   asset.Symbol,
					"problems": problems,
				}).Warn("Rejected asset metadata")
				continue
			}

			err := s.repos.Asset.Create(ctx, &asset)
			switch {
			case err == nil:
				created++
			case errors.Is(err, models.ErrDuplicateKey):
				if err := s.repos.Asset.Update(ctx, &asset); err != nil {
					s.logger.WithField("symbol", asset.Symbol).WithError(err).Warn("Asset update failed")
					continue
				}
				updated++
			default:
				s.logger.WithField("symbol", asset.Symbol).WithError(err).Warn("Asset create failed")
			}
		}

		s.logger.WithFields(logrus.Fields{
			"asset_type": assetType,
			"created":    created,
			"updated":    updated,
		}).Info("Asset catalog synced")
	}

	return nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}

func fetchStart(daily bool) time.Time {
	if daily {
		return models.Day(time.Now().UTC()).AddDate(0, 0, -dailyLookbackDays)
	}
	start, _ := time.Parse("2006-01-02", historicalStart)
	return start
}

// dedupeByDay keeps the last point seen for each calendar day, preserving
// order. Providers occasionally return the same day twice around corrections.
func dedupeByDay(points []models.PricePoint) ([]models.PricePoint, int) {
	seen := make(map[int64]int, len(points))
	out := make([]models.PricePoint, 0, len(points))
	dupes := 0

	for _, p := range points {
		day := models.Day(p.Date).Unix()
		if idx, ok := seen[day]; ok {
			out[idx] = p
			dupes++
			continue
		}
		seen[day] = len(out)
		out = append(out, p)
	}
	return out, dupes
}

// forwardFillPoints densifies a day-keyed series, inserting a copy of the
// most recent prior close for each absent day. When extendTo is after the
// last observation the fill continues to it. Input must be ordered by date.
func forwardFillPoints(points []models.PricePoint, extendTo time.Time) []*models.PricePoint {
	if len(points) == 0 {
		return nil
	}

	last := models.Day(points[len(points)-1].Date)
	end := last
	if !extendTo.IsZero() && extendTo.After(last) {
		end = models.Day(extendTo)
	}

	byDay := make(map[int64]models.PricePoint, len(points))
	for _, p := range points {
		byDay[models.Day(p.Date).Unix()] = p
	}

	var out []*models.PricePoint
	prev := points[0]
	for day := models.Day(points[0].Date); !day.After(end); day = day.AddDate(0, 0, 1) {
		if p, ok := byDay[day.Unix()]; ok {
			prev = p
			cp := p
			cp.Date = day
			out = append(out, &cp)
			continue
		}
		out = append(out, &models.PricePoint{
			Symbol:   prev.Symbol,
			Date:     day,
			Price:    prev.Price,
			IsFilled: true,
		})
	}
	return out
}

// forwardFillRates is forwardFillPoints for forex series.
func forwardFillRates(rates []models.ForexRate, extendTo time.Time) []*models.ForexRate {
	if len(rates) == 0 {
		return nil
	}

	last := models.Day(rates[len(rates)-1].Date)
	end := last
	if !extendTo.IsZero() && extendTo.After(last) {
		end = models.Day(extendTo)
	}

	byDay := make(map[int64]models.ForexRate, len(rates))
	for _, r := range rates {
		byDay[models.Day(r.Date).Unix()] = r
	}

	var out []*models.ForexRate
	prev := rates[0]
	for day := models.Day(rates[0].Date); !day.After(end); day = day.AddDate(0, 0, 1) {
		if r, ok := byDay[day.Unix()]; ok {
			prev = r
			cp := r
			cp.Date = day
			out = append(out, &cp)
			continue
		}
		out = append(out, &models.ForexRate{
			Pair:     prev.Pair,
			Date:     day,
			Rate:     prev.Rate,
			IsFilled: true,
		})
	}
	return out
}
