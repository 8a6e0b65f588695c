package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-horizon/internal/calendar"
	"github.com/yourusername/asset-horizon/internal/config"
	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

func computeConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			HoldingPeriodsYears: []int{3},
			RiskFreeRate:        0.02,
			MinCompleteness:     0.70,
			ContributionAmount:  100,
			DCAFrequencies:      []string{"monthly"},
			Workers:             2,
		},
		Writer: config.WriterConfig{BatchSize: 1000, RetryAttempts: 0, RetryDelayMs: 1},
	}
}

// seedCryptoSeries stores a dense daily series from start to end with mild
// price variation so volatility is nonzero.
func seedCryptoSeries(prices *fakePriceRepo, symbol string, start, end time.Time) {
	var points []*models.PricePoint
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		points = append(points, &models.PricePoint{
			Symbol: symbol,
			Date:   d,
			Price:  dec(100 + float64(i%10)),
		})
		i++
	}
	prices.put(models.AssetTypeCrypto, points)
}

func newTestComputeService(t *testing.T, repos *repository.Repositories, cfg *config.Config) *ComputeService {
	t.Helper()

	logger := discardLogger()
	writer := NewUpsertWriter(repos, cfg.Writer, logger)
	normalizer := NewNormalizationService(repos, 10, logger)
	calendars := calendar.NewProvider(nil, logger)

	svc, err := NewComputeService(repos, calendars, normalizer, writer, cfg, logger)
	require.NoError(t, err)
	return svc
}

func TestComputeAllWritesPerformanceRows(t *testing.T) {
	repos, prices, buyHold, dcaRepo := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})
	seedCryptoSeries(prices, "BTCUSD", day(2018, 1, 1), day(2021, 1, 15))

	svc := newTestComputeService(t, repos, computeConfig())
	stats, err := svc.ComputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.AssetsProcessed)
	assert.Equal(t, 0, stats.Errors)

	// Every end date from 2021-01-01 on pairs with a start exactly 3 years
	// earlier that also exists in the series.
	assert.Equal(t, 15, stats.WindowsSelected)
	assert.Len(t, buyHold.rows, 15)
	assert.Len(t, dcaRepo.rows, 15)

	for _, row := range buyHold.rows {
		assert.Equal(t, 3, row.HoldingPeriodYears)
		assert.InDelta(t, 100, row.DataCompletenessPct, 1e-9)
	}
}

func TestComputeAllIdempotent(t *testing.T) {
	repos, prices, buyHold, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})
	seedCryptoSeries(prices, "BTCUSD", day(2018, 1, 1), day(2021, 1, 15))

	svc := newTestComputeService(t, repos, computeConfig())
	_, err := svc.ComputeAll(context.Background())
	require.NoError(t, err)
	_, err = svc.ComputeAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, buyHold.rows, 15, "recompute must overwrite, not duplicate")
}

func TestComputeAllFilteredBoundsEndDates(t *testing.T) {
	repos, prices, buyHold, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})
	seedCryptoSeries(prices, "BTCUSD", day(2018, 1, 1), day(2021, 1, 15))

	svc := newTestComputeService(t, repos, computeConfig())
	filter := MonthStartFilter(day(2021, 1, 8), 10)
	stats, err := svc.ComputeAllFiltered(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.WindowsSelected)
	require.Len(t, buyHold.rows, 1)
	for _, row := range buyHold.rows {
		assert.True(t, row.EndDate.Equal(day(2021, 1, 1)))
	}
}

func TestComputeAllSkipsAssetWithoutPrices(t *testing.T) {
	repos, _, buyHold, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "ETHUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})

	svc := newTestComputeService(t, repos, computeConfig())
	stats, err := svc.ComputeAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.AssetsSkipped)
	assert.Empty(t, buyHold.rows)
}

func TestComputeSymbolUnknown(t *testing.T) {
	repos, _, _, _ := fakeRepositories()
	svc := newTestComputeService(t, repos, computeConfig())

	err := svc.ComputeSymbol(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestNewComputeServiceRejectsBadFrequency(t *testing.T) {
	repos, _, _, _ := fakeRepositories()
	cfg := computeConfig()
	cfg.Engine.DCAFrequencies = []string{"hourly"}

	logger := discardLogger()
	writer := NewUpsertWriter(repos, cfg.Writer, logger)
	normalizer := NewNormalizationService(repos, 10, logger)

	_, err := NewComputeService(repos, calendar.NewProvider(nil, logger), normalizer, writer, cfg, logger)
	assert.Error(t, err)
}

func TestMonthlyRecomputeRunAsOf(t *testing.T) {
	repos, prices, buyHold, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})
	seedCryptoSeries(prices, "BTCUSD", day(2018, 1, 1), day(2021, 1, 15))

	svc := newTestComputeService(t, repos, computeConfig())
	monthly := NewMonthlyRecompute(svc, 10, discardLogger())

	stats, err := monthly.RunAsOf(context.Background(), day(2021, 1, 8))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WindowsSelected)
	assert.Len(t, buyHold.rows, 1)
}
