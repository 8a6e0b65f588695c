package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-horizon/internal/models"
)

// fakeSource serves canned series for a handful of symbols.
type fakeSource struct {
	prices   map[string][]models.PricePoint
	forex    map[string][]models.ForexRate
	holidays map[string][]models.ExchangeHoliday
	assets   map[models.AssetType][]models.Asset
}

func (s *fakeSource) FetchDailyCloses(_ context.Context, symbol string, _ time.Time) ([]models.PricePoint, error) {
	return s.prices[symbol], nil
}

func (s *fakeSource) FetchForexRates(_ context.Context, pair string, _ time.Time) ([]models.ForexRate, error) {
	return s.forex[pair], nil
}

func (s *fakeSource) FetchExchangeHolidays(_ context.Context, exchange string) ([]models.ExchangeHoliday, error) {
	return s.holidays[exchange], nil
}

func (s *fakeSource) FetchAssetList(_ context.Context, assetType models.AssetType) ([]models.Asset, error) {
	return s.assets[assetType], nil
}

func (s *fakeSource) Name() string    { return "fake" }
func (s *fakeSource) IsEnabled() bool { return true }

func TestDedupeByDayKeepsLastValue(t *testing.T) {
	points := []models.PricePoint{
		{Symbol: "BTCUSD", Date: day(2024, 1, 2), Price: dec(100)},
		{Symbol: "BTCUSD", Date: day(2024, 1, 3), Price: dec(101)},
		{Symbol: "BTCUSD", Date: day(2024, 1, 2), Price: dec(99)},
	}

	deduped, dupes := dedupeByDay(points)

	require.Len(t, deduped, 2)
	assert.Equal(t, 1, dupes)
	assert.True(t, deduped[0].Price.Equal(dec(99)), "correction should replace the earlier value")
}

func TestForwardFillPointsInteriorGapsOnly(t *testing.T) {
	points := []models.PricePoint{
		{Symbol: "GCUSD", Date: day(2024, 1, 2), Price: dec(2050)},
		{Symbol: "GCUSD", Date: day(2024, 1, 5), Price: dec(2061)},
	}

	filled := forwardFillPoints(points, time.Time{})

	require.Len(t, filled, 4)
	assert.False(t, filled[0].IsFilled)
	assert.True(t, filled[1].IsFilled)
	assert.True(t, filled[1].Price.Equal(dec(2050)))
	assert.True(t, filled[2].IsFilled)
	assert.False(t, filled[3].IsFilled)
}

func TestForwardFillPointsExtendsToDate(t *testing.T) {
	points := []models.PricePoint{
		{Symbol: "BTCUSD", Date: day(2024, 1, 2), Price: dec(42000)},
	}

	filled := forwardFillPoints(points, day(2024, 1, 5))

	require.Len(t, filled, 4)
	for _, p := range filled[1:] {
		assert.True(t, p.IsFilled)
		assert.True(t, p.Price.Equal(dec(42000)))
	}
}

func TestIngestPricesBackfillUsesBulkInsert(t *testing.T) {
	repos, prices, _, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})

	source := &fakeSource{prices: map[string][]models.PricePoint{
		"BTCUSD": {
			{Symbol: "BTCUSD", Date: day(2024, 1, 2), Price: dec(42000)},
			{Symbol: "BTCUSD", Date: day(2024, 1, 4), Price: dec(43500)},
		},
	}}
	writer := NewUpsertWriter(repos, writerConfig(1000, 0), discardLogger())
	svc := NewIngestionService(source, repos, writer, nil, discardLogger())

	stats, err := svc.IngestPrices(context.Background(), models.AssetTypeCrypto, false)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.FetchedPoints)
	assert.Equal(t, 1, stats.FilledPoints)
	assert.Equal(t, 3, stats.UpsertedPoints)
	assert.Equal(t, 1, prices.inserts, "empty table should take the bulk path")
	assert.Equal(t, 0, prices.upserts)
}

func TestIngestPricesDailyUpserts(t *testing.T) {
	repos, prices, _, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})
	prices.put(models.AssetTypeCrypto, []*models.PricePoint{
		{Symbol: "BTCUSD", Date: day(2024, 1, 1), Price: dec(41000)},
	})

	source := &fakeSource{prices: map[string][]models.PricePoint{
		"BTCUSD": {
			{Symbol: "BTCUSD", Date: models.Day(time.Now().UTC()), Price: dec(42000)},
		},
	}}
	writer := NewUpsertWriter(repos, writerConfig(1000, 0), discardLogger())
	svc := NewIngestionService(source, repos, writer, nil, discardLogger())

	_, err := svc.IngestPrices(context.Background(), models.AssetTypeCrypto, true)

	require.NoError(t, err)
	assert.Equal(t, 0, prices.inserts)
	assert.GreaterOrEqual(t, prices.upserts, 1)
}

func TestIngestPricesRejectsInvalidPoints(t *testing.T) {
	repos, _, _, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})

	source := &fakeSource{prices: map[string][]models.PricePoint{
		"BTCUSD": {
			{Symbol: "BTCUSD", Date: day(2024, 1, 2), Price: dec(0)},
			{Symbol: "BTCUSD", Date: day(2024, 1, 3), Price: dec(43000)},
		},
	}}
	writer := NewUpsertWriter(repos, writerConfig(1000, 0), discardLogger())
	svc := NewIngestionService(source, repos, writer, nil, discardLogger())

	stats, err := svc.IngestPrices(context.Background(), models.AssetTypeCrypto, false)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.UpsertedPoints)
}

func TestIngestForexUsesCatalogPairs(t *testing.T) {
	repos, _, _, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "^GDAXI", AssetType: models.AssetTypeIndex, Currency: "EUR", Exchange: "XETRA",
	})
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "BTCUSD", AssetType: models.AssetTypeCrypto, Currency: "USD",
	})

	source := &fakeSource{forex: map[string][]models.ForexRate{
		"EURUSD": {
			{Pair: "EURUSD", Date: day(2024, 1, 2), Rate: dec(1.09)},
			{Pair: "EURUSD", Date: day(2024, 1, 3), Rate: dec(1.10)},
		},
	}}
	writer := NewUpsertWriter(repos, writerConfig(1000, 0), discardLogger())
	svc := NewIngestionService(source, repos, writer, nil, discardLogger())

	stats, err := svc.IngestForex(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSymbols, "USD assets need no pair")
	assert.Equal(t, 2, stats.UpsertedPoints)

	rates, err := repos.Forex.GetAll(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Len(t, rates, 2)
}

func TestSyncAssetCatalogCreatesAndUpdates(t *testing.T) {
	repos, _, _, _ := fakeRepositories()
	repos.Asset.Create(context.Background(), &models.Asset{
		Symbol: "GCUSD", AssetType: models.AssetTypeCommodity, Currency: "USD", Name: "Gold (old)",
	})

	source := &fakeSource{assets: map[models.AssetType][]models.Asset{
		models.AssetTypeCommodity: {
			{Symbol: "GCUSD", Currency: "USD", Name: "Gold Futures", Exchange: "COMEX"},
			{Symbol: "SIUSD", Currency: "USD", Name: "Silver Futures", Exchange: "COMEX"},
		},
		models.AssetTypeIndex: {
			{Symbol: "^GSPC", Currency: "USD", Name: "S&P 500", Exchange: "NYSE"},
		},
	}}
	writer := NewUpsertWriter(repos, writerConfig(1000, 0), discardLogger())
	svc := NewIngestionService(source, repos, writer, nil, discardLogger())

	require.NoError(t, svc.SyncAssetCatalog(context.Background()))

	all, err := repos.Asset.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	gold, err := repos.Asset.GetBySymbol(context.Background(), "GCUSD")
	require.NoError(t, err)
	assert.Equal(t, "Gold Futures", gold.Name)
}
