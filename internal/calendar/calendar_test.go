package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-horizon/internal/models"
)

type fakeHolidaySource struct {
	holidays []models.ExchangeHoliday
	calls    int
}

func (f *fakeHolidaySource) ListHolidays(_ context.Context, exchange string) ([]models.ExchangeHoliday, error) {
	f.calls++
	var out []models.ExchangeHoliday
	for _, h := range f.holidays {
		if h.Exchange == exchange {
			out = append(out, h)
		}
	}
	return out, nil
}

func TestTradingDayFnCrypto(t *testing.T) {
	p := NewProvider(nil, nil)
	asset := &models.Asset{Symbol: "BTC", AssetType: models.AssetTypeCrypto}

	fn, err := p.TradingDayFn(context.Background(), asset)
	require.NoError(t, err)

	// 2024-01-06 is a Saturday and 2024-01-01 a holiday on most exchanges.
	assert.True(t, fn(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fn(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTradingDayFnIndexWeekend(t *testing.T) {
	p := NewProvider(nil, nil)
	asset := &models.Asset{Symbol: "GSPC", AssetType: models.AssetTypeIndex, Exchange: "NYSE"}

	fn, err := p.TradingDayFn(context.Background(), asset)
	require.NoError(t, err)

	assert.False(t, fn(time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)), "Saturday")
	assert.False(t, fn(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)), "Sunday")
	assert.True(t, fn(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)), "Wednesday")
}

func TestTradingDayFnStoredClosure(t *testing.T) {
	src := &fakeHolidaySource{holidays: []models.ExchangeHoliday{
		{Exchange: "CME", Date: time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), Name: "Good Friday"},
	}}
	p := NewProvider(src, nil)
	asset := &models.Asset{Symbol: "GC", AssetType: models.AssetTypeCommodity, Exchange: "CME"}

	fn, err := p.TradingDayFn(context.Background(), asset)
	require.NoError(t, err)

	assert.False(t, fn(time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)))
}

func TestHolidaySetCached(t *testing.T) {
	src := &fakeHolidaySource{}
	p := NewProvider(src, nil)
	asset := &models.Asset{Symbol: "GC", AssetType: models.AssetTypeCommodity, Exchange: "CME"}

	_, err := p.TradingDayFn(context.Background(), asset)
	require.NoError(t, err)
	_, err = p.TradingDayFn(context.Background(), asset)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
}
