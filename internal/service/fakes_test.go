package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/models"
	"github.com/yourusername/asset-horizon/internal/repository"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeAssetRepo struct {
	assets []*models.Asset
}

func (r *fakeAssetRepo) Create(_ context.Context, asset *models.Asset) error {
	for _, a := range r.assets {
		if a.Symbol == asset.Symbol {
			return models.ErrDuplicateKey
		}
	}
	r.assets = append(r.assets, asset)
	return nil
}

func (r *fakeAssetRepo) GetBySymbol(_ context.Context, symbol string) (*models.Asset, error) {
	for _, a := range r.assets {
		if a.Symbol == symbol {
			return a, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeAssetRepo) ListByType(_ context.Context, assetType models.AssetType) ([]*models.Asset, error) {
	var out []*models.Asset
	for _, a := range r.assets {
		if a.AssetType == assetType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAssetRepo) ListAll(_ context.Context) ([]*models.Asset, error) {
	return r.assets, nil
}

func (r *fakeAssetRepo) Update(_ context.Context, asset *models.Asset) error {
	for i, a := range r.assets {
		if a.Symbol == asset.Symbol {
			r.assets[i] = asset
			return nil
		}
	}
	return models.ErrNotFound
}

type fakePriceRepo struct {
	data    map[string]map[int64]models.PricePoint
	inserts int
	upserts int
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{data: map[string]map[int64]models.PricePoint{}}
}

func (r *fakePriceRepo) key(assetType models.AssetType, symbol string) string {
	return string(assetType) + "/" + symbol
}

func (r *fakePriceRepo) put(assetType models.AssetType, prices []*models.PricePoint) {
	for _, p := range prices {
		k := r.key(assetType, p.Symbol)
		if r.data[k] == nil {
			r.data[k] = map[int64]models.PricePoint{}
		}
		r.data[k][models.Day(p.Date).Unix()] = *p
	}
}

func (r *fakePriceRepo) InsertBatch(_ context.Context, assetType models.AssetType, prices []*models.PricePoint) error {
	r.inserts++
	r.put(assetType, prices)
	return nil
}

func (r *fakePriceRepo) UpsertBatch(_ context.Context, assetType models.AssetType, prices []*models.PricePoint) error {
	r.upserts++
	r.put(assetType, prices)
	return nil
}

func (r *fakePriceRepo) series(assetType models.AssetType, symbol string) []models.PricePoint {
	m := r.data[r.key(assetType, symbol)]
	out := make([]models.PricePoint, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakePriceRepo) GetRange(_ context.Context, assetType models.AssetType, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for _, p := range r.series(assetType, symbol) {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePriceRepo) GetAll(_ context.Context, assetType models.AssetType, symbol string) ([]models.PricePoint, error) {
	return r.series(assetType, symbol), nil
}

func (r *fakePriceRepo) GetLatestDate(_ context.Context, assetType models.AssetType, symbol string) (time.Time, error) {
	s := r.series(assetType, symbol)
	if len(s) == 0 {
		return time.Time{}, models.ErrNotFound
	}
	return models.Day(s[len(s)-1].Date), nil
}

type fakeForexRepo struct {
	data map[string]map[int64]models.ForexRate
}

func newFakeForexRepo() *fakeForexRepo {
	return &fakeForexRepo{data: map[string]map[int64]models.ForexRate{}}
}

func (r *fakeForexRepo) UpsertBatch(_ context.Context, rates []*models.ForexRate) error {
	for _, rate := range rates {
		if r.data[rate.Pair] == nil {
			r.data[rate.Pair] = map[int64]models.ForexRate{}
		}
		r.data[rate.Pair][models.Day(rate.Date).Unix()] = *rate
	}
	return nil
}

func (r *fakeForexRepo) series(pair string) []models.ForexRate {
	out := make([]models.ForexRate, 0, len(r.data[pair]))
	for _, rate := range r.data[pair] {
		out = append(out, rate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakeForexRepo) GetRange(_ context.Context, pair string, start, end time.Time) ([]models.ForexRate, error) {
	var out []models.ForexRate
	for _, rate := range r.series(pair) {
		if !rate.Date.Before(start) && !rate.Date.After(end) {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (r *fakeForexRepo) GetAll(_ context.Context, pair string) ([]models.ForexRate, error) {
	return r.series(pair), nil
}

func (r *fakeForexRepo) GetLatestDate(_ context.Context, pair string) (time.Time, error) {
	s := r.series(pair)
	if len(s) == 0 {
		return time.Time{}, models.ErrNotFound
	}
	return models.Day(s[len(s)-1].Date), nil
}

type fakeHolidayRepo struct {
	holidays []models.ExchangeHoliday
}

func (r *fakeHolidayRepo) UpsertBatch(_ context.Context, holidays []models.ExchangeHoliday) error {
	r.holidays = append(r.holidays, holidays...)
	return nil
}

func (r *fakeHolidayRepo) ListHolidays(_ context.Context, exchange string) ([]models.ExchangeHoliday, error) {
	var out []models.ExchangeHoliday
	for _, h := range r.holidays {
		if h.Exchange == exchange {
			out = append(out, h)
		}
	}
	return out, nil
}

// fakeBuyHoldRepo records each batch it receives and can be told to fail the
// first N calls.
type fakeBuyHoldRepo struct {
	batches   [][]*models.BuyHoldPerformance
	rows      map[string]*models.BuyHoldPerformance
	failFirst int
	calls     int
}

func newFakeBuyHoldRepo() *fakeBuyHoldRepo {
	return &fakeBuyHoldRepo{rows: map[string]*models.BuyHoldPerformance{}}
}

func buyHoldKey(row *models.BuyHoldPerformance) string {
	return fmt.Sprintf("%s/%s/%s", row.Symbol, row.StartDate.Format("2006-01-02"), row.EndDate.Format("2006-01-02"))
}

func (r *fakeBuyHoldRepo) UpsertBatch(_ context.Context, rows []*models.BuyHoldPerformance) error {
	r.calls++
	if r.calls <= r.failFirst {
		return errors.New("deadlock detected")
	}
	r.batches = append(r.batches, rows)
	for _, row := range rows {
		r.rows[buyHoldKey(row)] = row
	}
	return nil
}

func (r *fakeBuyHoldRepo) GetBySymbol(_ context.Context, symbol string) ([]*models.BuyHoldPerformance, error) {
	var out []*models.BuyHoldPerformance
	for _, row := range r.rows {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeBuyHoldRepo) GetBySymbolAndPeriod(_ context.Context, symbol string, years int) ([]*models.BuyHoldPerformance, error) {
	var out []*models.BuyHoldPerformance
	for _, row := range r.rows {
		if row.Symbol == symbol && row.HoldingPeriodYears == years {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeBuyHoldRepo) CountBySymbol(_ context.Context, symbol string) (int, error) {
	rows, _ := r.GetBySymbol(nil, symbol)
	return len(rows), nil
}

type fakeDCARepo struct {
	rows map[string]*models.DCAPerformance
}

func newFakeDCARepo() *fakeDCARepo {
	return &fakeDCARepo{rows: map[string]*models.DCAPerformance{}}
}

func (r *fakeDCARepo) UpsertBatch(_ context.Context, rows []*models.DCAPerformance) error {
	for _, row := range rows {
		key := fmt.Sprintf("%s/%s/%s/%s", row.Symbol,
			row.StartDate.Format("2006-01-02"), row.EndDate.Format("2006-01-02"), row.Frequency)
		r.rows[key] = row
	}
	return nil
}

func (r *fakeDCARepo) GetBySymbol(_ context.Context, symbol string) ([]*models.DCAPerformance, error) {
	var out []*models.DCAPerformance
	for _, row := range r.rows {
		if row.Symbol == symbol {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeDCARepo) GetBySymbolAndFrequency(_ context.Context, symbol string, freq models.DCAFrequency) ([]*models.DCAPerformance, error) {
	var out []*models.DCAPerformance
	for _, row := range r.rows {
		if row.Symbol == symbol && row.Frequency == freq {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeDCARepo) CountBySymbol(_ context.Context, symbol string) (int, error) {
	rows, _ := r.GetBySymbol(nil, symbol)
	return len(rows), nil
}

func fakeRepositories() (*repository.Repositories, *fakePriceRepo, *fakeBuyHoldRepo, *fakeDCARepo) {
	prices := newFakePriceRepo()
	buyHold := newFakeBuyHoldRepo()
	dca := newFakeDCARepo()

	repos := &repository.Repositories{
		Asset:   &fakeAssetRepo{},
		Price:   prices,
		Forex:   newFakeForexRepo(),
		Holiday: &fakeHolidayRepo{},
		BuyHold: buyHold,
		DCA:     dca,
	}
	return repos, prices, buyHold, dca
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
