package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/asset-horizon/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pricePoint(symbol string, date time.Time, price float64, filled bool) models.PricePoint {
	return models.PricePoint{Symbol: symbol, Date: date, Price: decimal.NewFromFloat(price), IsFilled: filled}
}

func fxRate(pair string, date time.Time, rate float64, filled bool) models.ForexRate {
	return models.ForexRate{Pair: pair, Date: date, Rate: decimal.NewFromFloat(rate), IsFilled: filled}
}

func TestNormalizeUSDPassthrough(t *testing.T) {
	raw := []models.PricePoint{
		pricePoint("BTCUSD", day(2020, 1, 1), 7200, false),
		pricePoint("BTCUSD", day(2020, 1, 2), 7200, true),
	}

	out, err := Normalize(raw, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 points, got %d", len(out))
	}
	if out[0].PriceUSD != 7200 {
		t.Errorf("expected passthrough price 7200, got %v", out[0].PriceUSD)
	}
	if out[0].IsFilled {
		t.Error("exact source point must stay exact")
	}
	if !out[1].IsFilled {
		t.Error("filled source point must stay filled")
	}
}

func TestNormalizeConvertsWithDailyRate(t *testing.T) {
	raw := []models.PricePoint{
		pricePoint("DAX", day(2020, 1, 1), 100, false),
		pricePoint("DAX", day(2020, 1, 2), 110, false),
	}
	fx := []models.ForexRate{
		fxRate("EURUSD", day(2020, 1, 1), 1.10, false),
		fxRate("EURUSD", day(2020, 1, 2), 1.20, false),
	}

	out, err := Normalize(raw, fx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out[0].PriceUSD != 110 {
		t.Errorf("expected 100*1.10=110, got %v", out[0].PriceUSD)
	}
	if out[1].PriceUSD != 132 {
		t.Errorf("expected 110*1.20=132, got %v", out[1].PriceUSD)
	}
	if out[0].IsFilled || out[1].IsFilled {
		t.Error("exact price with exact same-day rate must stay exact")
	}
}

func TestNormalizeForwardFillsMissingRate(t *testing.T) {
	raw := []models.PricePoint{
		pricePoint("DAX", day(2020, 1, 1), 100, false),
		pricePoint("DAX", day(2020, 1, 2), 110, false),
	}
	// No quote on the 2nd: the 1st's rate carries forward and the output is
	// marked filled even though the native price was exact.
	fx := []models.ForexRate{
		fxRate("EURUSD", day(2020, 1, 1), 1.10, false),
	}

	out, err := Normalize(raw, fx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out[1].PriceUSD != 121 {
		t.Errorf("expected 110*1.10=121, got %v", out[1].PriceUSD)
	}
	if !out[1].IsFilled {
		t.Error("output using a forward-filled rate must be marked filled")
	}
	if out[0].IsFilled {
		t.Error("first point had an exact rate and must stay exact")
	}
}

func TestNormalizeMissingAnchorRate(t *testing.T) {
	raw := []models.PricePoint{
		pricePoint("DAX", day(2020, 1, 1), 100, false),
	}
	fx := []models.ForexRate{
		fxRate("EURUSD", day(2020, 1, 2), 1.10, false),
	}

	out, err := Normalize(raw, fx)
	if !errors.Is(err, models.ErrMissingRate) {
		t.Fatalf("expected ErrMissingRate, got %v", err)
	}
	if out != nil {
		t.Error("no partial output may be produced on a missing anchor rate")
	}
}
