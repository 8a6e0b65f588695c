package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/yourusername/asset-horizon/internal/models"
)

func testWindow(start, end models.NormalizedPrice, years int) models.HoldingWindow {
	return models.HoldingWindow{
		Symbol:             "BTCUSD",
		AssetType:          models.AssetTypeCrypto,
		HoldingPeriodYears: years,
		StartDate:          start.Date,
		EndDate:            end.Date,
		CompletenessPct:    100,
	}
}

func TestComputeBuyAndHoldScenario(t *testing.T) {
	// Native series [100, 102, 99, 105] over four consecutive days at rate
	// 1.0: total return 5%, max drawdown (99-102)/102 ~ -2.94%.
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 100, false),
		normPoint(day(2020, 1, 2), 102, false),
		normPoint(day(2020, 1, 3), 99, false),
		normPoint(day(2020, 1, 4), 105, false),
	}

	perf, err := ComputeBuyAndHold(testWindow(series[0], series[3], 3), series, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if math.Abs(perf.TotalReturnPct-5.0) > 1e-9 {
		t.Errorf("expected total return 5%%, got %v", perf.TotalReturnPct)
	}
	wantDD := (99.0 - 102.0) / 102.0 * 100
	if math.Abs(perf.MaxDrawdownPct-wantDD) > 1e-9 {
		t.Errorf("expected max drawdown %v, got %v", wantDD, perf.MaxDrawdownPct)
	}
	if !perf.MaxDrawdownDate.Equal(day(2020, 1, 3)) {
		t.Errorf("expected drawdown trough on the 3rd, got %v", perf.MaxDrawdownDate)
	}
	wantLoss := (99.0 - 102.0) / 102.0 * 100
	if math.Abs(perf.MaxDailyLossPct-wantLoss) > 1e-9 {
		t.Errorf("expected max daily loss %v, got %v", wantLoss, perf.MaxDailyLossPct)
	}
	if perf.PositiveDays != 2 || perf.NegativeDays != 1 {
		t.Errorf("expected 2 up days and 1 down day, got %d/%d", perf.PositiveDays, perf.NegativeDays)
	}
}

func TestComputeBuyAndHoldCAGRIdentity(t *testing.T) {
	start := day(2015, 1, 1)
	end := start.AddDate(5, 0, 0)
	series := []models.NormalizedPrice{
		normPoint(start, 100, false),
		normPoint(end, 200, false),
	}

	perf, err := ComputeBuyAndHold(testWindow(series[0], series[1], 5), series, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	elapsedDays := end.Sub(start).Hours() / 24
	want := (math.Pow(2, 1/(elapsedDays/DaysPerYearCAGR)) - 1) * 100
	if math.Abs(perf.AnnualizedReturnPct-want) > 1e-9 {
		t.Errorf("expected CAGR %v, got %v", want, perf.AnnualizedReturnPct)
	}
	if math.Abs(perf.TotalReturnPct-100) > 1e-9 {
		t.Errorf("expected total return 100%%, got %v", perf.TotalReturnPct)
	}
}

func TestComputeBuyAndHoldNilRatiosOnConstantSeries(t *testing.T) {
	var series []models.NormalizedPrice
	for d := day(2020, 1, 1); !d.After(day(2020, 1, 10)); d = d.AddDate(0, 0, 1) {
		series = append(series, normPoint(d, 50, false))
	}

	perf, err := ComputeBuyAndHold(testWindow(series[0], series[len(series)-1], 3), series, DefaultConfig())
	if err != nil {
		t.Fatalf("a constant series must not error, got %v", err)
	}

	if perf.SharpeRatio != nil {
		t.Error("zero volatility must yield nil sharpe, not a sentinel value")
	}
	if perf.SortinoRatio != nil {
		t.Error("no downside returns must yield nil sortino")
	}
	if perf.CalmarRatio != nil {
		t.Error("zero drawdown must yield nil calmar")
	}
	if perf.VolatilityPct != 0 {
		t.Errorf("expected zero volatility, got %v", perf.VolatilityPct)
	}
}

func TestComputeBuyAndHoldDegenerateWindow(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 100, false),
	}
	_, err := ComputeBuyAndHold(testWindow(series[0], series[0], 3), series, DefaultConfig())
	if !errors.Is(err, models.ErrDegenerateWindow) {
		t.Fatalf("expected ErrDegenerateWindow, got %v", err)
	}

	sameDay := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 100, false),
		normPoint(day(2020, 1, 1), 101, false),
	}
	_, err = ComputeBuyAndHold(testWindow(sameDay[0], sameDay[1], 3), sameDay, DefaultConfig())
	if !errors.Is(err, models.ErrDegenerateWindow) {
		t.Fatalf("expected ErrDegenerateWindow for a zero-span window, got %v", err)
	}
}

func TestComputeBuyAndHoldSharpeSign(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2016, 1, 1), 100, false),
		normPoint(day(2017, 1, 1), 150, false),
		normPoint(day(2018, 1, 1), 140, false),
		normPoint(day(2019, 1, 1), 130, false),
		normPoint(day(2020, 1, 1), 200, false),
	}

	perf, err := ComputeBuyAndHold(testWindow(series[0], series[4], 4), series, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if perf.SharpeRatio == nil {
		t.Fatal("expected a sharpe ratio for a volatile series")
	}
	if *perf.SharpeRatio <= 0 {
		t.Errorf("expected positive sharpe for a rising series, got %v", *perf.SharpeRatio)
	}
	if perf.SortinoRatio == nil {
		t.Fatal("expected a sortino ratio with downside returns present")
	}
}
