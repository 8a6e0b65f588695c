package engine

import (
	"math"
	"testing"
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

func TestPurchaseDatesMonthly(t *testing.T) {
	dates := PurchaseDates(day(2020, 1, 1), day(2020, 4, 1), models.DCAMonthly)
	if len(dates) != 4 {
		t.Fatalf("expected 4 monthly purchase dates, got %d", len(dates))
	}
	for _, d := range dates {
		if d.Day() != 1 {
			t.Errorf("monthly purchases buy on the 1st, got %s", d)
		}
	}
}

func TestPurchaseDatesMonthlyMidMonthStart(t *testing.T) {
	dates := PurchaseDates(day(2020, 1, 15), day(2020, 3, 31), models.DCAMonthly)
	if len(dates) != 2 {
		t.Fatalf("expected Feb and Mar purchases, got %d", len(dates))
	}
	if !dates[0].Equal(day(2020, 2, 1)) {
		t.Errorf("expected first purchase 2020-02-01, got %s", dates[0])
	}
}

func TestPurchaseDatesWeekly(t *testing.T) {
	// 2020-01-01 is a Wednesday; the first Monday is the 6th.
	dates := PurchaseDates(day(2020, 1, 1), day(2020, 1, 31), models.DCAWeekly)
	if len(dates) != 4 {
		t.Fatalf("expected 4 Mondays in range, got %d", len(dates))
	}
	for _, d := range dates {
		if d.Weekday() != time.Monday {
			t.Errorf("weekly purchases buy on Mondays, got %s", d.Weekday())
		}
	}
}

func TestComputeDCAScenario(t *testing.T) {
	// Monthly $100 at prices [10, 20, 10, 20]: 10+5+10+5 = 30 units for $400
	// deployed, ending value 30*20 = $600, simple multiple 1.5x.
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 10, false),
		normPoint(day(2020, 2, 1), 20, false),
		normPoint(day(2020, 3, 1), 10, false),
		normPoint(day(2020, 4, 1), 20, false),
	}
	window := testWindow(series[0], series[3], 3)

	perf, err := ComputeDCA(window, series, models.DCAMonthly, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if perf.NumberOfPurchases != 4 {
		t.Errorf("expected 4 purchases, got %d", perf.NumberOfPurchases)
	}
	if math.Abs(perf.TotalUnitsAcquired-30) > 1e-9 {
		t.Errorf("expected 30 units, got %v", perf.TotalUnitsAcquired)
	}
	if math.Abs(perf.TotalInvested-400) > 1e-9 {
		t.Errorf("expected $400 deployed, got %v", perf.TotalInvested)
	}
	if math.Abs(perf.FinalValue-600) > 1e-9 {
		t.Errorf("expected final value $600, got %v", perf.FinalValue)
	}
	if math.Abs(perf.SimpleMultiple()-1.5) > 1e-9 {
		t.Errorf("expected 1.5x multiple, got %v", perf.SimpleMultiple())
	}
	if math.Abs(perf.TotalReturnPct-50) > 1e-9 {
		t.Errorf("expected 50%% total return, got %v", perf.TotalReturnPct)
	}
	wantAvg := 400.0 / 30.0
	if math.Abs(perf.AveragePurchasePrice-wantAvg) > 1e-9 {
		t.Errorf("expected average cost %v, got %v", wantAvg, perf.AveragePurchasePrice)
	}
}

func TestComputeDCAToleratesFilledInteriorPrices(t *testing.T) {
	// The Feb 1 price is forward-filled; unlike lump-sum, DCA buys at it.
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 10, false),
		normPoint(day(2020, 2, 1), 10, true),
		normPoint(day(2020, 3, 1), 20, false),
	}
	window := testWindow(series[0], series[2], 3)

	perf, err := ComputeDCA(window, series, models.DCAMonthly, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if perf.NumberOfPurchases != 3 {
		t.Errorf("expected the filled date to be purchased, got %d purchases", perf.NumberOfPurchases)
	}
}

func TestComputeDCALumpsumComparison(t *testing.T) {
	// Falling then flat prices: DCA's lower cost basis must beat lump-sum.
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 100, false),
		normPoint(day(2020, 2, 1), 50, false),
		normPoint(day(2020, 3, 1), 50, false),
	}
	window := testWindow(series[0], series[2], 3)

	perf, err := ComputeDCA(window, series, models.DCAMonthly, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if perf.DCAvsLumpsumDiff <= 0 {
		t.Errorf("expected DCA to beat lump-sum on a falling series, diff=%v", perf.DCAvsLumpsumDiff)
	}
	if perf.LumpsumReturnPct >= 0 {
		t.Errorf("expected negative lump-sum return, got %v", perf.LumpsumReturnPct)
	}
}

func TestComputeDCANilRatiosOnConstantPortfolio(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 10, false),
		normPoint(day(2020, 1, 2), 10, false),
		normPoint(day(2020, 1, 3), 10, false),
	}
	window := testWindow(series[0], series[2], 3)

	perf, err := ComputeDCA(window, series, models.DCAMonthly, DefaultConfig())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if perf.SharpeRatio != nil || perf.CalmarRatio != nil {
		t.Error("constant portfolio value must yield nil sharpe and calmar")
	}
}
