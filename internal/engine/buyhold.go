package engine

import (
	"fmt"
	"math"

	"github.com/yourusername/asset-horizon/internal/models"
)

// ComputeBuyAndHold computes the full buy-and-hold metric set for one window.
// series must be the filled series restricted to [window.StartDate,
// window.EndDate]; the selector guarantees exact observations at both ends.
//
// Metric definitions must match prior stored rows exactly: CAGR annualizes by
// elapsed days over 365.25, volatility by sqrt(365); the asymmetry is
// intentional. All pct fields are percentages, drawdown and loss negative.
func ComputeBuyAndHold(window models.HoldingWindow, series []models.NormalizedPrice, cfg Config) (*models.BuyHoldPerformance, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("window %s %s..%s has %d points: %w",
			window.Symbol, window.StartDate.Format("2006-01-02"),
			window.EndDate.Format("2006-01-02"), len(series), models.ErrDegenerateWindow)
	}

	first := models.Day(series[0].Date)
	last := models.Day(series[len(series)-1].Date)
	elapsedDays := last.Sub(first).Hours() / 24
	years := elapsedDays / DaysPerYearCAGR
	if years < 1/DaysPerYearCAGR {
		return nil, fmt.Errorf("window %s spans %.0f days: %w",
			window.Symbol, elapsedDays, models.ErrDegenerateWindow)
	}

	prices := make([]float64, len(series))
	exactPoints := 0
	for i, p := range series {
		prices[i] = p.PriceUSD
		if !p.IsFilled {
			exactPoints++
		}
	}

	startPrice := prices[0]
	endPrice := prices[len(prices)-1]
	minPrice, maxPrice := minMax(prices)

	totalReturnPct := (endPrice/startPrice - 1) * 100
	cagrPct := (math.Pow(endPrice/startPrice, 1/years) - 1) * 100

	returns := dailyReturns(prices)
	volPct := sampleStddev(returns) * math.Sqrt(DaysPerYearVol) * 100
	downsideDev := sampleStddev(downsideReturns(returns)) * math.Sqrt(DaysPerYearVol)

	ddFrac, ddIdx := maxDrawdown(prices)
	maxDrawdownPct := ddFrac * 100

	maxDailyLossPct := 0.0
	positive, negative := 0, 0
	for _, r := range returns {
		if r > 0 {
			positive++
		} else if r < 0 {
			negative++
		}
		if r*100 < maxDailyLossPct {
			maxDailyLossPct = r * 100
		}
	}

	// Worst floating loss relative to the entry price, the drawdown an
	// investor who bought at the window start actually sat through.
	lossFromEntry, lossIdx := 0.0, 0
	for i, p := range prices {
		loss := (p - startPrice) / startPrice
		if loss < lossFromEntry {
			lossFromEntry = loss
			lossIdx = i
		}
	}

	winRatePct := 0.0
	if len(returns) > 0 {
		winRatePct = float64(positive) / float64(len(returns)) * 100
	}

	perf := &models.BuyHoldPerformance{
		Symbol:               window.Symbol,
		AssetType:            window.AssetType,
		StartDate:            first,
		EndDate:              last,
		HoldingPeriodYears:   window.HoldingPeriodYears,
		StartPrice:           startPrice,
		EndPrice:             endPrice,
		MinPrice:             minPrice,
		MaxPrice:             maxPrice,
		TotalReturnPct:       totalReturnPct,
		AnnualizedReturnPct:  cagrPct,
		VolatilityPct:        volPct,
		MaxDrawdownPct:       maxDrawdownPct,
		MaxDrawdownDate:      models.Day(series[ddIdx].Date),
		MaxDailyLossPct:      maxDailyLossPct,
		MaxLossFromEntryPct:  lossFromEntry * 100,
		MaxLossFromEntryDate: models.Day(series[lossIdx].Date),
		PositiveDays:         positive,
		NegativeDays:         negative,
		WinRatePct:           winRatePct,
		TotalTradingDays:     exactPoints,
		DataCompletenessPct:  window.CompletenessPct,
	}

	perf.SharpeRatio = sharpeRatio(cagrPct, volPct, cfg.RiskFreeRate)
	perf.SortinoRatio = sortinoRatio(cagrPct, downsideDev, cfg.RiskFreeRate)
	perf.CalmarRatio = calmarRatio(cagrPct, maxDrawdownPct)

	return perf, nil
}

// sharpeRatio returns nil when volatility is zero: the ratio is undefined and
// a stored zero would read as "no excess return", which is a different claim.
func sharpeRatio(annualizedPct, volatilityPct, riskFreeRate float64) *float64 {
	if volatilityPct == 0 {
		return nil
	}
	v := (annualizedPct/100 - riskFreeRate) / (volatilityPct / 100)
	return &v
}

// sortinoRatio divides by the raw annualized downside deviation, not a
// percentage. Prior rows were produced with this scaling; keep it.
func sortinoRatio(annualizedPct, downsideDev, riskFreeRate float64) *float64 {
	if downsideDev == 0 {
		return nil
	}
	v := (annualizedPct/100 - riskFreeRate) / downsideDev
	return &v
}

func calmarRatio(annualizedPct, maxDrawdownPct float64) *float64 {
	if maxDrawdownPct == 0 {
		return nil
	}
	v := (annualizedPct / 100) / math.Abs(maxDrawdownPct/100)
	return &v
}
