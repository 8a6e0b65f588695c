package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

// purchase records one simulated DCA buy.
type purchase struct {
	date     time.Time
	price    float64
	units    float64
	invested float64
}

// PurchaseDates generates the contribution schedule over [start, end].
// Daily buys every calendar day, weekly buys every Monday, monthly buys on
// the first of each month.
func PurchaseDates(start, end time.Time, freq models.DCAFrequency) []time.Time {
	start = models.Day(start)
	end = models.Day(end)
	var dates []time.Time

	switch freq {
	case models.DCADaily:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
	case models.DCAWeekly:
		d := start
		for d.Weekday() != time.Monday {
			d = d.AddDate(0, 0, 1)
		}
		for ; !d.After(end); d = d.AddDate(0, 0, 7) {
			dates = append(dates, d)
		}
	case models.DCAMonthly:
		d := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for !d.After(end) {
			if !d.Before(start) {
				dates = append(dates, d)
			}
			d = d.AddDate(0, 1, 0)
		}
	}
	return dates
}

// ComputeDCA simulates periodic fixed-amount purchases over one window and
// derives the same risk/return metric set as buy-and-hold, substituting a
// money-weighted annualized return since capital enters over time. Unlike the
// lump-sum calculator, interior purchases tolerate filled prices: DCA is not
// start/end-anchored, so buying at the carried-forward close is acceptable.
// Volatility and drawdown are computed on the portfolio value series, not the
// raw price path.
func ComputeDCA(window models.HoldingWindow, series []models.NormalizedPrice, freq models.DCAFrequency, cfg Config) (*models.DCAPerformance, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("dca frequency %q is not supported", freq)
	}
	if len(series) < 2 {
		return nil, fmt.Errorf("window %s %s..%s has %d points: %w",
			window.Symbol, window.StartDate.Format("2006-01-02"),
			window.EndDate.Format("2006-01-02"), len(series), models.ErrDegenerateWindow)
	}

	first := models.Day(series[0].Date)
	last := models.Day(series[len(series)-1].Date)
	years := last.Sub(first).Hours() / 24 / DaysPerYearVol
	if years < 1/DaysPerYearCAGR {
		return nil, fmt.Errorf("window %s is sub-daily: %w", window.Symbol, models.ErrDegenerateWindow)
	}

	priceByDay := make(map[int64]float64, len(series))
	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.PriceUSD
		priceByDay[models.Day(p.Date).Unix()] = p.PriceUSD
	}

	var purchases []purchase
	totalInvested, totalUnits := 0.0, 0.0
	for _, d := range PurchaseDates(first, last, freq) {
		price, ok := priceByDay[d.Unix()]
		if !ok || price <= 0 {
			continue
		}
		units := cfg.ContributionAmount / price
		purchases = append(purchases, purchase{date: d, price: price, units: units, invested: cfg.ContributionAmount})
		totalInvested += cfg.ContributionAmount
		totalUnits += units
	}
	if len(purchases) == 0 {
		return nil, fmt.Errorf("window %s %s..%s: no purchase date had a price: %w",
			window.Symbol, first.Format("2006-01-02"), last.Format("2006-01-02"), models.ErrInsufficientData)
	}

	finalPrice := prices[len(prices)-1]
	finalValue := totalUnits * finalPrice

	// Portfolio value path: cumulative units priced at each day's close.
	portfolio := make([]float64, len(series))
	costBasis := make([]float64, len(series))
	pi := 0
	unitsSoFar, investedSoFar := 0.0, 0.0
	firstPurchaseIdx := -1
	for i, p := range series {
		day := models.Day(p.Date)
		for pi < len(purchases) && !purchases[pi].date.After(day) {
			unitsSoFar += purchases[pi].units
			investedSoFar += purchases[pi].invested
			pi++
		}
		portfolio[i] = unitsSoFar * prices[i]
		costBasis[i] = investedSoFar
		if firstPurchaseIdx < 0 && unitsSoFar > 0 {
			firstPurchaseIdx = i
		}
	}

	active := portfolio[firstPurchaseIdx:]
	portfolioReturns := dailyReturns(active)
	volPct := 0.0
	if len(portfolioReturns) > 1 {
		volPct = sampleStddev(portfolioReturns) * math.Sqrt(DaysPerYearVol) * 100
	}
	downsideDev := 0.0
	if negatives := downsideReturns(portfolioReturns); len(negatives) > 1 {
		downsideDev = sampleStddev(negatives) * math.Sqrt(DaysPerYearVol)
	}

	ddFrac, ddIdx := maxDrawdown(active)
	maxDrawdownPct := ddFrac * 100
	maxDrawdownDate := models.Day(series[firstPurchaseIdx+ddIdx].Date)

	// Worst shortfall of portfolio value against capital deployed so far.
	maxLossFromCost, maxLossIdx := 0.0, firstPurchaseIdx
	for i := firstPurchaseIdx; i < len(series); i++ {
		if costBasis[i] <= 0 {
			continue
		}
		loss := (portfolio[i] - costBasis[i]) / costBasis[i]
		if loss < maxLossFromCost {
			maxLossFromCost = loss
			maxLossIdx = i
		}
	}

	totalReturnPct := 0.0
	annualizedPct := 0.0
	if totalInvested > 0 {
		totalReturnPct = (finalValue - totalInvested) / totalInvested * 100
		annualizedPct = (math.Pow(finalValue/totalInvested, 1/years) - 1) * 100
	}

	bestPrice, worstPrice := purchases[0].price, purchases[0].price
	for _, p := range purchases[1:] {
		if p.price < bestPrice {
			bestPrice = p.price
		}
		if p.price > worstPrice {
			worstPrice = p.price
		}
	}
	priceVariancePct := 0.0
	if bestPrice > 0 {
		priceVariancePct = (worstPrice - bestPrice) / bestPrice * 100
	}

	// Lump-sum comparison: the same capital deployed at the window start.
	lumpsumReturnPct := 0.0
	if startPrice := prices[0]; startPrice > 0 && totalInvested > 0 {
		lumpsumValue := totalInvested / startPrice * finalPrice
		lumpsumReturnPct = (lumpsumValue - totalInvested) / totalInvested * 100
	}

	minPrice, maxPrice := minMax(prices)

	perf := &models.DCAPerformance{
		Symbol:               window.Symbol,
		AssetType:            window.AssetType,
		StartDate:            first,
		EndDate:              last,
		HoldingPeriodYears:   window.HoldingPeriodYears,
		Frequency:            freq,
		TotalInvested:        totalInvested,
		NumberOfPurchases:    len(purchases),
		AveragePurchasePrice: totalInvested / totalUnits,
		TotalUnitsAcquired:   totalUnits,
		FinalValue:           finalValue,
		FinalPrice:           finalPrice,
		MinPrice:             minPrice,
		MaxPrice:             maxPrice,
		TotalReturnPct:       totalReturnPct,
		AnnualizedReturnPct:  annualizedPct,
		VolatilityPct:        volPct,
		MaxDrawdownPct:       maxDrawdownPct,
		MaxDrawdownDate:      maxDrawdownDate,
		MaxLossFromCostPct:   maxLossFromCost * 100,
		MaxLossFromCostDate:  models.Day(series[maxLossIdx].Date),
		BestPurchasePrice:    bestPrice,
		WorstPurchasePrice:   worstPrice,
		PriceVariancePct:     priceVariancePct,
		LumpsumReturnPct:     lumpsumReturnPct,
		DCAvsLumpsumDiff:     totalReturnPct - lumpsumReturnPct,
		DataCompletenessPct:  window.CompletenessPct,
	}

	perf.SharpeRatio = sharpeRatio(annualizedPct, volPct, cfg.RiskFreeRate)
	perf.SortinoRatio = sortinoRatio(annualizedPct, downsideDev, cfg.RiskFreeRate)
	perf.CalmarRatio = calmarRatio(annualizedPct, maxDrawdownPct)

	return perf, nil
}
