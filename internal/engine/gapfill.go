package engine

import (
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

// FillResult is the gap filler's output: a dense daily series plus the
// per-year completeness ratios the sufficiency gate consumes downstream.
type FillResult struct {
	Series             []models.NormalizedPrice
	CompletenessByYear map[int]float64
	// LeadingGapDays counts calendar days before the first observation that
	// could not be filled (models.ErrNoPriorData territory). They are left
	// absent, shrinking the usable range, and never placeholder-filled.
	LeadingGapDays int
}

// Fill builds the full set of calendar days in [calStart, calEnd] and
// forward-fills every day absent from the input with the most recent prior
// value, marking inserted points IsFilled. Days before the asset's first
// recorded price stay absent. The input must be ordered by date ascending.
//
// Completeness per year is exact observations over eligible calendar days.
// A day the exchange calendar declares non-trading is an expected gap and is
// exempt from the denominator; any other missing day is a data hole and
// counts against it. isTradingDay may be nil for assets trading every day.
func Fill(series []models.NormalizedPrice, calStart, calEnd time.Time, isTradingDay TradingDayFn) FillResult {
	result := FillResult{CompletenessByYear: map[int]float64{}}
	if len(series) == 0 {
		return result
	}
	if isTradingDay == nil {
		isTradingDay = AllDaysTrading
	}

	calStart = models.Day(calStart)
	calEnd = models.Day(calEnd)
	first := models.Day(series[0].Date)
	if first.After(calStart) {
		result.LeadingGapDays = int(first.Sub(calStart).Hours() / 24)
	}

	byDay := make(map[int64]models.NormalizedPrice, len(series))
	for _, p := range series {
		byDay[models.Day(p.Date).Unix()] = p
	}

	exactDays := map[int]int{}
	eligibleDays := map[int]int{}

	filled := make([]models.NormalizedPrice, 0, int(calEnd.Sub(first).Hours()/24)+1)
	var last models.NormalizedPrice
	haveLast := false

	for day := first; !day.After(calEnd); day = day.AddDate(0, 0, 1) {
		if day.Before(calStart) {
			continue
		}
		year := day.Year()

		if p, ok := byDay[day.Unix()]; ok {
			filled = append(filled, p)
			last, haveLast = p, true
			if !p.IsFilled {
				exactDays[year]++
				eligibleDays[year]++
			} else if isTradingDay(day) {
				eligibleDays[year]++
			}
			continue
		}

		if !haveLast {
			// Unreachable for day >= first, but keeps the invariant obvious.
			continue
		}

		insert := models.NormalizedPrice{
			Symbol:   last.Symbol,
			Date:     day,
			PriceUSD: last.PriceUSD,
			IsFilled: true,
		}
		filled = append(filled, insert)
		last = insert

		if isTradingDay(day) {
			// Genuine data hole: the market was open, we have nothing exact.
			eligibleDays[year]++
		}
		// Scheduled closure: exempt from the denominator entirely.
	}

	for year, eligible := range eligibleDays {
		if eligible > 0 {
			result.CompletenessByYear[year] = float64(exactDays[year]) / float64(eligible)
		}
	}

	result.Series = filled
	return result
}

// CompletenessInRange recomputes the exact-observation ratio over [start, end]
// of an already-filled series, with the same expected-gap exemption Fill uses.
// The window selector applies it per candidate window.
func CompletenessInRange(filled []models.NormalizedPrice, start, end time.Time, isTradingDay TradingDayFn) float64 {
	if isTradingDay == nil {
		isTradingDay = AllDaysTrading
	}
	start = models.Day(start)
	end = models.Day(end)

	exact, eligible := 0, 0
	for _, p := range filled {
		day := models.Day(p.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		if !p.IsFilled {
			exact++
			eligible++
			continue
		}
		if isTradingDay(day) {
			eligible++
		}
	}
	if eligible == 0 {
		return 0
	}
	return float64(exact) / float64(eligible)
}
