package engine

import (
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

// WindowOptions parameterizes holding-window selection for one asset.
type WindowOptions struct {
	Symbol          string
	AssetType       models.AssetType
	HoldingPeriods  []int
	MinCompleteness float64
	IsTradingDay    TradingDayFn
	// EndDateFilter, when non-nil, restricts which candidate end dates are
	// considered. The monthly recomputation job uses it to bound a run; the
	// selector itself always rolls through every date.
	EndDateFilter func(end time.Time) bool
}

// SelectWindows finds every valid (start, end) pair in a filled series. For
// each holding period P and each candidate end date E, the start date is E
// minus P calendar years. A window is emitted only when both endpoints carry
// exact (non-filled) observations and the exact-observation ratio over the
// window meets the completeness gate. Windows failing either check are
// skipped silently, never approximated.
func SelectWindows(filled []models.NormalizedPrice, opts WindowOptions) []models.HoldingWindow {
	if len(filled) == 0 || len(opts.HoldingPeriods) == 0 {
		return nil
	}

	exact := make(map[int64]bool, len(filled))
	for _, p := range filled {
		if !p.IsFilled {
			exact[models.Day(p.Date).Unix()] = true
		}
	}

	var windows []models.HoldingWindow
	for _, p := range filled {
		end := models.Day(p.Date)
		if p.IsFilled {
			continue
		}
		if opts.EndDateFilter != nil && !opts.EndDateFilter(end) {
			continue
		}

		for _, years := range opts.HoldingPeriods {
			start := end.AddDate(-years, 0, 0)
			if !exact[start.Unix()] {
				continue
			}

			completeness := CompletenessInRange(filled, start, end, opts.IsTradingDay)
			if completeness < opts.MinCompleteness {
				continue
			}

			windows = append(windows, models.HoldingWindow{
				Symbol:             opts.Symbol,
				AssetType:          opts.AssetType,
				HoldingPeriodYears: years,
				StartDate:          start,
				EndDate:            end,
				CompletenessPct:    completeness * 100,
			})
		}
	}

	return windows
}

// SliceWindow returns the sub-series covering [start, end] inclusive.
// The filled series is dense, so the result is contiguous.
func SliceWindow(filled []models.NormalizedPrice, start, end time.Time) []models.NormalizedPrice {
	start = models.Day(start)
	end = models.Day(end)

	lo, hi := -1, -1
	for i, p := range filled {
		day := models.Day(p.Date)
		if lo < 0 && !day.Before(start) {
			lo = i
		}
		if !day.After(end) {
			hi = i
		}
	}
	if lo < 0 || hi < lo {
		return nil
	}
	return filled[lo : hi+1]
}
