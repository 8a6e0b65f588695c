package engine

import (
	"fmt"

	"github.com/yourusername/asset-horizon/internal/models"
)

// Normalize converts a raw native-currency daily series into USD using daily
// forex rates. Both inputs must be ordered by date ascending. A nil or empty
// fx series means the asset already quotes in USD and prices pass through
// unchanged, with IsFilled propagated from the source only.
//
// For a non-USD asset, each day's price is multiplied by that day's rate;
// when the day has no exact rate the most recent prior rate is used and the
// output is marked filled even if the native price itself was exact. If no
// rate exists on or before the earliest required date there is nothing to
// forward-fill from: Normalize fails with models.ErrMissingRate and produces
// no partial output.
func Normalize(raw []models.PricePoint, fx []models.ForexRate) ([]models.NormalizedPrice, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make([]models.NormalizedPrice, 0, len(raw))

	if len(fx) == 0 {
		for _, p := range raw {
			out = append(out, models.NormalizedPrice{
				Symbol:   p.Symbol,
				Date:     models.Day(p.Date),
				PriceUSD: p.Price.InexactFloat64(),
				IsFilled: p.IsFilled,
			})
		}
		return out, nil
	}

	// Exact rates by day; fx is ordered so the forward-fill cursor only moves
	// forward as the raw series advances.
	exact := make(map[int64]models.ForexRate, len(fx))
	for _, r := range fx {
		if !r.IsFilled {
			exact[models.Day(r.Date).Unix()] = r
		}
	}

	cursor := 0
	var last *models.ForexRate
	for _, p := range raw {
		day := models.Day(p.Date)

		// Advance the cursor past every rate dated on or before this price.
		for cursor < len(fx) && !models.Day(fx[cursor].Date).After(day) {
			r := fx[cursor]
			last = &r
			cursor++
		}

		if last == nil {
			return nil, fmt.Errorf("normalize %s at %s (pair %s): %w",
				p.Symbol, day.Format("2006-01-02"), fx[0].Pair, models.ErrMissingRate)
		}

		rate, filled := *last, true
		if r, ok := exact[day.Unix()]; ok {
			rate, filled = r, false
		}

		out = append(out, models.NormalizedPrice{
			Symbol:   p.Symbol,
			Date:     day,
			PriceUSD: p.Price.Mul(rate.Rate).InexactFloat64(),
			IsFilled: p.IsFilled || filled || rate.IsFilled,
		})
	}

	return out, nil
}
