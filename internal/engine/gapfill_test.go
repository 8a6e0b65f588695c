package engine

import (
	"testing"
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

func normPoint(date time.Time, price float64, filled bool) models.NormalizedPrice {
	return models.NormalizedPrice{Symbol: "BTCUSD", Date: date, PriceUSD: price, IsFilled: filled}
}

func TestFillForwardFillsGaps(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 100, false),
		normPoint(day(2020, 1, 4), 105, false),
	}

	result := Fill(series, day(2020, 1, 1), day(2020, 1, 5), nil)
	if len(result.Series) != 5 {
		t.Fatalf("expected 5 days, got %d", len(result.Series))
	}

	// Every inserted point carries the nearest prior exact price and only
	// inserted points are marked filled.
	for i, want := range []struct {
		price  float64
		filled bool
	}{{100, false}, {100, true}, {100, true}, {105, false}, {105, true}} {
		got := result.Series[i]
		if got.PriceUSD != want.price {
			t.Errorf("day %d: expected price %v, got %v", i, want.price, got.PriceUSD)
		}
		if got.IsFilled != want.filled {
			t.Errorf("day %d: expected filled=%v, got %v", i, want.filled, got.IsFilled)
		}
	}
}

func TestFillLeavesLeadingDaysAbsent(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 3), 100, false),
	}

	result := Fill(series, day(2020, 1, 1), day(2020, 1, 4), nil)
	if result.LeadingGapDays != 2 {
		t.Errorf("expected 2 leading gap days, got %d", result.LeadingGapDays)
	}
	if len(result.Series) != 2 {
		t.Fatalf("expected series to start at first observation, got %d points", len(result.Series))
	}
	if !result.Series[0].Date.Equal(day(2020, 1, 3)) {
		t.Errorf("expected first day 2020-01-03, got %v", result.Series[0].Date)
	}
}

func TestFillCompletenessByYear(t *testing.T) {
	// 3 exact points in a 5-day range: 3/5 = 0.6.
	series := []models.NormalizedPrice{
		normPoint(day(2021, 6, 1), 10, false),
		normPoint(day(2021, 6, 3), 11, false),
		normPoint(day(2021, 6, 5), 12, false),
	}

	result := Fill(series, day(2021, 6, 1), day(2021, 6, 5), nil)
	got := result.CompletenessByYear[2021]
	if got != 0.6 {
		t.Errorf("expected completeness 0.6, got %v", got)
	}
}

func TestFillCompletenessMonotonicity(t *testing.T) {
	base := []models.NormalizedPrice{
		normPoint(day(2021, 6, 1), 10, false),
		normPoint(day(2021, 6, 2), 11, false),
		normPoint(day(2021, 6, 3), 12, false),
		normPoint(day(2021, 6, 4), 13, false),
	}
	withGap := append([]models.NormalizedPrice{}, base[0], base[2], base[3])

	full := Fill(base, day(2021, 6, 1), day(2021, 6, 4), nil)
	gapped := Fill(withGap, day(2021, 6, 1), day(2021, 6, 4), nil)

	if gapped.CompletenessByYear[2021] > full.CompletenessByYear[2021] {
		t.Errorf("adding a gap increased completeness: %v > %v",
			gapped.CompletenessByYear[2021], full.CompletenessByYear[2021])
	}
}

func TestFillExemptsScheduledClosures(t *testing.T) {
	weekdaysOnly := func(d time.Time) bool {
		return d.Weekday() != time.Saturday && d.Weekday() != time.Sunday
	}

	// Mon Jan 6 .. Sun Jan 12 2020, observations on all five weekdays. The
	// weekend gaps are scheduled closures and must not count against
	// completeness.
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 6), 10, false),
		normPoint(day(2020, 1, 7), 11, false),
		normPoint(day(2020, 1, 8), 12, false),
		normPoint(day(2020, 1, 9), 13, false),
		normPoint(day(2020, 1, 10), 14, false),
	}

	result := Fill(series, day(2020, 1, 6), day(2020, 1, 12), weekdaysOnly)
	if len(result.Series) != 7 {
		t.Fatalf("expected 7 filled days, got %d", len(result.Series))
	}
	if got := result.CompletenessByYear[2020]; got != 1.0 {
		t.Errorf("expected completeness 1.0 with weekend exemption, got %v", got)
	}
}

func TestCompletenessInRange(t *testing.T) {
	series := []models.NormalizedPrice{
		normPoint(day(2020, 1, 1), 10, false),
		normPoint(day(2020, 1, 2), 11, false),
	}
	result := Fill(series, day(2020, 1, 1), day(2020, 1, 4), nil)

	got := CompletenessInRange(result.Series, day(2020, 1, 1), day(2020, 1, 4), nil)
	if got != 0.5 {
		t.Errorf("expected 2/4 = 0.5, got %v", got)
	}
}
