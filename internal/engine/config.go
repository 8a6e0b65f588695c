// Package engine implements the price normalization and performance
// computation pipeline: currency normalization, gap filling, holding-window
// selection and the buy-and-hold / DCA metric calculators. Every stage is a
// pure function over one asset's series; persistence lives elsewhere.
package engine

import (
	"fmt"
	"time"
)

// Annualization constants. CAGR uses the astronomical year while volatility
// keeps the 365-day convention; stored rows were produced with this pairing
// and recomputations must reproduce them bit-compatibly.
const (
	DaysPerYearCAGR = 365.25
	DaysPerYearVol  = 365.0
)

// Config holds the policy values the pipeline stages share. The completeness
// gate and the exact-endpoint rule are policy, not heuristics: they are named
// here so they can be tested independently of the calculators.
type Config struct {
	HoldingPeriods     []int   // holding periods in years, typically 3..10
	RiskFreeRate       float64 // annual, e.g. 0.02 for US treasuries
	MinCompleteness    float64 // fraction of exact observations required, e.g. 0.70
	ContributionAmount float64 // USD deployed per DCA purchase
}

// DefaultConfig returns the production policy values.
func DefaultConfig() Config {
	return Config{
		HoldingPeriods:     []int{3, 4, 5, 6, 7, 8, 9, 10},
		RiskFreeRate:       0.02,
		MinCompleteness:    0.70,
		ContributionAmount: 100,
	}
}

// Validate validates engine policy values.
func (c Config) Validate() error {
	if len(c.HoldingPeriods) == 0 {
		return fmt.Errorf("at least one holding period is required")
	}
	for _, p := range c.HoldingPeriods {
		if p <= 0 {
			return fmt.Errorf("holding period must be positive, got %d", p)
		}
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 1 {
		return fmt.Errorf("risk free rate must be between 0 and 1")
	}
	if c.MinCompleteness <= 0 || c.MinCompleteness > 1 {
		return fmt.Errorf("min completeness must be in (0, 1]")
	}
	if c.ContributionAmount <= 0 {
		return fmt.Errorf("contribution amount must be positive")
	}
	return nil
}

// TradingDayFn answers whether a date is a scheduled trading day for the
// asset's market. Gap filling uses it to tell expected closures (exempt from
// the completeness denominator) from genuine data holes (counted against it).
// Crypto markets trade every calendar day.
type TradingDayFn func(date time.Time) bool

// AllDaysTrading is the calendar for assets that trade every day (crypto).
func AllDaysTrading(time.Time) bool { return true }
