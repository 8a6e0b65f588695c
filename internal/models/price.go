package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day truncates a timestamp to a UTC calendar day. All per-day keys in the
// engine go through this so map lookups never miss on clock components.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PricePoint is one daily close for an asset in its native currency.
// IsFilled marks a forward-filled value, never an exact observation.
type PricePoint struct {
	Symbol   string          `db:"symbol" json:"symbol" validate:"required"`
	Date     time.Time       `db:"date" json:"date" validate:"required"`
	Price    decimal.Decimal `db:"price" json:"price"`
	IsFilled bool            `db:"is_filled" json:"is_filled"`
}

// ForexRate is one daily quote for a currency pair such as "EURUSD",
// expressed as USD per one unit of the base currency.
type ForexRate struct {
	Pair     string          `db:"symbol" json:"symbol" validate:"required"`
	Date     time.Time       `db:"date" json:"date" validate:"required"`
	Rate     decimal.Decimal `db:"rate" json:"rate"`
	IsFilled bool            `db:"is_filled" json:"is_filled"`
}

// NormalizedPrice is a USD-denominated daily close derived from a PricePoint
// and, for non-USD assets, the matching forex rate. IsFilled is inherited as
// true when either input was filled. Derived data: regenerated on demand,
// never independently owned.
type NormalizedPrice struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	PriceUSD float64   `json:"price_usd"`
	IsFilled bool      `json:"is_filled"`
}

// ExchangeHoliday is a scheduled non-trading day for an exchange.
type ExchangeHoliday struct {
	Exchange string    `db:"exchange" json:"exchange"`
	Date     time.Time `db:"holiday_date" json:"holiday_date"`
	Name     string    `db:"holiday_name" json:"holiday_name"`
}
