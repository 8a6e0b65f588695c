package models

import "time"

// Strategy names persisted alongside performance rows.
const (
	StrategyBuyAndHold = "buy_and_hold"
	StrategyDCA        = "dca"
)

// DCAFrequency is the contribution cadence for dollar-cost averaging.
type DCAFrequency string

const (
	DCADaily   DCAFrequency = "daily"
	DCAWeekly  DCAFrequency = "weekly"
	DCAMonthly DCAFrequency = "monthly"
)

// Valid reports whether the frequency is a supported cadence.
func (f DCAFrequency) Valid() bool {
	switch f {
	case DCADaily, DCAWeekly, DCAMonthly:
		return true
	}
	return false
}

// HoldingWindow is a candidate (start, end) span of exactly N calendar years
// whose endpoints both carry exact (non-filled) observations.
type HoldingWindow struct {
	Symbol             string    `json:"symbol"`
	AssetType          AssetType `json:"asset_type"`
	HoldingPeriodYears int       `json:"holding_period_years"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	CompletenessPct    float64   `json:"completeness_pct"`
}

// BuyHoldPerformance is one computed buy-and-hold row, keyed by
// (symbol, start_date, end_date). Ratio fields are nil when their
// denominator is zero; a nil is stored as SQL NULL, never as zero.
type BuyHoldPerformance struct {
	Symbol             string    `db:"symbol" json:"symbol"`
	AssetType          AssetType `db:"asset_type" json:"asset_type"`
	StartDate          time.Time `db:"start_date" json:"start_date"`
	EndDate            time.Time `db:"end_date" json:"end_date"`
	HoldingPeriodYears int       `db:"holding_period_years" json:"holding_period_years"`

	StartPrice float64 `db:"start_price" json:"start_price"`
	EndPrice   float64 `db:"end_price" json:"end_price"`
	MinPrice   float64 `db:"min_price" json:"min_price"`
	MaxPrice   float64 `db:"max_price" json:"max_price"`

	TotalReturnPct      float64   `db:"total_return_pct" json:"total_return_pct"`
	AnnualizedReturnPct float64   `db:"annualized_return_pct" json:"annualized_return_pct"`
	VolatilityPct       float64   `db:"volatility_pct" json:"volatility_pct"`
	MaxDrawdownPct      float64   `db:"max_drawdown_pct" json:"max_drawdown_pct"`
	MaxDrawdownDate     time.Time `db:"max_drawdown_date" json:"max_drawdown_date"`
	MaxDailyLossPct     float64   `db:"max_daily_loss_pct" json:"max_daily_loss_pct"`
	MaxLossFromEntryPct float64   `db:"max_loss_from_entry_pct" json:"max_loss_from_entry_pct"`
	MaxLossFromEntryDate time.Time `db:"max_loss_from_entry_date" json:"max_loss_from_entry_date"`

	SharpeRatio  *float64 `db:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio *float64 `db:"sortino_ratio" json:"sortino_ratio"`
	CalmarRatio  *float64 `db:"calmar_ratio" json:"calmar_ratio"`

	PositiveDays        int     `db:"positive_days" json:"positive_days"`
	NegativeDays        int     `db:"negative_days" json:"negative_days"`
	WinRatePct          float64 `db:"win_rate_pct" json:"win_rate_pct"`
	TotalTradingDays    int     `db:"total_trading_days" json:"total_trading_days"`
	DataCompletenessPct float64 `db:"data_completeness_pct" json:"data_completeness_pct"`
}

// DCAPerformance is one computed dollar-cost-averaging row, keyed by
// (symbol, start_date, end_date, dca_frequency). The return metrics are
// money-weighted: capital enters over time, not at a single instant.
type DCAPerformance struct {
	Symbol             string       `db:"symbol" json:"symbol"`
	AssetType          AssetType    `db:"asset_type" json:"asset_type"`
	StartDate          time.Time    `db:"start_date" json:"start_date"`
	EndDate            time.Time    `db:"end_date" json:"end_date"`
	HoldingPeriodYears int          `db:"holding_period_years" json:"holding_period_years"`
	Frequency          DCAFrequency `db:"dca_frequency" json:"dca_frequency"`

	TotalInvested        float64 `db:"total_invested" json:"total_invested"`
	NumberOfPurchases    int     `db:"number_of_purchases" json:"number_of_purchases"`
	AveragePurchasePrice float64 `db:"average_purchase_price" json:"average_purchase_price"`
	TotalUnitsAcquired   float64 `db:"total_units_acquired" json:"total_units_acquired"`
	FinalValue           float64 `db:"final_value" json:"final_value"`
	FinalPrice           float64 `db:"final_price" json:"final_price"`
	MinPrice             float64 `db:"min_price" json:"min_price"`
	MaxPrice             float64 `db:"max_price" json:"max_price"`

	TotalReturnPct      float64   `db:"total_return_pct" json:"total_return_pct"`
	AnnualizedReturnPct float64   `db:"annualized_return_pct" json:"annualized_return_pct"`
	VolatilityPct       float64   `db:"volatility_pct" json:"volatility_pct"`
	MaxDrawdownPct      float64   `db:"max_drawdown_pct" json:"max_drawdown_pct"`
	MaxDrawdownDate     time.Time `db:"max_drawdown_date" json:"max_drawdown_date"`
	MaxLossFromCostPct  float64   `db:"max_loss_from_cost_pct" json:"max_loss_from_cost_pct"`
	MaxLossFromCostDate time.Time `db:"max_loss_from_cost_date" json:"max_loss_from_cost_date"`

	SharpeRatio  *float64 `db:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio *float64 `db:"sortino_ratio" json:"sortino_ratio"`
	CalmarRatio  *float64 `db:"calmar_ratio" json:"calmar_ratio"`

	BestPurchasePrice  float64 `db:"best_purchase_price" json:"best_purchase_price"`
	WorstPurchasePrice float64 `db:"worst_purchase_price" json:"worst_purchase_price"`
	PriceVariancePct   float64 `db:"price_variance_pct" json:"price_variance_pct"`

	LumpsumReturnPct  float64 `db:"lumpsum_return_pct" json:"lumpsum_return_pct"`
	DCAvsLumpsumDiff  float64 `db:"dca_vs_lumpsum_diff" json:"dca_vs_lumpsum_diff"`

	DataCompletenessPct float64 `db:"data_completeness_pct" json:"data_completeness_pct"`
}

// SimpleMultiple is final value over capital deployed, e.g. 1.5 means the
// position is worth one and a half times what was put in.
func (d *DCAPerformance) SimpleMultiple() float64 {
	if d.TotalInvested == 0 {
		return 0
	}
	return d.FinalValue / d.TotalInvested
}
