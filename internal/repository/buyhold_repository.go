package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresBuyHoldRepository implements BuyHoldPerformanceRepository for PostgreSQL
type PostgresBuyHoldRepository struct {
	db *database.DB
}

// NewPostgresBuyHoldRepository creates a new buy-and-hold performance repository
func NewPostgresBuyHoldRepository(db *database.DB) BuyHoldPerformanceRepository {
	return &PostgresBuyHoldRepository{db: db}
}

const buyHoldUpsertQuery = `
	INSERT INTO buy_hold_performance (
		symbol, asset_type, start_date, end_date, holding_period_years,
		start_price, end_price, min_price, max_price,
		total_return_pct, annualized_return_pct, volatility_pct,
		max_drawdown_pct, max_drawdown_date, max_daily_loss_pct,
		max_loss_from_entry_pct, max_loss_from_entry_date,
		sharpe_ratio, sortino_ratio, calmar_ratio,
		positive_days, negative_days, win_rate_pct,
		total_trading_days, data_completeness_pct
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	ON CONFLICT (symbol, start_date, end_date)
	DO UPDATE SET
		asset_type = EXCLUDED.asset_type,
		holding_period_years = EXCLUDED.holding_period_years,
		start_price = EXCLUDED.start_price,
		end_price = EXCLUDED.end_price,
		min_price = EXCLUDED.min_price,
		max_price = EXCLUDED.max_price,
		total_return_pct = EXCLUDED.total_return_pct,
		annualized_return_pct = EXCLUDED.annualized_return_pct,
		volatility_pct = EXCLUDED.volatility_pct,
		max_drawdown_pct = EXCLUDED.max_drawdown_pct,
		max_drawdown_date = EXCLUDED.max_drawdown_date,
		max_daily_loss_pct = EXCLUDED.max_daily_loss_pct,
		max_loss_from_entry_pct = EXCLUDED.max_loss_from_entry_pct,
		max_loss_from_entry_date = EXCLUDED.max_loss_from_entry_date,
		sharpe_ratio = EXCLUDED.sharpe_ratio,
		sortino_ratio = EXCLUDED.sortino_ratio,
		calmar_ratio = EXCLUDED.calmar_ratio,
		positive_days = EXCLUDED.positive_days,
		negative_days = EXCLUDED.negative_days,
		win_rate_pct = EXCLUDED.win_rate_pct,
		total_trading_days = EXCLUDED.total_trading_days,
		data_completeness_pct = EXCLUDED.data_completeness_pct
`

const buyHoldSelectColumns = `
	symbol, asset_type, start_date, end_date, holding_period_years,
	start_price, end_price, min_price, max_price,
	total_return_pct, annualized_return_pct, volatility_pct,
	max_drawdown_pct, max_drawdown_date, max_daily_loss_pct,
	max_loss_from_entry_pct, max_loss_from_entry_date,
	sharpe_ratio, sortino_ratio, calmar_ratio,
	positive_days, negative_days, win_rate_pct,
	total_trading_days, data_completeness_pct
`

// UpsertBatch inserts or replaces performance rows inside a single
// transaction. The whole batch lands or none of it does.
func (b *PostgresBuyHoldRepository) UpsertBatch(ctx context.Context, rows []*models.BuyHoldPerformance) error {
	if len(rows) == 0 {
		return nil
	}

	return b.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(buyHoldUpsertQuery,
				r.Symbol, r.AssetType, models.Day(r.StartDate), models.Day(r.EndDate), r.HoldingPeriodYears,
				r.StartPrice, r.EndPrice, r.MinPrice, r.MaxPrice,
				r.TotalReturnPct, r.AnnualizedReturnPct, r.VolatilityPct,
				r.MaxDrawdownPct, r.MaxDrawdownDate, r.MaxDailyLossPct,
				r.MaxLossFromEntryPct, r.MaxLossFromEntryDate,
				r.SharpeRatio, r.SortinoRatio, r.CalmarRatio,
				r.PositiveDays, r.NegativeDays, r.WinRatePct,
				r.TotalTradingDays, r.DataCompletenessPct,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range rows {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert buy-and-hold row: %w", err)
			}
		}
		return nil
	})
}

// GetBySymbol retrieves all buy-and-hold rows for a symbol
func (b *PostgresBuyHoldRepository) GetBySymbol(ctx context.Context, symbol string) ([]*models.BuyHoldPerformance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM buy_hold_performance
		WHERE symbol = $1
		ORDER BY end_date ASC, holding_period_years ASC
	`, buyHoldSelectColumns)

	rows, err := b.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query buy-and-hold rows: %w", err)
	}
	defer rows.Close()

	return scanBuyHoldRows(rows)
}

// GetBySymbolAndPeriod retrieves buy-and-hold rows for one holding period
func (b *PostgresBuyHoldRepository) GetBySymbolAndPeriod(ctx context.Context, symbol string, years int) ([]*models.BuyHoldPerformance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM buy_hold_performance
		WHERE symbol = $1 AND holding_period_years = $2
		ORDER BY end_date ASC
	`, buyHoldSelectColumns)

	rows, err := b.db.GetPool().Query(ctx, query, symbol, years)
	if err != nil {
		return nil, fmt.Errorf("failed to query buy-and-hold rows by period: %w", err)
	}
	defer rows.Close()

	return scanBuyHoldRows(rows)
}

// CountBySymbol counts stored buy-and-hold rows for a symbol
func (b *PostgresBuyHoldRepository) CountBySymbol(ctx context.Context, symbol string) (int, error) {
	var count int
	err := b.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM buy_hold_performance WHERE symbol = $1`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count buy-and-hold rows: %w", err)
	}
	return count, nil
}

func scanBuyHoldRows(rows pgx.Rows) ([]*models.BuyHoldPerformance, error) {
	var out []*models.BuyHoldPerformance
	for rows.Next() {
		r := &models.BuyHoldPerformance{}
		err := rows.Scan(
			&r.Symbol, &r.AssetType, &r.StartDate, &r.EndDate, &r.HoldingPeriodYears,
			&r.StartPrice, &r.EndPrice, &r.MinPrice, &r.MaxPrice,
			&r.TotalReturnPct, &r.AnnualizedReturnPct, &r.VolatilityPct,
			&r.MaxDrawdownPct, &r.MaxDrawdownDate, &r.MaxDailyLossPct,
			&r.MaxLossFromEntryPct, &r.MaxLossFromEntryDate,
			&r.SharpeRatio, &r.SortinoRatio, &r.CalmarRatio,
			&r.PositiveDays, &r.NegativeDays, &r.WinRatePct,
			&r.TotalTradingDays, &r.DataCompletenessPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan buy-and-hold row: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}
