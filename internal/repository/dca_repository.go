package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresDCARepository implements DCAPerformanceRepository for PostgreSQL
type PostgresDCARepository struct {
	db *database.DB
}

// NewPostgresDCARepository creates a new DCA performance repository
func NewPostgresDCARepository(db *database.DB) DCAPerformanceRepository {
	return &PostgresDCARepository{db: db}
}

const dcaUpsertQuery = `
	INSERT INTO dca_performance (
		symbol, asset_type, start_date, end_date, holding_period_years, dca_frequency,
		total_invested, number_of_purchases, average_purchase_price,
		total_units_acquired, final_value, final_price, min_price, max_price,
		total_return_pct, annualized_return_pct, volatility_pct,
		max_drawdown_pct, max_drawdown_date,
		max_loss_from_cost_pct, max_loss_from_cost_date,
		sharpe_ratio, sortino_ratio, calmar_ratio,
		best_purchase_price, worst_purchase_price, price_variance_pct,
		lumpsum_return_pct, dca_vs_lumpsum_diff, data_completeness_pct
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
	ON CONFLICT (symbol, start_date, end_date, dca_frequency)
	DO UPDATE SET
		asset_type = EXCLUDED.asset_type,
		holding_period_years = EXCLUDED.holding_period_years,
		total_invested = EXCLUDED.total_invested,
		number_of_purchases = EXCLUDED.number_of_purchases,
		average_purchase_price = EXCLUDED.average_purchase_price,
		total_units_acquired = EXCLUDED.total_units_acquired,
		final_value = EXCLUDED.final_value,
		final_price = EXCLUDED.final_price,
		min_price = EXCLUDED.min_price,
		max_price = EXCLUDED.max_price,
		total_return_pct = EXCLUDED.total_return_pct,
		annualized_return_pct = EXCLUDED.annualized_return_pct,
		volatility_pct = EXCLUDED.volatility_pct,
		max_drawdown_pct = EXCLUDED.max_drawdown_pct,
		max_drawdown_date = EXCLUDED.max_drawdown_date,
		max_loss_from_cost_pct = EXCLUDED.max_loss_from_cost_pct,
		max_loss_from_cost_date = EXCLUDED.max_loss_from_cost_date,
		sharpe_ratio = EXCLUDED.sharpe_ratio,
		sortino_ratio = EXCLUDED.sortino_ratio,
		calmar_ratio = EXCLUDED.calmar_ratio,
		best_purchase_price = EXCLUDED.best_purchase_price,
		worst_purchase_price = EXCLUDED.worst_purchase_price,
		price_variance_pct = EXCLUDED.price_variance_pct,
		lumpsum_return_pct = EXCLUDED.lumpsum_return_pct,
		dca_vs_lumpsum_diff = EXCLUDED.dca_vs_lumpsum_diff,
		data_completeness_pct = EXCLUDED.data_completeness_pct
`

const dcaSelectColumns = `
	symbol, asset_type, start_date, end_date, holding_period_years, dca_frequency,
	total_invested, number_of_purchases, average_purchase_price,
	total_units_acquired, final_value, final_price, min_price, max_price,
	total_return_pct, annualized_return_pct, volatility_pct,
	max_drawdown_pct, max_drawdown_date,
	max_loss_from_cost_pct, max_loss_from_cost_date,
	sharpe_ratio, sortino_ratio, calmar_ratio,
	best_purchase_price, worst_purchase_price, price_variance_pct,
	lumpsum_return_pct, dca_vs_lumpsum_diff, data_completeness_pct
`

// UpsertBatch inserts or replaces performance rows inside a single
// transaction. The whole batch lands or none of it does.
func (d *PostgresDCARepository) UpsertBatch(ctx context.Context, rows []*models.DCAPerformance) error {
	if len(rows) == 0 {
		return nil
	}

	return d.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(dcaUpsertQuery,
				r.Symbol, r.AssetType, models.Day(r.StartDate), models.Day(r.EndDate), r.HoldingPeriodYears, r.Frequency,
				r.TotalInvested, r.NumberOfPurchases, r.AveragePurchasePrice,
				r.TotalUnitsAcquired, r.FinalValue, r.FinalPrice, r.MinPrice, r.MaxPrice,
				r.TotalReturnPct, r.AnnualizedReturnPct, r.VolatilityPct,
				r.MaxDrawdownPct, r.MaxDrawdownDate,
				r.MaxLossFromCostPct, r.MaxLossFromCostDate,
				r.SharpeRatio, r.SortinoRatio, r.CalmarRatio,
				r.BestPurchasePrice, r.WorstPurchasePrice, r.PriceVariancePct,
				r.LumpsumReturnPct, r.DCAvsLumpsumDiff, r.DataCompletenessPct,
			)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range rows {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert dca row: %w", err)
			}
		}
		return nil
	})
}

// GetBySymbol retrieves all DCA rows for a symbol
func (d *PostgresDCARepository) GetBySymbol(ctx context.Context, symbol string) ([]*models.DCAPerformance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM dca_performance
		WHERE symbol = $1
		ORDER BY end_date ASC, holding_period_years ASC, dca_frequency ASC
	`, dcaSelectColumns)

	rows, err := d.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query dca rows: %w", err)
	}
	defer rows.Close()

	return scanDCARows(rows)
}

// GetBySymbolAndFrequency retrieves DCA rows for one contribution cadence
func (d *PostgresDCARepository) GetBySymbolAndFrequency(ctx context.Context, symbol string, freq models.DCAFrequency) ([]*models.DCAPerformance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM dca_performance
		WHERE symbol = $1 AND dca_frequency = $2
		ORDER BY end_date ASC, holding_period_years ASC
	`, dcaSelectColumns)

	rows, err := d.db.GetPool().Query(ctx, query, symbol, freq)
	if err != nil {
		return nil, fmt.Errorf("failed to query dca rows by frequency: %w", err)
	}
	defer rows.Close()

	return scanDCARows(rows)
}

// CountBySymbol counts stored DCA rows for a symbol
func (d *PostgresDCARepository) CountBySymbol(ctx context.Context, symbol string) (int, error) {
	var count int
	err := d.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM dca_performance WHERE symbol = $1`, symbol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dca rows: %w", err)
	}
	return count, nil
}

func scanDCARows(rows pgx.Rows) ([]*models.DCAPerformance, error) {
	var out []*models.DCAPerformance
	for rows.Next() {
		r := &models.DCAPerformance{}
		err := rows.Scan(
			&r.Symbol, &r.AssetType, &r.StartDate, &r.EndDate, &r.HoldingPeriodYears, &r.Frequency,
			&r.TotalInvested, &r.NumberOfPurchases, &r.AveragePurchasePrice,
			&r.TotalUnitsAcquired, &r.FinalValue, &r.FinalPrice, &r.MinPrice, &r.MaxPrice,
			&r.TotalReturnPct, &r.AnnualizedReturnPct, &r.VolatilityPct,
			&r.MaxDrawdownPct, &r.MaxDrawdownDate,
			&r.MaxLossFromCostPct, &r.MaxLossFromCostDate,
			&r.SharpeRatio, &r.SortinoRatio, &r.CalmarRatio,
			&r.BestPurchasePrice, &r.WorstPurchasePrice, &r.PriceVariancePct,
			&r.LumpsumReturnPct, &r.DCAvsLumpsumDiff, &r.DataCompletenessPct,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dca row: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}
