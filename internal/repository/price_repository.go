package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

func priceTable(assetType models.AssetType) (string, error) {
	table := assetType.PriceTable()
	if table == "" {
		return "", fmt.Errorf("asset type %q has no price table: %w", assetType, models.ErrInvalidSymbol)
	}
	return table, nil
}

// InsertBatch inserts price points using high-performance COPY. Intended for
// initial backfills where the target range is known to be empty.
func (p *PostgresPriceRepository) InsertBatch(ctx context.Context, assetType models.AssetType, prices []*models.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}

	table, err := priceTable(assetType)
	if err != nil {
		return err
	}

	columns := []string{"symbol", "date", "price", "is_filled"}

	copyFromSource := make([][]interface{}, len(prices))
	for i, pt := range prices {
		copyFromSource[i] = []interface{}{pt.Symbol, models.Day(pt.Date), pt.Price, pt.IsFilled}
	}

	count, err := p.db.GetPool().CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert prices: %w", err)
	}

	if count != int64(len(prices)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(prices))
	}

	return nil
}

// UpsertBatch inserts or replaces price points inside a single transaction.
// The whole batch lands or none of it does.
func (p *PostgresPriceRepository) UpsertBatch(ctx context.Context, assetType models.AssetType, prices []*models.PricePoint) error {
	if len(prices) == 0 {
		return nil
	}

	table, err := priceTable(assetType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, date, price, is_filled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date)
		DO UPDATE SET price = EXCLUDED.price, is_filled = EXCLUDED.is_filled
	`, table)

	return p.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, pt := range prices {
			batch.Queue(query, pt.Symbol, models.Day(pt.Date), pt.Price, pt.IsFilled)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range prices {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert price: %w", err)
			}
		}
		return nil
	})
}

// GetRange retrieves price points for a symbol within a date range
func (p *PostgresPriceRepository) GetRange(ctx context.Context, assetType models.AssetType, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	table, err := priceTable(assetType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT symbol, date, price, is_filled
		FROM %s
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`, table)

	rows, err := p.db.GetPool().Query(ctx, query, symbol, models.Day(start), models.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query price range: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// GetAll retrieves the full price history for a symbol
func (p *PostgresPriceRepository) GetAll(ctx context.Context, assetType models.AssetType, symbol string) ([]models.PricePoint, error) {
	table, err := priceTable(assetType)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT symbol, date, price, is_filled
		FROM %s
		WHERE symbol = $1
		ORDER BY date ASC
	`, table)

	rows, err := p.db.GetPool().Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// GetLatestDate retrieves the most recent stored date for a symbol
func (p *PostgresPriceRepository) GetLatestDate(ctx context.Context, assetType models.AssetType, symbol string) (time.Time, error) {
	table, err := priceTable(assetType)
	if err != nil {
		return time.Time{}, err
	}

	query := fmt.Sprintf(`SELECT MAX(date) FROM %s WHERE symbol = $1`, table)

	var latest *time.Time
	err = p.db.GetPool().QueryRow(ctx, query, symbol).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest price date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}

	return models.Day(*latest), nil
}

func scanPrices(rows pgx.Rows) ([]models.PricePoint, error) {
	var prices []models.PricePoint
	for rows.Next() {
		var pt models.PricePoint
		if err := rows.Scan(&pt.Symbol, &pt.Date, &pt.Price, &pt.IsFilled); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, pt)
	}

	return prices, rows.Err()
}
