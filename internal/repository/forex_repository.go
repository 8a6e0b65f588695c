package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresForexRepository implements ForexRepository for PostgreSQL
type PostgresForexRepository struct {
	db *database.DB
}

// NewPostgresForexRepository creates a new forex repository
func NewPostgresForexRepository(db *database.DB) ForexRepository {
	return &PostgresForexRepository{db: db}
}

// UpsertBatch inserts or replaces rates inside a single transaction
func (f *PostgresForexRepository) UpsertBatch(ctx context.Context, rates []*models.ForexRate) error {
	if len(rates) == 0 {
		return nil
	}

	query := `
		INSERT INTO forex_rates (symbol, date, rate, is_filled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date)
		DO UPDATE SET rate = EXCLUDED.rate, is_filled = EXCLUDED.is_filled
	`

	return f.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rates {
			batch.Queue(query, r.Pair, models.Day(r.Date), r.Rate, r.IsFilled)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range rates {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert forex rate: %w", err)
			}
		}
		return nil
	})
}

// GetRange retrieves rates for a pair within a date range
func (f *PostgresForexRepository) GetRange(ctx context.Context, pair string, start, end time.Time) ([]models.ForexRate, error) {
	query := `
		SELECT symbol, date, rate, is_filled
		FROM forex_rates
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := f.db.GetPool().Query(ctx, query, pair, models.Day(start), models.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query forex range: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

// GetAll retrieves the full rate history for a pair
func (f *PostgresForexRepository) GetAll(ctx context.Context, pair string) ([]models.ForexRate, error) {
	query := `
		SELECT symbol, date, rate, is_filled
		FROM forex_rates
		WHERE symbol = $1
		ORDER BY date ASC
	`

	rows, err := f.db.GetPool().Query(ctx, query, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to query forex history: %w", err)
	}
	defer rows.Close()

	return scanRates(rows)
}

// GetLatestDate retrieves the most recent stored date for a pair
func (f *PostgresForexRepository) GetLatestDate(ctx context.Context, pair string) (time.Time, error) {
	var latest *time.Time
	err := f.db.GetPool().QueryRow(ctx, `SELECT MAX(date) FROM forex_rates WHERE symbol = $1`, pair).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest forex date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNotFound
	}

	return models.Day(*latest), nil
}

func scanRates(rows pgx.Rows) ([]models.ForexRate, error) {
	var rates []models.ForexRate
	for rows.Next() {
		var r models.ForexRate
		if err := rows.Scan(&r.Pair, &r.Date, &r.Rate, &r.IsFilled); err != nil {
			return nil, fmt.Errorf("failed to scan forex rate: %w", err)
		}
		rates = append(rates, r)
	}

	return rates, rows.Err()
}
