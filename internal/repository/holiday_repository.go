package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresHolidayRepository implements HolidayRepository for PostgreSQL
type PostgresHolidayRepository struct {
	db *database.DB
}

// NewPostgresHolidayRepository creates a new holiday repository
func NewPostgresHolidayRepository(db *database.DB) HolidayRepository {
	return &PostgresHolidayRepository{db: db}
}

// UpsertBatch inserts or replaces exchange holidays
func (h *PostgresHolidayRepository) UpsertBatch(ctx context.Context, holidays []models.ExchangeHoliday) error {
	if len(holidays) == 0 {
		return nil
	}

	query := `
		INSERT INTO exchange_holidays (exchange, holiday_date, holiday_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (exchange, holiday_date)
		DO UPDATE SET holiday_name = EXCLUDED.holiday_name
	`

	return h.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, hd := range holidays {
			batch.Queue(query, hd.Exchange, models.Day(hd.Date), hd.Name)
		}

		results := tx.SendBatch(ctx, batch)
		defer results.Close()

		for range holidays {
			if _, err := results.Exec(); err != nil {
				return fmt.Errorf("failed to upsert holiday: %w", err)
			}
		}
		return nil
	})
}

// ListHolidays retrieves all stored holidays for an exchange
func (h *PostgresHolidayRepository) ListHolidays(ctx context.Context, exchange string) ([]models.ExchangeHoliday, error) {
	query := `
		SELECT exchange, holiday_date, holiday_name
		FROM exchange_holidays
		WHERE exchange = $1
		ORDER BY holiday_date ASC
	`

	rows, err := h.db.GetPool().Query(ctx, query, exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []models.ExchangeHoliday
	for rows.Next() {
		var hd models.ExchangeHoliday
		if err := rows.Scan(&hd.Exchange, &hd.Date, &hd.Name); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, hd)
	}

	return holidays, rows.Err()
}
