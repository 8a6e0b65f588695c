package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/asset-horizon/internal/database"
	"github.com/yourusername/asset-horizon/internal/models"
)

// PostgresAssetRepository implements AssetRepository for PostgreSQL
type PostgresAssetRepository struct {
	db *database.DB
}

// NewPostgresAssetRepository creates a new asset repository
func NewPostgresAssetRepository(db *database.DB) AssetRepository {
	return &PostgresAssetRepository{db: db}
}

// Create inserts a new asset
func (a *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (symbol, asset_type, name, currency, exchange, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := a.db.GetPool().Exec(ctx, query,
		asset.Symbol, asset.AssetType, asset.Name, asset.Currency, asset.Exchange,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	return nil
}

// GetBySymbol retrieves an asset by its symbol
func (a *PostgresAssetRepository) GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error) {
	query := `
		SELECT symbol, asset_type, name, currency, exchange, created_at, updated_at
		FROM assets
		WHERE symbol = $1
	`

	asset := &models.Asset{}
	err := a.db.GetPool().QueryRow(ctx, query, symbol).Scan(
		&asset.Symbol, &asset.AssetType, &asset.Name, &asset.Currency,
		&asset.Exchange, &asset.CreatedAt, &asset.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// ListByType retrieves all assets of one type
func (a *PostgresAssetRepository) ListByType(ctx context.Context, assetType models.AssetType) ([]*models.Asset, error) {
	query := `
		SELECT symbol, asset_type, name, currency, exchange, created_at, updated_at
		FROM assets
		WHERE asset_type = $1
		ORDER BY symbol ASC
	`

	rows, err := a.db.GetPool().Query(ctx, query, assetType)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets by type: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// ListAll retrieves every tracked asset
func (a *PostgresAssetRepository) ListAll(ctx context.Context) ([]*models.Asset, error) {
	query := `
		SELECT symbol, asset_type, name, currency, exchange, created_at, updated_at
		FROM assets
		ORDER BY asset_type ASC, symbol ASC
	`

	rows, err := a.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// Update updates an asset's metadata
func (a *PostgresAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	query := `
		UPDATE assets
		SET name = $2, currency = $3, exchange = $4, updated_at = NOW()
		WHERE symbol = $1
	`

	tag, err := a.db.GetPool().Exec(ctx, query,
		asset.Symbol, asset.Name, asset.Currency, asset.Exchange,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanAssets(rows pgx.Rows) ([]*models.Asset, error) {
	var assets []*models.Asset
	for rows.Next() {
		asset := &models.Asset{}
		err := rows.Scan(
			&asset.Symbol, &asset.AssetType, &asset.Name, &asset.Currency,
			&asset.Exchange, &asset.CreatedAt, &asset.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}
