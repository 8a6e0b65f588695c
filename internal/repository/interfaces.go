package repository

import (
	"context"
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

// AssetRepository defines the interface for asset metadata access
type AssetRepository interface {
	Create(ctx context.Context, asset *models.Asset) error
	GetBySymbol(ctx context.Context, symbol string) (*models.Asset, error)
	ListByType(ctx context.Context, assetType models.AssetType) ([]*models.Asset, error)
	ListAll(ctx context.Context) ([]*models.Asset, error)
	Update(ctx context.Context, asset *models.Asset) error
}

// PriceRepository defines the interface for daily close data access. Each
// asset type is stored in its own price table.
type PriceRepository interface {
	InsertBatch(ctx context.Context, assetType models.AssetType, prices []*models.PricePoint) error
	UpsertBatch(ctx context.Context, assetType models.AssetType, prices []*models.PricePoint) error
	GetRange(ctx context.Context, assetType models.AssetType, symbol string, start, end time.Time) ([]models.PricePoint, error)
	GetAll(ctx context.Context, assetType models.AssetType, symbol string) ([]models.PricePoint, error)
	GetLatestDate(ctx context.Context, assetType models.AssetType, symbol string) (time.Time, error)
}

// ForexRepository defines the interface for currency rate data access
type ForexRepository interface {
	UpsertBatch(ctx context.Context, rates []*models.ForexRate) error
	GetRange(ctx context.Context, pair string, start, end time.Time) ([]models.ForexRate, error)
	GetAll(ctx context.Context, pair string) ([]models.ForexRate, error)
	GetLatestDate(ctx context.Context, pair string) (time.Time, error)
}

// HolidayRepository defines the interface for exchange holiday data access
type HolidayRepository interface {
	UpsertBatch(ctx context.Context, holidays []models.ExchangeHoliday) error
	ListHolidays(ctx context.Context, exchange string) ([]models.ExchangeHoliday, error)
}

// BuyHoldPerformanceRepository defines persistence for buy-and-hold rows,
// keyed by (symbol, start_date, end_date)
type BuyHoldPerformanceRepository interface {
	UpsertBatch(ctx context.Context, rows []*models.BuyHoldPerformance) error
	GetBySymbol(ctx context.Context, symbol string) ([]*models.BuyHoldPerformance, error)
	GetBySymbolAndPeriod(ctx context.Context, symbol string, years int) ([]*models.BuyHoldPerformance, error)
	CountBySymbol(ctx context.Context, symbol string) (int, error)
}

// DCAPerformanceRepository defines persistence for dollar-cost-averaging rows,
// keyed by (symbol, start_date, end_date, dca_frequency)
type DCAPerformanceRepository interface {
	UpsertBatch(ctx context.Context, rows []*models.DCAPerformance) error
	GetBySymbol(ctx context.Context, symbol string) ([]*models.DCAPerformance, error)
	GetBySymbolAndFrequency(ctx context.Context, symbol string, freq models.DCAFrequency) ([]*models.DCAPerformance, error)
	CountBySymbol(ctx context.Context, symbol string) (int, error)
}
