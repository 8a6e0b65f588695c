package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/asset-horizon/internal/models"
)

// MarketDataSource defines the interface for fetching market data from
// external providers
type MarketDataSource interface {
	// FetchDailyCloses retrieves daily closes for a symbol from the given date
	FetchDailyCloses(ctx context.Context, symbol string, from time.Time) ([]models.PricePoint, error)

	// FetchForexRates retrieves daily rates for a currency pair from the given date
	FetchForexRates(ctx context.Context, pair string, from time.Time) ([]models.ForexRate, error)

	// FetchExchangeHolidays retrieves scheduled closures for an exchange
	FetchExchangeHolidays(ctx context.Context, exchange string) ([]models.ExchangeHoliday, error)

	// FetchAssetList retrieves the provider's tradeable symbols for an asset type
	FetchAssetList(ctx context.Context, assetType models.AssetType) ([]models.Asset, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
