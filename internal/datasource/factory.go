package datasource

import (
	"fmt"
	"log"

	"github.com/yourusername/asset-horizon/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// FMPSourceType is the Financial Modeling Prep provider
	FMPSourceType SourceType = "fmp"
)

// Factory creates MarketDataSource implementations based on configuration
type Factory struct {
	logger *log.Logger
	config *config.Config
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// Create creates the market data source for the configured provider
func (f *Factory) Create(sourceType SourceType) (MarketDataSource, error) {
	if f.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	switch sourceType {
	case FMPSourceType:
		return f.createFMPSource()
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

func (f *Factory) createFMPSource() (MarketDataSource, error) {
	dsCfg := f.config.DataSource
	if dsCfg.APIKey == "" {
		return nil, fmt.Errorf("FMP API key is required")
	}

	httpClient := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           dsCfg.RequestTimeout(),
		MaxRetries:        dsCfg.RetryAttempts,
		RetryWaitMin:      DefaultHTTPClientConfig().RetryWaitMin,
		RetryWaitMax:      DefaultHTTPClientConfig().RetryWaitMax,
		RateLimit:         float64(dsCfg.RequestsPerSecond),
		Burst:             dsCfg.BurstSize,
		CircuitBreakerMax: DefaultHTTPClientConfig().CircuitBreakerMax,
	}, f.logger)

	return NewFMPClient(httpClient, dsCfg.BaseURL, dsCfg.APIKey, true, f.logger), nil
}
