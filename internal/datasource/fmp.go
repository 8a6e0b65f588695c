package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/asset-horizon/internal/models"
)

const fmpSourceName = "fmp"

// FMPClient implements MarketDataSource for the Financial Modeling Prep API
type FMPClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// fmpPriceRecord is one row from the historical-price-eod/light endpoint
type fmpPriceRecord struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// fmpHolidayRecord is one row from the holidays-by-exchange endpoint
type fmpHolidayRecord struct {
	Exchange string `json:"exchange"`
	Date     string `json:"date"`
	Name     string `json:"name"`
}

// fmpListRecord is one row from the commodities-list / index-list endpoints
type fmpListRecord struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// NewFMPClient creates a new Financial Modeling Prep API client
func NewFMPClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *FMPClient {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/stable"
	}
	return &FMPClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the data source name
func (c *FMPClient) Name() string {
	return fmpSourceName
}

// IsEnabled returns whether the source is enabled
func (c *FMPClient) IsEnabled() bool {
	return c.enabled
}

// FetchDailyCloses retrieves daily closes for a symbol from the given date
func (c *FMPClient) FetchDailyCloses(ctx context.Context, symbol string, from time.Time) ([]models.PricePoint, error) {
	records, err := c.fetchPriceRecords(ctx, symbol, from)
	if err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return nil, NewDataSourceError(fmpSourceName, ErrCodeInvalidData,
				fmt.Sprintf("bad date %q for %s", rec.Date, symbol), err)
		}
		points = append(points, models.PricePoint{
			Symbol: symbol,
			Date:   models.Day(date),
			Price:  decimal.NewFromFloat(rec.Price),
		})
	}

	return points, nil
}

// FetchForexRates retrieves daily rates for a currency pair. The provider
// serves pairs through the same EOD endpoint as assets.
func (c *FMPClient) FetchForexRates(ctx context.Context, pair string, from time.Time) ([]models.ForexRate, error) {
	records, err := c.fetchPriceRecords(ctx, pair, from)
	if err != nil {
		return nil, err
	}

	rates := make([]models.ForexRate, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return nil, NewDataSourceError(fmpSourceName, ErrCodeInvalidData,
				fmt.Sprintf("bad date %q for %s", rec.Date, pair), err)
		}
		rates = append(rates, models.ForexRate{
			Pair: pair,
			Date: models.Day(date),
			Rate: decimal.NewFromFloat(rec.Price),
		})
	}

	return rates, nil
}

// FetchExchangeHolidays retrieves scheduled closures for an exchange
func (c *FMPClient) FetchExchangeHolidays(ctx context.Context, exchange string) ([]models.ExchangeHoliday, error) {
	params := url.Values{}
	params.Set("exchange", exchange)

	var records []fmpHolidayRecord
	if err := c.getJSON(ctx, "/holidays-by-exchange", params, &records); err != nil {
		return nil, err
	}

	holidays := make([]models.ExchangeHoliday, 0, len(records))
	for _, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return nil, NewDataSourceError(fmpSourceName, ErrCodeInvalidData,
				fmt.Sprintf("bad holiday date %q for %s", rec.Date, exchange), err)
		}
		name := rec.Name
		if name == "" {
			name = "Holiday"
		}
		holidays = append(holidays, models.ExchangeHoliday{
			Exchange: exchange,
			Date:     models.Day(date),
			Name:     name,
		})
	}

	return holidays, nil
}

// FetchAssetList retrieves the provider's tradeable symbols for an asset type.
// Crypto has no list endpoint on this provider; callers curate crypto symbols
// in configuration instead.
func (c *FMPClient) FetchAssetList(ctx context.Context, assetType models.AssetType) ([]models.Asset, error) {
	var endpoint string
	switch assetType {
	case models.AssetTypeCommodity:
		endpoint = "/commodities-list"
	case models.AssetTypeIndex:
		endpoint = "/index-list"
	default:
		return nil, NewDataSourceError(fmpSourceName, ErrCodeNotFound,
			fmt.Sprintf("no list endpoint for asset type %q", assetType), nil)
	}

	var records []fmpListRecord
	if err := c.getJSON(ctx, endpoint, url.Values{}, &records); err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(records))
	for _, rec := range records {
		if rec.Symbol == "" || rec.Name == "" {
			continue
		}
		assets = append(assets, models.Asset{
			Symbol:    rec.Symbol,
			AssetType: assetType,
			Name:      rec.Name,
			Currency:  normalizeCurrency(rec.Currency),
			Exchange:  rec.Exchange,
		})
	}

	return assets, nil
}

func (c *FMPClient) fetchPriceRecords(ctx context.Context, symbol string, from time.Time) ([]fmpPriceRecord, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from.Format("2006-01-02"))

	var records []fmpPriceRecord
	if err := c.getJSON(ctx, "/historical-price-eod/light", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *FMPClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if !c.enabled {
		return NewDataSourceError(fmpSourceName, ErrCodeNetworkError, "data source is disabled", nil)
	}

	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewDataSourceError(fmpSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(fmpSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return NewDataSourceError(fmpSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewDataSourceError(fmpSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return NewDataSourceError(fmpSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(fmpSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	return nil
}

// normalizeCurrency maps provider currency quirks to ISO codes (USX is cents)
func normalizeCurrency(currency string) string {
	if currency == "USX" || currency == "" {
		return "USD"
	}
	return currency
}
