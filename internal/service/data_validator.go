package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/asset-horizon/internal/models"
)

// DataValidator validates fetched market data before it lands in the raw
// tables. Provider payloads occasionally carry zero prices or far-future
// dates; both would poison the fill and the calculators downstream.
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DataValidator{logger: logger}
}

// ValidatePricePoint validates a fetched daily close
func (v *DataValidator) ValidatePricePoint(p *models.PricePoint) []string {
	var errors []string

	if p.Symbol == "" {
		errors = append(errors, "symbol is required")
	}

	if p.Date.IsZero() {
		errors = append(errors, "date is required")
	}

	if p.Price.IsNegative() || p.Price.IsZero() {
		errors = append(errors, fmt.Sprintf("price must be positive, got %s", p.Price))
	}

	now := time.Now().UTC()
	if p.Date.After(now.Add(24 * time.Hour)) {
		errors = append(errors, fmt.Sprintf("date in the future: %s", p.Date.Format("2006-01-02")))
	}

	return errors
}

// ValidateForexRate validates a fetched daily rate
func (v *DataValidator) ValidateForexRate(r *models.ForexRate) []string {
	var errors []string

	if r.Pair == "" {
		errors = append(errors, "pair is required")
	}

	if len(r.Pair) != 6 {
		errors = append(errors, fmt.Sprintf("pair must be two 3-letter codes, got %s", r.Pair))
	}

	if r.Date.IsZero() {
		errors = append(errors, "date is required")
	}

	if r.Rate.IsNegative() || r.Rate.IsZero() {
		errors = append(errors, fmt.Sprintf("rate must be positive, got %s", r.Rate))
	}

	return errors
}

// ValidateAsset validates catalog metadata fetched from the provider
func (v *DataValidator) ValidateAsset(a *models.Asset) []string {
	var errors []string

	if a.Symbol == "" {
		errors = append(errors, "symbol is required")
	}

	if !a.AssetType.Valid() {
		errors = append(errors, fmt.Sprintf("unknown asset type: %s", a.AssetType))
	}

	if len(a.Currency) != 3 {
		errors = append(errors, fmt.Sprintf("currency must be a 3-letter code, got %q", a.Currency))
	}

	return errors
}

// FilterPricePoints drops invalid points, logging each rejection, and
// returns the survivors with the rejected count.
func (v *DataValidator) FilterPricePoints(points []models.PricePoint) ([]models.PricePoint, int) {
	out := points[:0]
	rejected := 0

	for _, p := range points {
		if problems := v.ValidatePricePoint(&p); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"symbol":   p.Symbol,
				"problems": problems,
			}).Warn("Rejected price point")
			continue
		}
		out = append(out, p)
	}
	return out, rejected
}

// FilterForexRates drops invalid rates, logging each rejection.
func (v *DataValidator) FilterForexRates(rates []models.ForexRate) ([]models.ForexRate, int) {
	out := rates[:0]
	rejected := 0

	for _, r := range rates {
		if problems := v.ValidateForexRate(&r); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"pair":     r.Pair,
				"problems": problems,
			}).Warn("Rejected forex rate")
			continue
		}
		out = append(out, r)
	}
	return out, rejected
}
