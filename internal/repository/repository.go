package repository

import (
	"fmt"

	"github.com/yourusername/asset-horizon/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Asset   AssetRepository
	Price   PriceRepository
	Forex   ForexRepository
	Holiday HolidayRepository
	BuyHold BuyHoldPerformanceRepository
	DCA     DCAPerformanceRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Asset:   NewPostgresAssetRepository(db),
		Price:   NewPostgresPriceRepository(db),
		Forex:   NewPostgresForexRepository(db),
		Holiday: NewPostgresHolidayRepository(db),
		BuyHold: NewPostgresBuyHoldRepository(db),
		DCA:     NewPostgresDCARepository(db),
	}, nil
}
