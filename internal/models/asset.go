package models

import "time"

// AssetType identifies which curated asset class a symbol belongs to.
type AssetType string

const (
	AssetTypeCrypto    AssetType = "crypto"
	AssetTypeCommodity AssetType = "commodity"
	AssetTypeIndex     AssetType = "index"
)

// PriceTable returns the price table backing an asset type.
func (t AssetType) PriceTable() string {
	switch t {
	case AssetTypeCrypto:
		return "crypto_prices"
	case AssetTypeCommodity:
		return "commodity_prices"
	case AssetTypeIndex:
		return "index_prices"
	}
	return ""
}

// Valid reports whether the asset type is one of the curated classes.
func (t AssetType) Valid() bool {
	return t.PriceTable() != ""
}

// Asset represents a tradeable asset whose daily closes are tracked.
type Asset struct {
	Symbol    string    `db:"symbol" json:"symbol" validate:"required"`
	AssetType AssetType `db:"asset_type" json:"asset_type" validate:"required"`
	Name      string    `db:"name" json:"name"`
	Currency  string    `db:"currency" json:"currency" validate:"required,len=3"`
	Exchange  string    `db:"exchange" json:"exchange"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// QuotesInUSD reports whether the asset needs no currency conversion.
func (a *Asset) QuotesInUSD() bool {
	return a.Currency == "" || a.Currency == "USD"
}

// ForexPair returns the pair symbol used to convert the asset's native
// currency to USD, e.g. "EURUSD".
func (a *Asset) ForexPair() string {
	if a.QuotesInUSD() {
		return ""
	}
	return a.Currency + "USD"
}
