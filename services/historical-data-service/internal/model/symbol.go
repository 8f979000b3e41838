package model

import (
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
)

// Symbol represents a tradable market symbol
type Symbol struct {
	ID            int        `json:"id" db:"id"`
	Symbol        string     `json:"symbol" db:"symbol"`
	Name          string     `json:"name" db:"name"`
	Exchange      string     `json:"exchange" db:"exchange"`
	AssetType     string     `json:"asset_type" db:"asset_type"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	DataAvailable bool       `json:"data_available" db:"data_available"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Timeframe represents a candle timeframe (1h, 4h, 1d, 1w, 1m) and the history
// that may be requested for it
type Timeframe struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Minutes     int             `json:"minutes"`
	DisplayName string          `json:"display_name"`
	Limit       timeframe.Limit `json:"limit"`
}
