package model

import (
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
)

// Candle is one row of the candles table
type Candle struct {
	SymbolID int       `json:"symbol_id" db:"symbol_id"`
	Time     time.Time `json:"time" db:"candle_time"`
	Open     float64   `json:"open" db:"open"`
	High     float64   `json:"high" db:"high"`
	Low      float64   `json:"low" db:"low"`
	Close    float64   `json:"close" db:"close"`
	Volume   float64   `json:"volume" db:"volume"`
}

// MarketDataQuery represents a query for candle data
type MarketDataQuery struct {
	SymbolID      int        `json:"symbol_id" form:"symbol_id" binding:"required"`
	Timeframe     string     `json:"timeframe" form:"timeframe" binding:"required"`
	StartDate     *time.Time `json:"start_date" form:"start_date"`
	EndDate       *time.Time `json:"end_date" form:"end_date"`
	SortDirection string     `json:"sort_direction" form:"sort_direction"`
	UserID        int        `json:"-" form:"-"`
}

// CandlePage is one page of candles together with the range check applied to
// the query. Range is nil when the query was open-ended.
type CandlePage struct {
	Candles []Candle                       `json:"candles"`
	Total   int                            `json:"total"`
	Range   *timeframe.DateRangeValidation `json:"range,omitempty"`
}

// DataAvailability is the span of stored candles for one symbol
type DataAvailability struct {
	SymbolID  int        `json:"symbol_id" db:"symbol_id"`
	StartDate *time.Time `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"`
	Candles   int        `json:"candles" db:"candles"`
}

// DateRange represents a range of dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
