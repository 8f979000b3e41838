package model

import (
	"encoding/json"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
)

// StrategyConfig is one DCA strategy taking part in a comparison
type StrategyConfig struct {
	Name   string                 `json:"name" binding:"required"`
	Type   string                 `json:"type" binding:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// CompareRequest represents the input parameters for a strategy comparison
type CompareRequest struct {
	SymbolID       int              `json:"symbol_id" binding:"required,min=1"`
	Timeframe      string           `json:"timeframe" binding:"required,timeframe"`
	StartDate      string           `json:"start_date" binding:"required"`
	EndDate        string           `json:"end_date" binding:"required"`
	InitialCapital float64          `json:"initial_capital" binding:"required,gt=0"`
	Strategies     []StrategyConfig `json:"strategies" binding:"required,min=2,max=10,dive"`
}

// EngineCompareRequest is the payload forwarded to the backtest engine, with the
// dates already parsed and clamped
type EngineCompareRequest struct {
	SymbolID       int              `json:"symbol_id"`
	Timeframe      string           `json:"timeframe"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	InitialCapital float64          `json:"initial_capital"`
	Strategies     []StrategyConfig `json:"strategies"`
}

// CompareResponse wraps the engine result with the range check that was applied
type CompareResponse struct {
	Result json.RawMessage               `json:"result"`
	Range  timeframe.DateRangeValidation `json:"range"`
}
