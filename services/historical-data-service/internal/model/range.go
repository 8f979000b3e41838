package model

// RangeValidationRequest is the body of POST /api/v1/timeframes/range/validate.
// Dates accept YYYY-MM-DD or RFC3339.
type RangeValidationRequest struct {
	Timeframe string `json:"timeframe" binding:"required,timeframe"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// RangeAdjustedEvent is published whenever a requested range is clamped
type RangeAdjustedEvent struct {
	Source         string `json:"source"`
	SymbolID       int    `json:"symbol_id,omitempty"`
	UserID         int    `json:"user_id,omitempty"`
	Timeframe      string `json:"timeframe"`
	OriginalStart  string `json:"original_start_date"`
	AdjustedStart  string `json:"adjusted_start_date"`
	EndDate        string `json:"end_date"`
	SelectedMonths int    `json:"selected_months"`
	MaxMonths      int    `json:"max_months"`
}
