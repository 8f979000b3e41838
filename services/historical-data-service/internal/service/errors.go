package service

import "errors"

var (
	ErrInvalidSymbol     = errors.New("invalid symbol ID")
	ErrTimeframeRequired = errors.New("timeframe is required")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInvalidDateRange  = errors.New("invalid date range")
)
