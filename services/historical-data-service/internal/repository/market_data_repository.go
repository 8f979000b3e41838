package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// CandleFilter selects candles for one symbol and timeframe
type CandleFilter struct {
	SymbolID      int
	Timeframe     string
	StartDate     *time.Time
	EndDate       *time.Time
	SortDirection string
	Limit         int
	Offset        int
}

// MarketDataRepository handles database operations for market data
type MarketDataRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMarketDataRepository creates a new market data repository
func NewMarketDataRepository(db *sqlx.DB, logger *zap.Logger) *MarketDataRepository {
	return &MarketDataRepository{
		db:     db,
		logger: logger,
	}
}

// whereClause builds the shared filter for candle queries
func (f CandleFilter) whereClause() (string, []interface{}) {
	clause := " WHERE symbol_id = $1 AND timeframe = $2"
	args := []interface{}{f.SymbolID, f.Timeframe}
	argCount := 3

	if f.StartDate != nil {
		clause += fmt.Sprintf(" AND candle_time >= $%d", argCount)
		args = append(args, *f.StartDate)
		argCount++
	}

	if f.EndDate != nil {
		clause += fmt.Sprintf(" AND candle_time <= $%d", argCount)
		args = append(args, *f.EndDate)
	}

	return clause, args
}

// GetCandles retrieves one page of candles
func (r *MarketDataRepository) GetCandles(ctx context.Context, filter CandleFilter) ([]model.Candle, error) {
	where, args := filter.whereClause()

	direction := "ASC"
	if filter.SortDirection == "DESC" {
		direction = "DESC"
	}

	query := `
		SELECT symbol_id, candle_time, open, high, low, close, volume
		FROM candles` + where + " ORDER BY candle_time " + direction

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	candles := []model.Candle{}
	err := r.db.SelectContext(ctx, &candles, query, args...)
	if err != nil {
		r.logger.Error("Failed to get candles",
			zap.Error(err),
			zap.Int("symbol_id", filter.SymbolID),
			zap.String("timeframe", filter.Timeframe))
		return nil, err
	}

	return candles, nil
}

// CountCandles counts the candles matching the filter, ignoring limit and offset
func (r *MarketDataRepository) CountCandles(ctx context.Context, filter CandleFilter) (int, error) {
	where, args := filter.whereClause()
	query := `SELECT COUNT(*) FROM candles` + where

	var total int
	err := r.db.GetContext(ctx, &total, query, args...)
	if err != nil {
		r.logger.Error("Failed to count candles",
			zap.Error(err),
			zap.Int("symbol_id", filter.SymbolID),
			zap.String("timeframe", filter.Timeframe))
		return 0, err
	}

	return total, nil
}

// GetDataAvailability returns the stored date span per symbol for a timeframe.
// Symbols without candles are omitted.
func (r *MarketDataRepository) GetDataAvailability(
	ctx context.Context,
	symbolIDs []int,
	timeframe string,
) ([]model.DataAvailability, error) {
	query := `
		SELECT
			symbol_id,
			MIN(candle_time) AS start_date,
			MAX(candle_time) AS end_date,
			COUNT(*) AS candles
		FROM candles
		WHERE symbol_id = ANY($1) AND timeframe = $2
		GROUP BY symbol_id
		ORDER BY symbol_id
	`

	ids := make([]int64, len(symbolIDs))
	for i, id := range symbolIDs {
		ids[i] = int64(id)
	}

	result := []model.DataAvailability{}
	err := r.db.SelectContext(ctx, &result, query, pq.Array(ids), timeframe)
	if err != nil {
		r.logger.Error("Failed to get data availability",
			zap.Error(err),
			zap.Ints("symbol_ids", symbolIDs),
			zap.String("timeframe", timeframe))
		return nil, err
	}

	return result, nil
}
