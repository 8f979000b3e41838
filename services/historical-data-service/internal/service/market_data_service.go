package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/events"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/metrics"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/repository"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"go.uber.org/zap"
)

// CandleStore is the candle storage used by MarketDataService
type CandleStore interface {
	GetCandles(ctx context.Context, filter repository.CandleFilter) ([]model.Candle, error)
	CountCandles(ctx context.Context, filter repository.CandleFilter) (int, error)
	GetDataAvailability(ctx context.Context, symbolIDs []int, timeframe string) ([]model.DataAvailability, error)
}

// SymbolStore looks up symbols
type SymbolStore interface {
	GetSymbolByID(ctx context.Context, id int) (*model.Symbol, error)
}

// MarketDataService handles market data operations
type MarketDataService struct {
	marketDataRepo CandleStore
	symbolRepo     SymbolStore
	notifier       rangeNotifier
	now            func() time.Time
	logger         *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	marketDataRepo CandleStore,
	symbolRepo SymbolStore,
	publisher events.RangePublisher,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		marketDataRepo: marketDataRepo,
		symbolRepo:     symbolRepo,
		notifier:       rangeNotifier{publisher: publisher, logger: logger},
		now:            time.Now,
		logger:         logger,
	}
}

// GetCandles retrieves one page of candles. When a start date is given the range
// is checked against the timeframe limit first and the clamped start is used
// for the query. A missing end date counts as now.
func (s *MarketDataService) GetCandles(
	ctx context.Context,
	query *model.MarketDataQuery,
	page, limit int,
) (*model.CandlePage, error) {
	if query.SymbolID <= 0 {
		return nil, ErrInvalidSymbol
	}

	if query.Timeframe == "" {
		return nil, ErrTimeframeRequired
	}

	if query.StartDate != nil && query.EndDate != nil && query.StartDate.After(*query.EndDate) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidDateRange)
	}

	symbol, err := s.symbolRepo.GetSymbolByID(ctx, query.SymbolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol: %w", err)
	}
	if symbol == nil {
		return nil, ErrSymbolNotFound
	}

	if page < 1 {
		page = 1
	}

	filter := repository.CandleFilter{
		SymbolID:      query.SymbolID,
		Timeframe:     timeframe.Normalize(query.Timeframe),
		StartDate:     query.StartDate,
		EndDate:       query.EndDate,
		SortDirection: utils.NormalizeSortDirection(query.SortDirection, "ASC"),
		Limit:         limit,
		Offset:        utils.CalculateOffset(page, limit),
	}

	result := &model.CandlePage{}

	if query.StartDate != nil {
		end := s.now().UTC()
		if query.EndDate != nil {
			end = *query.EndDate
		}

		check := timeframe.Validate(*query.StartDate, end, query.Timeframe)
		metrics.RecordRangeValidation(query.Timeframe, check)

		if check.WasAdjusted {
			adjustedStart := check.AdjustedStart
			filter.StartDate = &adjustedStart
			filter.EndDate = &end
			s.notifier.adjusted(ctx, sourceCandles, query.SymbolID, query.UserID, query.Timeframe, check)
		}
		result.Range = &check
	}

	total, err := s.marketDataRepo.CountCandles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count candles: %w", err)
	}

	candles, err := s.marketDataRepo.GetCandles(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get candles: %w", err)
	}

	result.Candles = candles
	result.Total = total
	return result, nil
}

// GetDataAvailability returns the stored candle span for each requested symbol
func (s *MarketDataService) GetDataAvailability(
	ctx context.Context,
	symbolIDs []int,
	tf string,
) ([]model.DataAvailability, error) {
	if len(symbolIDs) == 0 {
		return nil, ErrInvalidSymbol
	}
	for _, id := range symbolIDs {
		if id <= 0 {
			return nil, ErrInvalidSymbol
		}
	}

	if tf == "" {
		return nil, ErrTimeframeRequired
	}

	availability, err := s.marketDataRepo.GetDataAvailability(ctx, symbolIDs, timeframe.Normalize(tf))
	if err != nil {
		return nil, fmt.Errorf("failed to get data availability: %w", err)
	}

	return availability, nil
}
