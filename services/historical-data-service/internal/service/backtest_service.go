package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/events"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/metrics"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"go.uber.org/zap"
)

// StrategyComparer runs strategy comparisons on the backtest engine
type StrategyComparer interface {
	CompareStrategies(ctx context.Context, request *model.EngineCompareRequest) (json.RawMessage, error)
}

// BacktestService proxies strategy comparisons to the backtest engine after
// fitting the requested range to the timeframe limit
type BacktestService struct {
	backtestClient StrategyComparer
	notifier       rangeNotifier
	logger         *zap.Logger
}

// NewBacktestService creates a new backtest service
func NewBacktestService(
	backtestClient StrategyComparer,
	publisher events.RangePublisher,
	logger *zap.Logger,
) *BacktestService {
	return &BacktestService{
		backtestClient: backtestClient,
		notifier:       rangeNotifier{publisher: publisher, logger: logger},
		logger:         logger,
	}
}

// CompareStrategies clamps the range, forwards the comparison and returns the
// engine result with the range check attached
func (s *BacktestService) CompareStrategies(
	ctx context.Context,
	request *model.CompareRequest,
	userID int,
) (*model.CompareResponse, error) {
	if request.SymbolID <= 0 {
		return nil, ErrInvalidSymbol
	}

	if request.Timeframe == "" {
		return nil, ErrTimeframeRequired
	}

	start, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date: %v", ErrInvalidDateRange, err)
	}

	end, err := utils.ParseDate(request.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date: %v", ErrInvalidDateRange, err)
	}

	if start.After(end) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidDateRange)
	}

	check := timeframe.Validate(start, end, request.Timeframe)
	metrics.RecordRangeValidation(request.Timeframe, check)
	if check.WasAdjusted {
		s.notifier.adjusted(ctx, sourceCompare, request.SymbolID, userID, request.Timeframe, check)
	}

	engineRequest := &model.EngineCompareRequest{
		SymbolID:       request.SymbolID,
		Timeframe:      timeframe.Normalize(request.Timeframe),
		StartDate:      check.AdjustedStart,
		EndDate:        check.AdjustedEnd,
		InitialCapital: request.InitialCapital,
		Strategies:     request.Strategies,
	}

	result, err := s.backtestClient.CompareStrategies(ctx, engineRequest)
	if err != nil {
		s.logger.Error("Strategy comparison failed",
			zap.Error(err),
			zap.Int("symbol_id", request.SymbolID),
			zap.String("timeframe", request.Timeframe),
			zap.Int("strategies", len(request.Strategies)))
		return nil, fmt.Errorf("failed to compare strategies: %w", err)
	}

	return &model.CompareResponse{
		Result: result,
		Range:  check,
	}, nil
}
