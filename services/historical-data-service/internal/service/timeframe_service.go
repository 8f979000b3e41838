package service

import (
	"fmt"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/metrics"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"go.uber.org/zap"
)

// TimeframeService handles timeframe operations
type TimeframeService struct {
	logger *zap.Logger
}

// NewTimeframeService creates a new timeframe service
func NewTimeframeService(logger *zap.Logger) *TimeframeService {
	return &TimeframeService{
		logger: logger,
	}
}

// GetAllTimeframes lists the supported timeframes, shortest candle first
func (s *TimeframeService) GetAllTimeframes() []model.Timeframe {
	keys := timeframe.Keys()
	timeframes := make([]model.Timeframe, 0, len(keys))
	for i, key := range keys {
		limit, _ := timeframe.Lookup(key)
		timeframes = append(timeframes, model.Timeframe{
			ID:          i + 1,
			Name:        key,
			Minutes:     timeframe.Minutes(key),
			DisplayName: timeframe.Label(key),
			Limit:       limit,
		})
	}
	return timeframes
}

// ValidateTimeframe checks if a timeframe is one of the supported keys
func (s *TimeframeService) ValidateTimeframe(tf string) bool {
	return timeframe.IsKnown(tf)
}

// ValidateRange parses the request dates and checks the span against the
// timeframe limit
func (s *TimeframeService) ValidateRange(request *model.RangeValidationRequest) (timeframe.DateRangeValidation, error) {
	start, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return timeframe.DateRangeValidation{}, fmt.Errorf("%w: start_date: %v", ErrInvalidDateRange, err)
	}

	end, err := utils.ParseDate(request.EndDate)
	if err != nil {
		return timeframe.DateRangeValidation{}, fmt.Errorf("%w: end_date: %v", ErrInvalidDateRange, err)
	}

	if start.After(end) {
		return timeframe.DateRangeValidation{}, fmt.Errorf("%w: start date is after end date", ErrInvalidDateRange)
	}

	result := timeframe.Validate(start, end, request.Timeframe)
	metrics.RecordRangeValidation(request.Timeframe, result)

	if result.WasAdjusted {
		s.logger.Debug("Range exceeds timeframe limit",
			zap.String("timeframe", request.Timeframe),
			zap.Int("selected_months", result.SelectedMonths),
			zap.Int("max_months", result.Limit.MaxMonths))
	}

	return result, nil
}

// DefaultRange returns the window a chart shows first for tf, ending at end
func (s *TimeframeService) DefaultRange(tf string, end time.Time) model.DateRange {
	start, end := timeframe.DefaultVisibleRange(end, tf)
	return model.DateRange{Start: start, End: end}
}
