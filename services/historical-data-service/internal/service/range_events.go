package service

import (
	"context"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/events"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Event sources
const (
	sourceCandles = "candles"
	sourceCompare = "compare"
)

// rangeNotifier logs and publishes clamped ranges
type rangeNotifier struct {
	publisher events.RangePublisher
	logger    *zap.Logger
}

func (n rangeNotifier) adjusted(ctx context.Context, source string, symbolID, userID int, tf string, result timeframe.DateRangeValidation) {
	n.logger.Info("Date range adjusted",
		zap.String("source", source),
		zap.String("timeframe", tf),
		zap.Int("symbol_id", symbolID),
		zap.Int("selected_months", result.SelectedMonths),
		zap.Int("max_months", result.Limit.MaxMonths),
		zap.String("adjusted_start", utils.FormatDate(result.AdjustedStart)))

	if n.publisher == nil {
		return
	}

	event := model.RangeAdjustedEvent{
		Source:         source,
		SymbolID:       symbolID,
		UserID:         userID,
		Timeframe:      timeframe.Normalize(tf),
		OriginalStart:  utils.FormatDate(result.OriginalStart),
		AdjustedStart:  utils.FormatDate(result.AdjustedStart),
		EndDate:        utils.FormatDate(result.AdjustedEnd),
		SelectedMonths: result.SelectedMonths,
		MaxMonths:      result.Limit.MaxMonths,
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.PublishRangeAdjusted(pubCtx, event); err != nil {
		n.logger.Warn("Failed to publish range adjusted event",
			zap.String("source", source),
			zap.Error(err))
	}
}
