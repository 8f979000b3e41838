package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RangeAdjustedHeader is set on candle responses whose range was clamped
const RangeAdjustedHeader = "X-Range-Adjusted"

// MarketDataHandler handles market data HTTP requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(marketDataService *service.MarketDataService, logger *zap.Logger) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		logger:            logger,
	}
}

// GetCandles handles retrieving candle data with dynamic timeframe and pagination
// GET /api/v1/market-data/candles
func (h *MarketDataHandler) GetCandles(c *gin.Context) {
	var query model.MarketDataQuery

	symbolID, err := strconv.Atoi(c.Query("symbol_id"))
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid symbol ID")
		return
	}
	query.SymbolID = symbolID

	query.Timeframe = c.Query("timeframe")
	if query.Timeframe == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Timeframe is required")
		return
	}

	if startStr := c.Query("start_date"); startStr != "" {
		startDate, err := utils.ParseDate(startStr)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid start_date format. Use YYYY-MM-DD or RFC3339")
			return
		}
		query.StartDate = &startDate
	}

	if endStr := c.Query("end_date"); endStr != "" {
		endDate, err := utils.ParseDate(endStr)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD or RFC3339")
			return
		}
		query.EndDate = &endDate
	}

	query.SortDirection = c.Query("sort_direction")
	query.UserID = currentUserID(c)

	params := utils.ParsePaginationParams(c, 1000, 5000)

	page, err := h.marketDataService.GetCandles(c.Request.Context(), &query, params.Page, params.Limit)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get candles",
				zap.Error(err),
				zap.Int("symbolID", query.SymbolID),
				zap.String("timeframe", query.Timeframe))
			utils.SendErrorResponse(c, status, "Failed to get candle data")
			return
		}
		utils.SendErrorResponse(c, status, err.Error())
		return
	}

	var extra gin.H
	if page.Range != nil {
		extra = gin.H{"range": page.Range}
		if page.Range.WasAdjusted {
			c.Header(RangeAdjustedHeader, "true")
		}
	}

	utils.SendPaginatedResponse(c, http.StatusOK, page.Candles, page.Total, params.Page, params.Limit, extra)
}

// GetDataAvailability returns the stored candle span for a set of symbols
// GET /api/v1/market-data/availability
func (h *MarketDataHandler) GetDataAvailability(c *gin.Context) {
	raw := c.Query("symbol_ids")
	if raw == "" {
		utils.SendErrorResponse(c, http.StatusBadRequest, "symbol_ids is required")
		return
	}

	var symbolIDs []int
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid symbol ID: "+part)
			return
		}
		symbolIDs = append(symbolIDs, id)
	}

	tf := c.Query("timeframe")
	availability, err := h.marketDataService.GetDataAvailability(c.Request.Context(), symbolIDs, tf)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get data availability",
				zap.Error(err),
				zap.Ints("symbolIDs", symbolIDs),
				zap.String("timeframe", tf))
			utils.SendErrorResponse(c, status, "Failed to get data availability")
			return
		}
		utils.SendErrorResponse(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"timeframe":    tf,
		"availability": availability,
	})
}
