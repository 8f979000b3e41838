package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TimeframeHandler handles timeframe HTTP requests
type TimeframeHandler struct {
	timeframeService *service.TimeframeService
	logger           *zap.Logger
}

// NewTimeframeHandler creates a new timeframe handler
func NewTimeframeHandler(timeframeService *service.TimeframeService, logger *zap.Logger) *TimeframeHandler {
	return &TimeframeHandler{
		timeframeService: timeframeService,
		logger:           logger,
	}
}

// GetAllTimeframes handles retrieving all timeframes
// GET /api/v1/timeframes
func (h *TimeframeHandler) GetAllTimeframes(c *gin.Context) {
	c.JSON(http.StatusOK, h.timeframeService.GetAllTimeframes())
}

// ValidateTimeframe handles validating a timeframe
// GET /api/v1/timeframes/validate/:timeframe
func (h *TimeframeHandler) ValidateTimeframe(c *gin.Context) {
	tf := c.Param("timeframe")

	c.JSON(http.StatusOK, gin.H{
		"timeframe": tf,
		"valid":     h.timeframeService.ValidateTimeframe(tf),
	})
}

// ValidateRange checks a date range against the timeframe limit
// POST /api/v1/timeframes/range/validate
func (h *TimeframeHandler) ValidateRange(c *gin.Context) {
	var request model.RangeValidationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.timeframeService.ValidateRange(&request)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to validate range", zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, "Failed to validate range")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDefaultRange returns the initially visible chart window
// GET /api/v1/timeframes/:timeframe/default-range
func (h *TimeframeHandler) GetDefaultRange(c *gin.Context) {
	tf := c.Param("timeframe")

	end := time.Now().UTC()
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := utils.ParseDate(endStr)
		if err != nil {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid end_date format. Use YYYY-MM-DD or RFC3339")
			return
		}
		end = parsed
	}

	r := h.timeframeService.DefaultRange(tf, end)
	c.JSON(http.StatusOK, gin.H{
		"timeframe":    tf,
		"start_date":   r.Start,
		"end_date":     r.End,
		"visible_days": timeframe.DefaultVisibleDays(tf),
	})
}
