package handler

import (
	"net/http"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BacktestHandler handles strategy comparison requests
type BacktestHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtestService *service.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// CompareStrategies runs several DCA strategies over the same range
// POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareStrategies(c *gin.Context) {
	var request model.CompareRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.backtestService.CompareStrategies(c.Request.Context(), &request, currentUserID(c))
	if err != nil {
		status := statusForError(err)
		switch status {
		case http.StatusInternalServerError:
			utils.SendErrorResponse(c, status, "Failed to compare strategies")
		case http.StatusBadGateway:
			utils.SendErrorResponse(c, status, "Backtest engine unavailable")
		default:
			utils.SendErrorResponse(c, status, err.Error())
		}
		return
	}

	if resp.Range.WasAdjusted {
		c.Header(RangeAdjustedHeader, "true")
	}

	c.JSON(http.StatusOK, resp)
}
