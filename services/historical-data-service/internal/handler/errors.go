package handler

import (
	"errors"
	"net/http"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/client"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"

	"github.com/gin-gonic/gin"
)

// statusForError maps service and engine errors to an HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSymbol),
		errors.Is(err, service.ErrTimeframeRequired),
		errors.Is(err, service.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSymbolNotFound):
		return http.StatusNotFound
	}

	var engineErr *client.EngineError
	if errors.As(err, &engineErr) {
		if engineErr.Retryable() {
			return http.StatusBadGateway
		}
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// currentUserID returns the authenticated user, 0 when the route is public
func currentUserID(c *gin.Context) int {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}
