package api

import (
	"errors"
	"net/http"

	"expansion-monitor/internal/indicators"
	"expansion-monitor/internal/market"
	"expansion-monitor/internal/signals"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, signals.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, indicators.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends err with the status its kind maps to
func respondError(c *gin.Context, err error) {
	errorResponse(c, statusFor(err), err.Error())
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
