package handlers

import (
	"net/http"

	apperrors "chatbot/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithError logs the technical error and returns a user-friendly message
func respondWithError(c *gin.Context, technicalError error, logger *zap.Logger, fields ...zap.Field) {
	statusCode, userMessage := classify(technicalError)

	// Client mistakes are expected traffic; only log server-side failures as errors
	if logger != nil {
		fields = append(fields, zap.Error(technicalError), zap.Int("status", statusCode))
		if statusCode >= http.StatusInternalServerError {
			logger.Error("Request failed", fields...)
		} else {
			logger.Info("Request rejected", fields...)
		}
	}

	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError returns a client error (no logging needed for validation errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// classify maps the error taxonomy onto HTTP status codes.
func classify(err error) (int, string) {
	switch {
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest, err.Error()
	case apperrors.IsNoDataAvailable(err):
		return http.StatusNotFound, "no answers available yet"
	case apperrors.IsConflict(err):
		return http.StatusConflict, "the question was changed concurrently, please retry"
	case apperrors.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable, "answer store unavailable"
	case apperrors.IsServiceUnavailable(err):
		return http.StatusServiceUnavailable, "message delivery unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
