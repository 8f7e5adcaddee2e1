package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-sweeper/internal/api/shared/errors"
	"github.com/feral-file/ff-token-sweeper/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, errors.NewValidationError(details))
}

// respondError maps an executor error onto its status and body. Server-side
// failures are logged with the original error.
func respondError(c *gin.Context, err error, fields ...zap.Field) {
	apiErr := errors.FromError(err)
	status := apiErr.StatusCode()

	if status >= http.StatusInternalServerError {
		logger.ErrorCtx(c.Request.Context(), err, fields...)
	} else {
		logger.DebugCtx(c.Request.Context(), "Request failed", append(fields, zap.Error(err))...)
	}

	c.JSON(status, apiErr)
}
