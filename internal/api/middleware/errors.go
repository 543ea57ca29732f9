package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

// RespondError aborts the request and writes err as the JSON error body
func RespondError(c *gin.Context, err *utils.AppError) {
	if err.Err != nil {
		utils.LogError(c.Request.Context(), "Request failed", err.Err, utils.Fields{
			"code":   err.Code,
			"status": err.StatusCode,
		})
	}

	c.AbortWithStatusJSON(err.StatusCode, models.ErrorResponse{
		Error:     err.Message,
		Code:      string(err.Code),
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
