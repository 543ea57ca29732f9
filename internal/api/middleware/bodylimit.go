package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/mediagrab/internal/utils"
)

// BodyLimitMiddleware caps request bodies at maxBytes. Requests that
// announce a larger Content-Length are rejected before the handler runs.
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			RespondError(c, utils.NewRequestTooLargeError())
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
