package middleware

import (
	"time"

	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request through the masked logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		utils.LogAPIRequest(
			c.Request.Method,
			c.Request.URL.Path,
			GetSessionID(c),
			c.Writer.Status(),
			time.Since(start).String(),
		)
	}
}
