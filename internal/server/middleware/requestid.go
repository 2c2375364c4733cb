package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds caller supplied IDs before they reach logs and the upstream
const maxRequestIDLen = 128

// RequestID reuses the caller's X-Request-Id or generates one, stores it under
// key in the gin context and echoes it on the response.
func RequestID(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(key, rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Next()
	}
}
