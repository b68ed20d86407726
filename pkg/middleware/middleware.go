// Package middleware provides shared gin middleware for the HTTP edge.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lexmigra/caseops/pkg/logger"
)

// RequestIDHeader carries the request ID back to the caller; incoming values
// are honored so upstream proxies can correlate.
const RequestIDHeader = "X-Request-ID"

// RequestLogging assigns each request an ID and logs method, path, status and
// latency on completion.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}
