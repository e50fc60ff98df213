package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"heat-alert-service/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware propagates or assigns a request id.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		logger.WithRequest(requestID(c)).Infof("Request: %s %s, Status: %d, Latency: %v", method, path, status, latency)
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
