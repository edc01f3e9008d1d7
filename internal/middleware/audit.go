package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/pkg/middleware/requestid"
)

// Audit records every admin action on the console, including refused ones, as a structured log entry.
// resourceParam names the route parameter that identifies the target record, if any.
func Audit(logger *zap.Logger, action, resourceParam string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("action", action),
			zap.Int("status", status),
			zap.Bool("succeeded", status < 400),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.String("request_id", requestid.Value(c)),
		}
		if resourceParam != "" {
			fields = append(fields, zap.String("resource_id", c.Param(resourceParam)))
		}
		logger.Info("console_audit", fields...)
	}
}
