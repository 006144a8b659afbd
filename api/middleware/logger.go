package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/car-analytics/internal/logger"
)

const sourceKey = "data_source"

// SetSource records which dataset source answered the request, so the
// access log can tell live responses from snapshot ones.
func SetSource(c *gin.Context, source string) {
	c.Set(sourceKey, source)
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"status":     status,
			"method":     c.Request.Method,
			"path":       path,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		}

		if query != "" {
			fields["query"] = query
		}
		if traceID := GetTraceID(c); traceID != "" {
			fields["trace_id"] = traceID
		}
		if source, ok := c.Get(sourceKey); ok {
			fields["source"] = source
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)

		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		default:
			entry.Info("request completed")
		}
	}
}
