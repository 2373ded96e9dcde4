package middleware

import (
	"strconv"
	"time"

	"discovery_admin/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 记录 HTTP 请求指标
func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// 使用路由模板而不是原始路径，避免指标基数爆炸
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		collector.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
