package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/metrics"
)

// Metrics records request counts and latency labelled by route template, so that
// /products/1 and /products/2 share a series.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method

		metrics.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
