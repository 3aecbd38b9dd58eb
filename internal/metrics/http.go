package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// HTTPMetricsMiddleware records <namespace>_http_requests_total and
// <namespace>_http_request_duration_seconds labelled by method, route template
// and status code. Requests to the paths in skip are not recorded.
// If the instruments cannot be created the middleware only calls the next handler.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string, skip ...string) gin.HandlerFunc {
	requests, err := newTimedCounter(meterProvider.Meter(namespace),
		namespace+"_http_requests_total",
		namespace+"_http_request_duration_seconds",
		"{request}", "HTTP requests")
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		requests.record(c.Request.Context(), time.Since(start),
			attribute.String("method", c.Request.Method),
			attribute.String("path", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
	}
}

// routeLabel keeps the label set bounded: the route template, never the raw path.
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}
