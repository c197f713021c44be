package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type httpMetrics struct {
	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics() (*httpMetrics, error) {
	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{requestDuration: requestDuration, activeRequests: activeRequests}, nil
}

// Middleware returns the otelgin tracing handler followed by a handler that
// echoes the trace ID in X-Trace-ID and records request metrics.
func Middleware(serviceName string) []gin.HandlerFunc {
	metrics, err := newHTTPMetrics()
	if err != nil {
		otel.Handle(err)
	}

	record := func(c *gin.Context) {
		start := time.Now()
		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if metrics != nil {
			metrics.activeRequests.Add(c.Request.Context(), 1, metric.WithAttributes(method, route))
			defer metrics.activeRequests.Add(c.Request.Context(), -1, metric.WithAttributes(method, route))
		}

		if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
			c.Header("X-Trace-ID", sc.TraceID().String())
		}

		c.Next()

		if metrics != nil {
			metrics.requestDuration.Record(c.Request.Context(), time.Since(start).Seconds(),
				metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status())))
		}
	}

	return []gin.HandlerFunc{otelgin.Middleware(serviceName), record}
}
