package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Observe starts a server span per request, counts requests on the global
// meter, and writes one access log line per request.
func Observe(log *zap.Logger) gin.HandlerFunc {
	tracer := otel.Tracer("workforce-console/http")
	meter := otel.Meter("workforce-console/http")
	requests, _ := meter.Int64Counter("http.server.requests")

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
		span.End()

		if requests != nil {
			requests.Add(ctx, 1, metric.WithAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			))
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("ip", c.ClientIP()),
		)
	}
}
