// Package middleware provides the gin middleware of the InvoiceFlow API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength caps request ids accepted from clients
const MaxRequestIDLength = 128

// TracingConfig configures TracingWithConfig
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider replaces the global provider when set
	TracerProvider trace.TracerProvider
}

// TracingWithConfig starts a server span per request through otelgin. Span
// names carry the route pattern, e.g. "GET /api/v1/invoices/:id".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// TracingAttributeInjector tags the request span with request_id and
// user_id. It must run after TracingWithConfig and after authentication.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if span := trace.SpanFromContext(c.Request.Context()); span.IsRecording() {
			var attrs []attribute.KeyValue
			if id := getRequestID(c); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if userID := GetJWTUserID(c); userID != "" {
				attrs = append(attrs, attribute.String("user_id", userID))
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

// SpanErrorMarker sets an error status on spans of 4xx responses.
// otelgin marks 5xx spans itself once the handler chain returns.
// It must run after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			return
		}
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		reason := http.StatusText(status)
		if reason == "" {
			reason = "HTTP " + HTTPMetricsStatusGroup(status)
		}
		span.SetStatus(codes.Error, reason)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}

// getRequestID prefers the id chosen by RequestID and falls back to a
// truncated header value
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDKey)
	if len(id) > MaxRequestIDLength {
		id = id[:MaxRequestIDLength]
	}
	return id
}
