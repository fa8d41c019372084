package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoiceflow/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// attrHTTPStatusClass groups status codes so dashboards can alert on 5xx
const attrHTTPStatusClass = attribute.Key("http.status_class")

// responseSizeBuckets reach into the megabytes for PDF downloads
var responseSizeBuckets = []float64{100, 1e3, 1e4, 5e4, 1e5, 5e5, 1e6, 5e6}

// HTTPMetricsConfig configures HTTPMetrics
type HTTPMetricsConfig struct {
	MeterProvider *telemetry.MeterProvider
	Enabled       bool
}

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	size     *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		errs [4]error
	)
	in.requests, errs[0] = telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	in.latency, errs[1] = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	in.size, errs[2] = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_response_size_bytes",
		Description: "HTTP response body size distribution in bytes",
		Unit:        "By",
		Boundaries:  responseSizeBuckets,
	})
	in.inFlight, errs[3] = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics counts requests and records latency, response size and
// in-flight requests per route pattern. It is a no-op when metrics are off.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	if !cfg.Enabled || !cfg.MeterProvider.IsEnabled() {
		return passThrough
	}
	return HTTPMetricsWithMeter(cfg.MeterProvider.Meter("http.server"), true)
}

// HTTPMetricsWithMeter is HTTPMetrics for a caller-provided meter
func HTTPMetricsWithMeter(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled || meter == nil {
		return passThrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}
	return in.middleware
}

func passThrough(c *gin.Context) {
	c.Next()
}

func (in *httpInstruments) middleware(c *gin.Context) {
	ctx := c.Request.Context()
	started := time.Now()
	in.inFlight.Add(ctx, 1)
	defer in.inFlight.Add(ctx, -1)

	c.Next()

	// the route pattern keeps invoice ids out of the label set
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	status := c.Writer.Status()
	attrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	in.requests.Inc(ctx, append(attrs,
		telemetry.AttrHTTPStatusCode.Int(status),
		attrHTTPStatusClass.String(HTTPMetricsStatusGroup(status)))...)
	in.latency.RecordDuration(ctx, time.Since(started), attrs...)
	if n := c.Writer.Size(); n > 0 {
		in.size.Record(ctx, float64(n), attrs...)
	}
}

// HTTPMetricsStatusGroup returns the status class: 2xx, 3xx, 4xx, 5xx or other
func HTTPMetricsStatusGroup(statusCode int) string {
	switch statusCode / 100 {
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	}
	return "other"
}
