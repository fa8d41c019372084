package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Render outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// InvoiceMetrics records invoice lifecycle and document rendering metrics.
// A nil *InvoiceMetrics is valid and records nothing.
type InvoiceMetrics struct {
	invoicesCreated   *Counter
	statusChanges     *Counter
	documentsRendered *Counter
	renderDuration    *Histogram
	renderPages       *Histogram
}

// NewInvoiceMetrics creates the invoicing instruments on meter.
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	invoicesCreated, err := NewCounter(meter, "invoice_created_total", "Total number of invoices created", "{invoice}")
	if err != nil {
		return nil, err
	}
	statusChanges, err := NewCounter(meter, "invoice_status_changes_total", "Total number of invoice status changes", "{change}")
	if err != nil {
		return nil, err
	}
	documentsRendered, err := NewCounter(meter, "invoice_documents_rendered_total", "Total number of rendered invoice documents", "{document}")
	if err != nil {
		return nil, err
	}
	renderDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_document_render_duration_seconds",
		Description: "Time spent laying out and rendering an invoice document",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	renderPages, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_document_pages",
		Description: "Page count of rendered invoice documents",
		Unit:        "{page}",
		Boundaries:  []float64{1, 2, 3, 5, 10, 20},
	})
	if err != nil {
		return nil, err
	}

	return &InvoiceMetrics{
		invoicesCreated:   invoicesCreated,
		statusChanges:     statusChanges,
		documentsRendered: documentsRendered,
		renderDuration:    renderDuration,
		renderPages:       renderPages,
	}, nil
}

// RecordInvoiceCreated counts a new invoice.
func (m *InvoiceMetrics) RecordInvoiceCreated(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc(ctx, AttrCurrency.String(currency))
}

// RecordStatusChange counts a status transition.
func (m *InvoiceMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrStatus.String(to))
}

// RecordRender records one document rendering attempt. pages is ignored on failure.
func (m *InvoiceMetrics) RecordRender(ctx context.Context, backend string, templateID int, d time.Duration, pages int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	attrs := []attribute.KeyValue{
		AttrBackend.String(backend),
		AttrTemplateID.String(strconv.Itoa(templateID)),
	}
	m.documentsRendered.Inc(ctx, append(attrs, AttrOutcome.String(outcome))...)
	m.renderDuration.RecordDuration(ctx, d, append(attrs, AttrOutcome.String(outcome))...)
	if err == nil {
		m.renderPages.Record(ctx, float64(pages), attrs...)
	}
}
