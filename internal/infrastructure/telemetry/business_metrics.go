package telemetry

import (
	"context"
	"fmt"

	"github.com/atelier/backend/internal/domain/integration"
	"github.com/atelier/backend/internal/domain/sales"
	"github.com/atelier/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts sales and sync activity. It subscribes to the
// domain event bus for the sales side; sync runs and sweeps are reported
// directly by their callers.
type BusinessMetrics struct {
	quotesCreated   metric.Int64Counter
	quoteStatus     metric.Int64Counter
	invoicesCreated metric.Int64Counter
	invoicesPaid    metric.Int64Counter
	overdueSwept    metric.Int64Counter
	syncRuns        metric.Int64Counter
	syncFailedItems metric.Int64Counter
	syncDuration    metric.Float64Histogram
}

// NewBusinessMetrics registers the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		bm  BusinessMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&bm.quotesCreated, "atelier.quotes.created", "Quotes created"},
		{&bm.quoteStatus, "atelier.quotes.status_changed", "Quote status transitions"},
		{&bm.invoicesCreated, "atelier.invoices.created", "Invoices created, standalone or promoted"},
		{&bm.invoicesPaid, "atelier.invoices.paid", "Invoices marked paid"},
		{&bm.overdueSwept, "atelier.invoices.overdue_swept", "Invoices moved to overdue by the sweep"},
		{&bm.syncRuns, "atelier.sync.runs", "Catalog sync runs"},
		{&bm.syncFailedItems, "atelier.sync.failed_items", "Items rejected during catalog sync"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	bm.syncDuration, err = meter.Float64Histogram("atelier.sync.duration",
		metric.WithDescription("Catalog sync run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram atelier.sync.duration: %w", err)
	}
	return &bm, nil
}

// EventTypes implements shared.EventHandler
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		sales.EventTypeQuoteCreated,
		sales.EventTypeQuoteStatusChanged,
		sales.EventTypeInvoiceCreated,
		sales.EventTypeInvoicePromoted,
		sales.EventTypeInvoiceStatusChanged,
	}
}

// Handle implements shared.EventHandler
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *sales.QuoteCreatedEvent:
		bm.quotesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(e.Status))))
	case *sales.QuoteStatusChangedEvent:
		bm.quoteStatus.Add(ctx, 1, metric.WithAttributes(
			attribute.String("from", string(e.From)),
			attribute.String("to", string(e.To)),
		))
	case *sales.InvoiceCreatedEvent:
		bm.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", "standalone")))
	case *sales.InvoicePromotedEvent:
		bm.invoicesCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("origin", "quote")))
	case *sales.InvoiceStatusChangedEvent:
		if e.To == sales.InvoiceStatusPaid {
			bm.invoicesPaid.Add(ctx, 1, metric.WithAttributes(attribute.String("from", string(e.From))))
		}
	}
	return nil
}

// RecordOverdueSwept counts invoices marked overdue by one sweep
func (bm *BusinessMetrics) RecordOverdueSwept(ctx context.Context, n int) {
	if n > 0 {
		bm.overdueSwept.Add(ctx, int64(n))
	}
}

// RecordSync records the outcome of a sync operation such as "catalog" or "products"
func (bm *BusinessMetrics) RecordSync(ctx context.Context, operation string, r *integration.SyncResult) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", string(r.Status)),
	)
	bm.syncRuns.Add(ctx, 1, attrs)
	if r.FailedCount > 0 {
		bm.syncFailedItems.Add(ctx, int64(r.FailedCount), metric.WithAttributes(attribute.String("operation", operation)))
	}
	if !r.SyncedAt.IsZero() {
		bm.syncDuration.Record(ctx, r.SyncedAt.Sub(r.StartedAt).Seconds(), attrs)
	}
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
