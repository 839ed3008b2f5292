package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("org_id", "123"),
		attribute.String("tenant_id", "456"),
		attribute.String("payment_method", "cash"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "org_id" || attrs[1].Key != "payment_method" {
		t.Fatalf("unexpected attributes retained: %v", attrs)
	}
}

func TestMetricsRecordToReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := New(Config{ServiceName: "test"}, provider)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordInvoicesGenerated(ctx, "schedule", 3)
	m.RecordTransition(ctx, "draft", "approved")
	m.RecordTransition(ctx, "sent", "sent")
	m.RecordPayment(ctx, "cash", 500)
	m.RecordEmail(ctx, "invoice", "simulated", errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	sums := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		if sum, ok := md.Data.(metricdata.Sum[int64]); ok {
			for _, dp := range sum.DataPoints {
				sums[md.Name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), sums["rentledger_invoices_generated_total"])
	assert.Equal(t, int64(1), sums["rentledger_invoice_transitions_total"])
	assert.Equal(t, int64(1), sums["rentledger_payments_recorded_total"])
	assert.Equal(t, int64(1), sums["rentledger_emails_sent_total"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPayment(context.Background(), "cash", 1)
		m.RecordTransition(context.Background(), "a", "b")
	})
}
