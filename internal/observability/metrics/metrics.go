package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes invoicing instruments.
type Metrics struct {
	invoicesGenerated  metric.Int64Counter
	invoiceTransitions metric.Int64Counter
	paymentsRecorded   metric.Int64Counter
	paymentAmount      metric.Float64Counter
	emailsSent         metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rentledger"
	}
	meter := provider.Meter(name)

	invoicesGenerated, err := meter.Int64Counter("rentledger_invoices_generated_total")
	if err != nil {
		return nil, err
	}
	invoiceTransitions, err := meter.Int64Counter("rentledger_invoice_transitions_total")
	if err != nil {
		return nil, err
	}
	paymentsRecorded, err := meter.Int64Counter("rentledger_payments_recorded_total")
	if err != nil {
		return nil, err
	}
	paymentAmount, err := meter.Float64Counter("rentledger_payment_amount_total")
	if err != nil {
		return nil, err
	}
	emailsSent, err := meter.Int64Counter("rentledger_emails_sent_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoicesGenerated:  invoicesGenerated,
		invoiceTransitions: invoiceTransitions,
		paymentsRecorded:   paymentsRecorded,
		paymentAmount:      paymentAmount,
		emailsSent:         emailsSent,
	}, nil
}

// NewNoop returns instruments backed by the noop provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

// RecordInvoicesGenerated counts invoices created by one generation run.
func (m *Metrics) RecordInvoicesGenerated(ctx context.Context, source string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.invoicesGenerated.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

// RecordTransition counts an invoice status change.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	if m == nil || from == to {
		return
	}
	attrs := FilterAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	)
	m.invoiceTransitions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayment counts a recorded payment and its amount.
func (m *Metrics) RecordPayment(ctx context.Context, method string, amount float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(attribute.String("payment_method", strings.TrimSpace(method)))...)
	m.paymentsRecorded.Add(ctx, 1, attrs)
	if amount > 0 {
		m.paymentAmount.Add(ctx, amount, attrs)
	}
}

// RecordEmail counts an outbound email attempt by kind and outcome.
func (m *Metrics) RecordEmail(ctx context.Context, kind, provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := FilterAttributes(
		attribute.String("kind", kind),
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.emailsSent.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":         {},
	"route":          {},
	"method":         {},
	"status_code":    {},
	"source":         {},
	"from":           {},
	"to":             {},
	"payment_method": {},
	"kind":           {},
	"provider":       {},
	"outcome":        {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
