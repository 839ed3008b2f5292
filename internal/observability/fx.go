package observability

import (
	"github.com/smallbiznis/rentledger/internal/observability/logger"
	"github.com/smallbiznis/rentledger/internal/observability/metrics"
	"github.com/smallbiznis/rentledger/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config {
			return logger.Config{
				ServiceName:         cfg.ServiceName,
				Environment:         cfg.Environment,
				Version:             cfg.Version,
				Level:               cfg.Logging.Level,
				Format:              cfg.Logging.Format,
				IncludeCaller:       true,
				IncludeStackOnError: cfg.Debug(),
				RedactKeys:          logger.DefaultRedactKeys,
			}
		},
		logger.New,
		func(cfg Config) tracing.Config {
			return tracing.Config{
				Enabled:          cfg.Otel.Enabled,
				ServiceName:      cfg.ServiceName,
				ServiceVersion:   cfg.Version,
				Environment:      cfg.Environment,
				ExporterEndpoint: cfg.Otel.Endpoint,
				ExporterProtocol: cfg.Otel.Protocol,
				SamplingRatio:    cfg.Otel.SamplingRatio,
			}
		},
		tracing.NewProvider,
		func(cfg Config) metrics.Config {
			return metrics.Config{
				Enabled:          cfg.Otel.Enabled,
				ExporterEndpoint: cfg.Otel.Endpoint,
				ExporterProtocol: cfg.Otel.Protocol,
				ServiceName:      cfg.ServiceName,
				Environment:      cfg.Environment,
			}
		},
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.SchedulerWithConfig,
	),
	// Force the tracer provider so the global propagator is installed even
	// when no component asks for it.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
