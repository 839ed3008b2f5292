package observability

import (
	"strings"

	"github.com/smallbiznis/rentledger/internal/config"
)

const defaultServiceName = "rentledger"

// Config is the observability view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	Logging LoggingConfig
	Otel    OtelConfig
}

type LoggingConfig struct {
	Level  string
	Format string
}

type OtelConfig struct {
	Enabled       bool
	Endpoint      string
	Protocol      string
	SamplingRatio float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	telemetry := cfg.Telemetry
	// Exporters are opt-in outside production so local runs need no collector.
	enabled := cfg.IsProduction()
	if telemetry.OtelEnabled != nil {
		enabled = *telemetry.OtelEnabled
	}

	protocol := telemetry.OTLPProtocol
	if protocol == "" {
		protocol = "grpc"
	}

	return Config{
		ServiceName: serviceName,
		Environment: strings.TrimSpace(cfg.Environment),
		Version:     strings.TrimSpace(cfg.AppVersion),
		Logging: LoggingConfig{
			Level:  telemetry.LogLevel,
			Format: telemetry.LogFormat,
		},
		Otel: OtelConfig{
			Enabled:       enabled,
			Endpoint:      telemetry.OTLPEndpoint,
			Protocol:      protocol,
			SamplingRatio: telemetry.SamplingRatio,
		},
	}
}

// Debug reports whether verbose request and stack logging is on.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.Logging.Level), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
