package observability

import (
	"testing"

	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment: "development",
		AppVersion:  "1.2.3",
		Telemetry:   config.TelemetryConfig{LogLevel: "info"},
	})

	assert.Equal(t, "rentledger", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "grpc", cfg.Otel.Protocol)
	assert.False(t, cfg.Otel.Enabled)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigProductionEnablesOtel(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: "ledger-api", Environment: "production"})

	assert.Equal(t, "ledger-api", cfg.ServiceName)
	assert.True(t, cfg.Otel.Enabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigExplicitOtelSwitchWins(t *testing.T) {
	disabled := false
	cfg := LoadConfig(config.Config{
		Environment: "production",
		Telemetry:   config.TelemetryConfig{OtelEnabled: &disabled, LogLevel: "DEBUG"},
	})

	assert.False(t, cfg.Otel.Enabled)
	assert.True(t, cfg.Debug())
}
