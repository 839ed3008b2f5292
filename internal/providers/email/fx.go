package email

import (
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

type Params struct {
	fx.In

	Cfg     config.Config
	Clock   clock.Clock
	Log     *zap.Logger
	Limiter ratelimit.Limiter `optional:"true"`
}

func NewFromConfig(p Params) Provider {
	return NewThrottled(newBaseProvider(p.Cfg, p.Clock, p.Log), p.Limiter)
}

func newBaseProvider(cfg config.Config, clk clock.Clock, log *zap.Logger) Provider {
	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		return NewSMTP(Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.SMTPFrom,
		})
	case config.EmailProviderNoop:
		return &NoOpProvider{}
	default:
		return NewSimulated(clk, cfg.Email.SimulatedDelay, log)
	}
}
