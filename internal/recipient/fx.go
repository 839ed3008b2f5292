package recipient

import (
	"github.com/smallbiznis/rentledger/internal/recipient/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recipient.service",
	fx.Provide(service.New),
)
