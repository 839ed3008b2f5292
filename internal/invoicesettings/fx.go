package invoicesettings

import (
	"github.com/smallbiznis/rentledger/internal/invoicesettings/repository"
	"github.com/smallbiznis/rentledger/internal/invoicesettings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoicesettings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
