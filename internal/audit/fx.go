package audit

import (
	"github.com/smallbiznis/rentledger/internal/audit/repository"
	"github.com/smallbiznis/rentledger/internal/audit/service"
	"go.uber.org/fx"
)

// Module provides the audit trail recorder. The invoice service takes it as
// an optional dependency, so leaving this module out disables auditing.
var Module = fx.Module("audit",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
