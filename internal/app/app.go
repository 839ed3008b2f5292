package app

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/internal/audit"
	"github.com/smallbiznis/rentledger/internal/clock"
	"github.com/smallbiznis/rentledger/internal/config"
	"github.com/smallbiznis/rentledger/internal/invoice"
	"github.com/smallbiznis/rentledger/internal/invoicesettings"
	"github.com/smallbiznis/rentledger/internal/observability"
	"github.com/smallbiznis/rentledger/internal/providers"
	"github.com/smallbiznis/rentledger/internal/ratelimit"
	"github.com/smallbiznis/rentledger/internal/recipient"
	"github.com/smallbiznis/rentledger/internal/tenant"
	"github.com/smallbiznis/rentledger/pkg/db"
	"github.com/smallbiznis/rentledger/pkg/redisclient"
	"go.uber.org/fx"
)

// Core wires the infrastructure and ledger services shared by every binary.
var Core = fx.Options(
	// Core Infrastructure
	config.Module,
	observability.Module,
	fx.Provide(RegisterSnowflake),
	db.Module,
	redisclient.Module,
	clock.Module,
	ratelimit.Module,

	// Functional Domains
	audit.Module,
	providers.Module,
	tenant.Module,
	invoicesettings.Module,
	recipient.Module,
	invoice.Module,
)

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
