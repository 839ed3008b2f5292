package main

import (
	"github.com/smallbiznis/rentledger/internal/app"
	"github.com/smallbiznis/rentledger/internal/migration"
	"github.com/smallbiznis/rentledger/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		app.Core,
		migration.Module,
		server.Module,
	).Run()
}
