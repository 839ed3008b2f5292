package main

import (
	"github.com/smallbiznis/rentledger/internal/app"
	"github.com/smallbiznis/rentledger/internal/scheduler"
	"go.uber.org/fx"
)

func main() {
	// No server module, jobs only.
	fx.New(
		app.Core,
		scheduler.Module,
	).Run()
}
