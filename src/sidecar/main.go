package main

import (
	"github.com/uberzzr/lsp-sidecar/src/sidecar/app"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"go.uber.org/fx"
)

// Overridden at build time via -ldflags "-X main._version=...".
var _version = "0.0.0-dev"

func opts() fx.Option {
	return fx.Options(
		app.Module,
		fx.Supply(entity.SidecarVersion(_version)),
	)
}

func main() {
	fx.New(opts()).Run()
}
