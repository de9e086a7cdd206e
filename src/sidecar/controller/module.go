package controller

import (
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/conflicts"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/debuginfo"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/probe"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/sidecar"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(sidecar.New),
	fx.Provide(probe.New),
	fx.Provide(conflicts.New),
	fx.Provide(func(p debuginfo.Params) debuginfo.Controller { return debuginfo.New(p) }),
)
