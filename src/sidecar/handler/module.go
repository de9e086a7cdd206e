package handler

import (
	controller "github.com/uberzzr/lsp-sidecar/src/sidecar/controller"
	sidecarctrl "github.com/uberzzr/lsp-sidecar/src/sidecar/controller/sidecar"
	handler "github.com/uberzzr/lsp-sidecar/src/sidecar/handler/sidecar"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/repository/session"
	"go.uber.org/fx"
)

// Module provides the sidecar server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(session.New),
	fx.Provide(handler.New),
	fx.Invoke(func(m handler.Handler) {}),
	fx.Invoke(func(m sidecarctrl.Controller) {}),
)
