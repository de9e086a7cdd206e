package app

import (
	"context"
	"time"

	tally "github.com/uber-go/tally/v4"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/handler"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/core"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/executor"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/fs"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/jsonrpcfx"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/launcher"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/serverinfofile"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/watcher"
	"go.uber.org/fx"
)

// Module defines the sidecar application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	serverinfofile.Module,
	launcher.Module,
	watcher.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "lsp-sidecar",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        "local",
			RuntimeEnvironment: "local",
		}
	}),
)
