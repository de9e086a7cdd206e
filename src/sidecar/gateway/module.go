// Package gateway provides the outbound dependencies of the sidecar.
package gateway

import (
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/langserver"
	"go.uber.org/fx"
)

// Module provides all gateways.
var Module = fx.Options(
	fx.Provide(editor.New),
	fx.Provide(langserver.New),
)
