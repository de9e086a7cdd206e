package sidecar

import (
	"context"
	"fmt"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/debuginfo"
	"go.lsp.dev/protocol"
)

// DidChangeConfiguration forwards updated settings to the language server verbatim.
func (c *controller) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	if !c.serverGateway.ServerRegistered(ctx) {
		return nil
	}
	return c.serverGateway.DidChangeConfiguration(ctx, params)
}

// DidChangeWatchedFiles forwards editor-reported file events to the language server.
func (c *controller) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	if !c.serverGateway.ServerRegistered(ctx) {
		return nil
	}
	return c.serverGateway.DidChangeWatchedFiles(ctx, params)
}

// ExecuteCommand dispatches commands owned by the sidecar and forwards the
// rest to the language server.
func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	if params == nil {
		return nil, fmt.Errorf("executeCommand called without params")
	}

	switch params.Command {
	case debuginfo.CommandCopyDebugInfo:
		return c.debugInfo.CopyDebugInfo(ctx)
	default:
		if !c.serverGateway.ServerRegistered(ctx) {
			return nil, fmt.Errorf("no language server available for command %q", params.Command)
		}
		return c.serverGateway.ExecuteCommand(ctx, params)
	}
}
