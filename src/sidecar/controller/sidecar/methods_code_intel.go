package sidecar

import (
	"context"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/errors"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/protocol"
)

// Code intelligence requests require a running language server. Unlike
// notifications these have a caller waiting for a response, so a missing
// server is an error rather than a silent drop.

// Hover forwards a textDocument/hover request to the language server.
func (c *controller) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	if err := c.requireServer(ctx); err != nil {
		return nil, err
	}
	return c.serverGateway.Hover(ctx, params)
}

// Completion forwards a textDocument/completion request to the language server.
func (c *controller) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	if err := c.requireServer(ctx); err != nil {
		return nil, err
	}
	return c.serverGateway.Completion(ctx, params)
}

// GotoDefinition forwards a textDocument/definition request to the language server.
func (c *controller) GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	if err := c.requireServer(ctx); err != nil {
		return nil, err
	}
	return c.serverGateway.Definition(ctx, params)
}

// References forwards a textDocument/references request to the language server.
func (c *controller) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	if err := c.requireServer(ctx); err != nil {
		return nil, err
	}
	return c.serverGateway.References(ctx, params)
}

// DocumentSymbol forwards a textDocument/documentSymbol request to the language server.
func (c *controller) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	if err := c.requireServer(ctx); err != nil {
		return nil, err
	}
	return c.serverGateway.DocumentSymbol(ctx, params)
}

func (c *controller) requireServer(ctx context.Context) error {
	if c.serverGateway.ServerRegistered(ctx) {
		return nil
	}
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return &errors.NoSessionFoundError{}
	}
	return &errors.ServerUnavailableError{UUID: id}
}
