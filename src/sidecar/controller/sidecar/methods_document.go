package sidecar

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"go.lsp.dev/protocol"
)

// Document synchronization notifications are forwarded to the language server
// verbatim. Without a running server they are dropped, the editor keeps its
// own copy of every document. Documents outside the configured patterns are
// not the server's concern and are dropped as well.

// DidOpen forwards a textDocument/didOpen notification to the language server.
func (c *controller) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	if !c.serverGateway.ServerRegistered(ctx) || !c.handlesDocument(params.TextDocument.URI) {
		return nil
	}
	return c.serverGateway.DidOpen(ctx, params)
}

// DidChange forwards a textDocument/didChange notification to the language server.
func (c *controller) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if !c.serverGateway.ServerRegistered(ctx) || !c.handlesDocument(params.TextDocument.URI) {
		return nil
	}
	return c.serverGateway.DidChange(ctx, params)
}

// DidClose forwards a textDocument/didClose notification to the language server.
func (c *controller) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	if !c.serverGateway.ServerRegistered(ctx) || !c.handlesDocument(params.TextDocument.URI) {
		return nil
	}
	return c.serverGateway.DidClose(ctx, params)
}

// DidSave forwards a textDocument/didSave notification to the language server.
func (c *controller) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if !c.serverGateway.ServerRegistered(ctx) || !c.handlesDocument(params.TextDocument.URI) {
		return nil
	}
	return c.serverGateway.DidSave(ctx, params)
}

// handlesDocument reports whether the document falls under the configured
// patterns. No configured patterns means every document is handled.
func (c *controller) handlesDocument(uri protocol.DocumentURI) bool {
	if len(c.documentPatterns) == 0 {
		return true
	}
	path := uri.Filename()
	for _, pattern := range c.documentPatterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
