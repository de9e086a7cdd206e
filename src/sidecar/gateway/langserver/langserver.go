// Package langserver sends outbound requests and notifications to the
// language server process launched for a session.
package langserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/errors"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

const _errSendToServer = "sending to language server: %w"

// Gateway is used to send outbound requests and notifications to the language
// server associated with the session in the context.
type Gateway interface {
	// RegisterServer associates a launched language server connection with a session.
	RegisterServer(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterServer removes the language server connection for a session.
	DeregisterServer(ctx context.Context, id uuid.UUID) error
	// ServerRegistered reports whether a language server is registered for the session.
	ServerRegistered(ctx context.Context) bool

	// Lifecycle methods from the protocol.Server interface.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) error
	Shutdown(ctx context.Context) error
	Exit(ctx context.Context) error

	// Document synchronization.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error

	// Workspace.
	DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error
	DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error)

	// Code intelligence.
	Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error)
	Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error)
	Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error)
	References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error)
	DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error)
}

type gateway struct {
	servers   map[uuid.UUID]protocol.Server
	serversMu sync.Mutex
	logger    *zap.Logger
}

// New returns a Gateway for sending traffic to launched language servers.
func New(logger *zap.Logger) Gateway {
	return &gateway{
		servers: make(map[uuid.UUID]protocol.Server),
		logger:  logger,
	}
}

func (g *gateway) RegisterServer(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	g.servers[id] = protocol.ServerDispatcher(*conn, g.logger)
	return nil
}

func (g *gateway) DeregisterServer(ctx context.Context, id uuid.UUID) error {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	delete(g.servers, id)
	return nil
}

func (g *gateway) ServerRegistered(ctx context.Context) bool {
	_, err := g.getServer(ctx)
	return err == nil
}

func (g *gateway) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.Initialize(ctx, params)
}

func (g *gateway) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Initialized(ctx, params)
}

func (g *gateway) Shutdown(ctx context.Context) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Shutdown(ctx)
}

func (g *gateway) Exit(ctx context.Context) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.Exit(ctx)
}

func (g *gateway) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidOpen(ctx, params)
}

func (g *gateway) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidChange(ctx, params)
}

func (g *gateway) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidClose(ctx, params)
}

func (g *gateway) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidSave(ctx, params)
}

func (g *gateway) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidChangeConfiguration(ctx, params)
}

func (g *gateway) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s, err := g.getServer(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToServer, err)
	}
	return s.DidChangeWatchedFiles(ctx, params)
}

func (g *gateway) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.ExecuteCommand(ctx, params)
}

func (g *gateway) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.Hover(ctx, params)
}

func (g *gateway) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.Completion(ctx, params)
}

func (g *gateway) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.Definition(ctx, params)
}

func (g *gateway) References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.References(ctx, params)
}

func (g *gateway) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	s, err := g.getServer(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToServer, err)
	}
	return s.DocumentSymbol(ctx, params)
}

func (g *gateway) getServer(ctx context.Context) (protocol.Server, error) {
	g.serversMu.Lock()
	defer g.serversMu.Unlock()

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}

	server, ok := g.servers[id]
	if !ok {
		return nil, &errors.ServerUnavailableError{UUID: id}
	}
	return server, nil
}
