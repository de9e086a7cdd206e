// Package sidecar implements the lsp-sidecar business logic: each editor
// connection gets a probe of the local runtime, a launched language-server
// process, and bidirectional relay between the two.
package sidecar

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/conflicts"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/debuginfo"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/probe"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/langserver"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/launcher"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/watcher"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/repository/session"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// Error templates
	_errSessionFromContext = "getting session from context: %w"

	// Configuration keys
	_idleTimeoutMinutesKey = "idleTimeoutMinutes"
	_settingsSectionKey    = "settingsSection"
	_documentPatternsKey   = "documents.patterns"
)

// Controller orchestrates the business logic for each request.
type Controller interface {
	// LSP Methods defined per protocol.
	Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error)
	Initialized(ctx context.Context, params *protocol.InitializedParams) (err error)
	Shutdown(ctx context.Context) (err error)
	Exit(ctx context.Context) error

	// Document related methods.
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error
	DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error

	// Codeintel related methods.
	Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error)
	Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error)
	GotoDefinition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error)
	References(ctx context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error)
	DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error)

	// Workspace related methods.
	DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) error
	DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error
	ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error)

	// Custom methods for use within this service.
	RequestFullShutdown(ctx context.Context) error
	InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	EndSession(ctx context.Context, uuid uuid.UUID) error
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Lifecycle     fx.Lifecycle
	Shutdowner    fx.Shutdowner
	Sessions      session.Repository
	EditorGateway editor.Gateway
	ServerGateway langserver.Gateway
	Launcher      launcher.Launcher
	Watcher       watcher.Watcher
	Logger        *zap.SugaredLogger
	Config        config.Provider

	Probe     probe.Controller
	Conflicts conflicts.Controller
	DebugInfo debuginfo.Controller
}

type controller struct {
	sessions           session.Repository
	shutdowner         fx.Shutdowner
	fullShutdown       bool
	idleTimer          *time.Timer
	idleTimerMu        sync.Mutex
	idleTimeoutMinutes time.Duration
	settingsSection    string
	documentPatterns   []string
	logger             *zap.SugaredLogger
	editorGateway      editor.Gateway
	serverGateway      langserver.Gateway
	launcher           launcher.Launcher
	watcher            watcher.Watcher

	probe     probe.Controller
	conflicts conflicts.Controller
	debugInfo debuginfo.Controller
}

// New constructs a new top-level controller for the service.
func New(p Params) (Controller, error) {
	ctx := context.Background()

	var timeoutMinutesRaw int64
	if err := p.Config.Get(_idleTimeoutMinutesKey).Populate(&timeoutMinutesRaw); err != nil || timeoutMinutesRaw == 0 {
		return nil, fmt.Errorf("unable to get idle timeout from config: %w", err)
	}

	var settingsSection string
	if err := p.Config.Get(_settingsSectionKey).Populate(&settingsSection); err != nil {
		return nil, fmt.Errorf("unable to get settings section from config: %w", err)
	}

	var documentPatterns []string
	if err := p.Config.Get(_documentPatternsKey).Populate(&documentPatterns); err != nil {
		return nil, fmt.Errorf("unable to get document patterns from config: %w", err)
	}

	c := &controller{
		sessions:      p.Sessions,
		shutdowner:    p.Shutdowner,
		logger:        p.Logger,
		editorGateway: p.EditorGateway,
		serverGateway: p.ServerGateway,
		launcher:      p.Launcher,
		watcher:       p.Watcher,

		probe:     p.Probe,
		conflicts: p.Conflicts,
		debugInfo: p.DebugInfo,

		idleTimeoutMinutes: time.Duration(timeoutMinutesRaw) * time.Minute,
		settingsSection:    settingsSection,
		documentPatterns:   documentPatterns,
	}
	c.refreshIdleTimer(ctx)

	p.Lifecycle.Append(fx.Hook{
		OnStop: c.endAllSessions,
	})

	return c, nil
}

// endAllSessions tears down every session still registered when the daemon
// stops, so launched language-server processes get their shutdown and grace
// period rather than dying on pipe EOF.
func (c *controller) endAllSessions(ctx context.Context) error {
	sessions, err := c.sessions.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions during shutdown: %w", err)
	}

	var errs error
	for _, s := range sessions {
		errs = multierr.Append(errs, c.EndSession(ctx, s.UUID))
	}
	return errs
}

// RequestFullShutdown will set the controller to treat subsequent Shutdown and Exit requests as requests to exit the entire process.
func (c *controller) RequestFullShutdown(ctx context.Context) error {
	c.fullShutdown = true

	return nil
}

// InitSession creates a new empty session and returns its UUID.
func (c *controller) InitSession(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	defer c.refreshIdleTimer(ctx)

	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}

	session := mapper.UUIDToSession(id, conn)
	if err := c.editorGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}

	if err := c.sessions.Set(ctx, session); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// EndSession includes any cleanup at the end of the session, during or after the last JSON-RPC request.
func (c *controller) EndSession(ctx context.Context, uuid uuid.UUID) error {
	defer c.refreshIdleTimer(ctx)

	s, err := c.sessions.Get(ctx, uuid)
	if err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	c.releaseSessionResources(ctx, s)

	if err := c.serverGateway.DeregisterServer(ctx, uuid); err != nil {
		c.logger.Error(err)
	}
	if err := c.editorGateway.DeregisterClient(ctx, uuid); err != nil {
		c.logger.Error(err)
	}

	return c.sessions.Delete(ctx, uuid)
}

// refreshIdleTimer ensures that the service shuts down after a defined inactivity period with no connections.
func (c *controller) refreshIdleTimer(ctx context.Context) error {
	c.idleTimerMu.Lock()
	defer c.idleTimerMu.Unlock()

	// First call initializes new timer and leaves it running prior to first connection.
	if c.idleTimer == nil {
		c.idleTimer = time.NewTimer(c.idleTimeoutMinutes)
		go func() {
			<-c.idleTimer.C
			c.logger.Info("Shutdown signal received.")
			if err := c.shutdowner.Shutdown(); err != nil {
				os.Exit(1)
			}
		}()
		return nil
	}

	// Subsequent calls stop the timer and reset it only if no connections are active.
	currentSessions, err := c.sessions.SessionCount(ctx)
	if err != nil {
		return fmt.Errorf("error resetting timeout: %w", err)
	}

	c.idleTimer.Stop()
	if currentSessions == 0 {
		c.idleTimer.Reset(c.idleTimeoutMinutes)
	}
	return nil
}
