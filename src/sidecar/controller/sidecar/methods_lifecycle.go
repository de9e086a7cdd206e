package sidecar

import (
	"context"
	"fmt"
	"time"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

const (
	_serverName = "Raku Language Server Sidecar"

	_msgServerReady    = "Connection to the language server is now initialized."
	_msgServerLaunch   = "The language server could not be started: %v"
	_stopServerTimeout = 10 * time.Second
)

// Initialize stores information about a new connection, probes the local
// runtime, launches the language-server process and forwards the initialize
// request to it. Probe and conflict findings are warnings only and never
// block the launch.
func (c *controller) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	result := &protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{
			Name: _serverName,
		},
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSessionFromContext, err)
	}

	s.InitializeParams = params
	s.WorkspaceRoot = mapper.InitializeParamsToWorkspaceRoot(params)

	c.probe.CheckRuntime(ctx)
	c.conflicts.CheckInstalled(ctx, mapper.InitializeParamsToInstalledExtensions(params))

	if err := c.launchServer(ctx, s); err != nil {
		c.logger.Errorf("launching language server: %v", err)
		c.warn(ctx, fmt.Sprintf(_msgServerLaunch, err))
	}

	if err := c.sessions.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("setting updated session state: %w", err)
	}

	if !s.ServerRunning {
		return result, nil
	}

	forwarded := *params
	if settings := mapper.InitializeParamsToSettingsSection(params, c.settingsSection); settings != nil {
		forwarded.InitializationOptions = settings
	}

	serverResult, err := c.serverGateway.Initialize(ctx, &forwarded)
	if err != nil {
		c.logger.Errorf("forwarding initialize to language server: %v", err)
		return result, nil
	}
	serverResult.ServerInfo = result.ServerInfo
	return serverResult, nil
}

// Initialized forwards the notification to the language server and starts
// watching the workspace for file changes.
func (c *controller) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf(_errSessionFromContext, err)
	}

	if !s.ServerRunning {
		return nil
	}

	if err := c.serverGateway.Initialized(ctx, params); err != nil {
		c.logger.Errorf("forwarding initialized to language server: %v", err)
	}

	if s.WorkspaceRoot != "" {
		relayCtx := mapper.ContextWithSessionUUID(context.Background(), s.UUID)
		stop, err := c.watcher.Watch(s.WorkspaceRoot, func(changes []*protocol.FileEvent) {
			notifyErr := c.serverGateway.DidChangeWatchedFiles(relayCtx, &protocol.DidChangeWatchedFilesParams{Changes: changes})
			if notifyErr != nil {
				c.logger.Warnf("forwarding watched file changes: %v", notifyErr)
			}
		})
		if err != nil {
			c.logger.Warnf("watching workspace %q: %v", s.WorkspaceRoot, err)
		} else {
			s.StopWatcher = stop
			if err := c.sessions.Set(ctx, s); err != nil {
				return fmt.Errorf("setting updated session state: %w", err)
			}
		}
	}

	c.editorGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Message: _msgServerReady,
		Type:    protocol.MessageTypeInfo,
	})
	return nil
}

// Shutdown is sent just before Exit to indicate that the session will exit.
func (c *controller) Shutdown(ctx context.Context) error {
	if c.serverGateway.ServerRegistered(ctx) {
		if err := c.serverGateway.Shutdown(ctx); err != nil {
			c.logger.Warnf("forwarding shutdown to language server: %v", err)
		}
	}
	return nil
}

// Exit will be used to either clean up from an individual connection, or shutdown the whole server.
func (c *controller) Exit(ctx context.Context) error {
	if c.serverGateway.ServerRegistered(ctx) {
		if err := c.serverGateway.Exit(ctx); err != nil {
			c.logger.Warnf("forwarding exit to language server: %v", err)
		}
	}

	if c.fullShutdown {
		// Zero out the timer to trigger immediate shutdown.
		c.idleTimerMu.Lock()
		c.idleTimer.Reset(0)
		c.idleTimerMu.Unlock()
		return nil
	}

	s, err := c.sessions.GetFromContext(ctx)
	if err != nil {
		return fmt.Errorf("error during session exit: %w", err)
	}

	return c.EndSession(ctx, s.UUID)
}

// launchServer starts the language-server process for a session and wires its
// connection into the server gateway.
func (c *controller) launchServer(ctx context.Context, s *entity.Session) error {
	// The relay context outlives the initialize request.
	relayCtx := mapper.ContextWithSessionUUID(context.Background(), s.UUID)

	// Surface the server's stderr in the editor's log output.
	logOut, err := c.editorGateway.GetLogMessageWriter(relayCtx, "language-server")
	if err != nil {
		c.logger.Warnf("getting editor log writer: %v", err)
		logOut = nil
	}

	server, err := c.launcher.Launch(ctx, logOut)
	if err != nil {
		return err
	}
	server.Conn.Go(relayCtx, c.serverTrafficHandler(relayCtx))

	if err := c.serverGateway.RegisterServer(ctx, s.UUID, &server.Conn); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), _stopServerTimeout)
		defer cancel()
		server.Stop(stopCtx)
		return fmt.Errorf("registering language server connection: %w", err)
	}

	s.ServerRunning = true
	s.StopServer = func() error {
		stopCtx, cancel := context.WithTimeout(context.Background(), _stopServerTimeout)
		defer cancel()
		return server.Stop(stopCtx)
	}
	return nil
}

// serverTrafficHandler relays server-originated requests back to the editor
// that owns the session.
func (c *controller) serverTrafficHandler(relayCtx context.Context) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case protocol.MethodTextDocumentPublishDiagnostics:
			params, err := mapper.RequestToPublishDiagnosticsParams(req)
			if err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, c.editorGateway.PublishDiagnostics(relayCtx, params))
		case protocol.MethodWindowShowMessage:
			params, err := mapper.RequestToShowMessageParams(req)
			if err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, c.editorGateway.ShowMessage(relayCtx, params))
		case protocol.MethodWindowShowMessageRequest:
			params, err := mapper.RequestToShowMessageRequestParams(req)
			if err != nil {
				return reply(ctx, nil, err)
			}
			result, err := c.editorGateway.ShowMessageRequest(relayCtx, params)
			return reply(ctx, result, err)
		case protocol.MethodWindowLogMessage:
			params, err := mapper.RequestToLogMessageParams(req)
			if err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, c.editorGateway.LogMessage(relayCtx, params))
		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

// releaseSessionResources stops the watcher and server process for a session.
// Failures are logged, cleanup continues.
func (c *controller) releaseSessionResources(ctx context.Context, s *entity.Session) {
	if s.StopWatcher != nil {
		if err := s.StopWatcher(); err != nil {
			c.logger.Warnf("stopping workspace watcher: %v", err)
		}
	}
	if s.StopServer != nil {
		if err := s.StopServer(); err != nil {
			c.logger.Warnf("stopping language server: %v", err)
		}
	}
}

func (c *controller) warn(ctx context.Context, message string) {
	err := c.editorGateway.ShowMessage(ctx, &protocol.ShowMessageParams{
		Message: message,
		Type:    protocol.MessageTypeWarning,
	})
	if err != nil {
		c.logger.Warnf("unable to deliver warning to editor: %v", err)
	}
}
