package sidecar

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/conflicts/conflictsmock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/probe"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/probe/probemock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/factory"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/editor/editormock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/gateway/langserver/langservermock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/errors"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/launcher"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/launcher/launchermock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/watcher"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/watcher/watchermock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/repository/session/repositorymock"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// testServer returns a Server handle whose connection is backed by a pipe,
// standing in for a launched process.
func testServer(t *testing.T) *launcher.Server {
	t.Helper()
	c1, c2 := net.Pipe()
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(c1))
	far := jsonrpc2.NewConn(jsonrpc2.NewStream(c2))
	far.Go(context.Background(), jsonrpc2.MethodNotFoundHandler)
	t.Cleanup(func() {
		conn.Close()
		far.Close()
		<-conn.Done()
		<-far.Done()
	})
	return &launcher.Server{Conn: conn}
}

func TestInitialize(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := &entity.Session{UUID: factory.UUID()}
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

	t.Run("initialize success", func(t *testing.T) {
		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		sessionRepository.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		probeMock := probemock.NewMockController(ctrl)
		probeMock.EXPECT().CheckRuntime(gomock.Any()).Return(probe.Report{Found: true, Version: "v2023.08"})

		conflictsMock := conflictsmock.NewMockController(ctrl)
		conflictsMock.EXPECT().CheckInstalled(gomock.Any(), []string{"legacy.perl6-lsp"}).Return(nil)

		launcherMock := launchermock.NewMockLauncher(ctrl)
		launcherMock.EXPECT().Launch(gomock.Any(), gomock.Any()).Return(testServer(t), nil)

		editorGateway := editormock.NewMockGateway(ctrl)
		editorGateway.EXPECT().GetLogMessageWriter(gomock.Any(), "language-server").Return(io.Discard, nil)

		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().RegisterServer(gomock.Any(), s.UUID, gomock.Any()).Return(nil)
		serverGateway.EXPECT().Initialize(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
				// The named settings section is passed through unmodified.
				assert.Equal(t, map[string]interface{}{"trace": "verbose"}, params.InitializationOptions)
				return &protocol.InitializeResult{}, nil
			})

		c := controller{
			logger:          zap.NewNop().Sugar(),
			sessions:        sessionRepository,
			probe:           probeMock,
			conflicts:       conflictsMock,
			launcher:        launcherMock,
			editorGateway:   editorGateway,
			serverGateway:   serverGateway,
			settingsSection: "raku",
		}

		params := &protocol.InitializeParams{
			WorkspaceFolders: []protocol.WorkspaceFolder{{URI: "file:///foo/bar"}},
			InitializationOptions: map[string]interface{}{
				"installedExtensions": []interface{}{"legacy.perl6-lsp"},
				"raku":                map[string]interface{}{"trace": "verbose"},
			},
		}

		res, err := c.Initialize(ctx, params)
		require.NoError(t, err)
		assert.Equal(t, _serverName, res.ServerInfo.Name)
		assert.True(t, s.ServerRunning)
		assert.Equal(t, "/foo/bar", s.WorkspaceRoot)
	})

	t.Run("launch failure is not fatal", func(t *testing.T) {
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		sessionRepository.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		probeMock := probemock.NewMockController(ctrl)
		probeMock.EXPECT().CheckRuntime(gomock.Any()).Return(probe.Report{})

		conflictsMock := conflictsmock.NewMockController(ctrl)
		conflictsMock.EXPECT().CheckInstalled(gomock.Any(), gomock.Any()).Return(nil)

		launcherMock := launchermock.NewMockLauncher(ctrl)
		launcherMock.EXPECT().Launch(gomock.Any(), gomock.Any()).Return(nil, errors.New("script not found"))

		editorGateway := editormock.NewMockGateway(ctrl)
		editorGateway.EXPECT().GetLogMessageWriter(gomock.Any(), gomock.Any()).Return(io.Discard, nil)
		editorGateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).Return(nil)

		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			probe:         probeMock,
			conflicts:     conflictsMock,
			launcher:      launcherMock,
			editorGateway: editorGateway,
		}

		res, err := c.Initialize(ctx, &protocol.InitializeParams{})
		require.NoError(t, err)
		assert.Equal(t, _serverName, res.ServerInfo.Name)
		assert.False(t, s.ServerRunning)
	})

	t.Run("missing session", func(t *testing.T) {
		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(nil, &errors.NoSessionFoundError{})

		c := controller{
			logger:   zap.NewNop().Sugar(),
			sessions: sessionRepository,
		}

		_, err := c.Initialize(context.Background(), &protocol.InitializeParams{})
		assert.Error(t, err)
	})
}

func TestInitialized(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("starts watcher and confirms", func(t *testing.T) {
		s := &entity.Session{
			UUID:          factory.UUID(),
			WorkspaceRoot: "/foo/bar",
			ServerRunning: true,
		}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)
		sessionRepository.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().Initialized(gomock.Any(), gomock.Any()).Return(nil)
		serverGateway.EXPECT().DidChangeWatchedFiles(gomock.Any(), gomock.Any()).Return(nil)

		watcherMock := watchermock.NewMockWatcher(ctrl)
		watcherMock.EXPECT().Watch("/foo/bar", gomock.Any()).DoAndReturn(
			func(root string, notify watcher.NotifyFunc) (func() error, error) {
				notify([]*protocol.FileEvent{{URI: "file:///foo/bar/a.raku", Type: protocol.FileChangeTypeChanged}})
				return func() error { return nil }, nil
			})

		editorGateway := editormock.NewMockGateway(ctrl)
		editorGateway.EXPECT().ShowMessage(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, params *protocol.ShowMessageParams) error {
				assert.Equal(t, protocol.MessageTypeInfo, params.Type)
				return nil
			})

		c := controller{
			logger:        zap.NewNop().Sugar(),
			sessions:      sessionRepository,
			serverGateway: serverGateway,
			editorGateway: editorGateway,
			watcher:       watcherMock,
		}

		require.NoError(t, c.Initialized(ctx, &protocol.InitializedParams{}))
		assert.NotNil(t, s.StopWatcher)
	})

	t.Run("no server", func(t *testing.T) {
		s := &entity.Session{UUID: factory.UUID()}
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(s, nil)

		c := controller{
			logger:   zap.NewNop().Sugar(),
			sessions: sessionRepository,
		}

		require.NoError(t, c.Initialized(ctx, &protocol.InitializedParams{}))
	})
}

func TestShutdownExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := &entity.Session{UUID: factory.UUID()}
	ctx := context.WithValue(context.Background(), entity.SessionContextKey, s.UUID)

	t.Run("shutdown forwards", func(t *testing.T) {
		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().ServerRegistered(gomock.Any()).Return(true)
		serverGateway.EXPECT().Shutdown(gomock.Any()).Return(nil)

		c := controller{logger: zap.NewNop().Sugar(), serverGateway: serverGateway}
		assert.NoError(t, c.Shutdown(ctx))
	})

	t.Run("shutdown without server", func(t *testing.T) {
		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().ServerRegistered(gomock.Any()).Return(false)

		c := controller{logger: zap.NewNop().Sugar(), serverGateway: serverGateway}
		assert.NoError(t, c.Shutdown(ctx))
	})

	t.Run("exit ends session", func(t *testing.T) {
		stopped := false
		session := &entity.Session{
			UUID:       s.UUID,
			StopServer: func() error { stopped = true; return nil },
		}

		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().ServerRegistered(gomock.Any()).Return(true)
		serverGateway.EXPECT().Exit(gomock.Any()).Return(nil)
		serverGateway.EXPECT().DeregisterServer(gomock.Any(), s.UUID).Return(nil)

		editorGateway := editormock.NewMockGateway(ctrl)
		editorGateway.EXPECT().DeregisterClient(gomock.Any(), s.UUID).Return(nil)

		sessionRepository := repositorymock.NewMockRepository(ctrl)
		sessionRepository.EXPECT().GetFromContext(gomock.Any()).Return(session, nil)
		sessionRepository.EXPECT().Get(gomock.Any(), s.UUID).Return(session, nil)
		sessionRepository.EXPECT().Delete(gomock.Any(), s.UUID).Return(nil)
		sessionRepository.EXPECT().SessionCount(gomock.Any()).Return(0, nil)

		c := controller{
			logger:             zap.NewNop().Sugar(),
			sessions:           sessionRepository,
			serverGateway:      serverGateway,
			editorGateway:      editorGateway,
			idleTimer:          time.NewTimer(time.Hour),
			idleTimeoutMinutes: time.Hour,
		}

		require.NoError(t, c.Exit(ctx))
		assert.True(t, stopped)
	})

	t.Run("exit with full shutdown resets timer", func(t *testing.T) {
		serverGateway := langservermock.NewMockGateway(ctrl)
		serverGateway.EXPECT().ServerRegistered(gomock.Any()).Return(false)

		c := controller{
			logger:        zap.NewNop().Sugar(),
			serverGateway: serverGateway,
			fullShutdown:  true,
			idleTimer:     time.NewTimer(time.Hour),
		}

		require.NoError(t, c.RequestFullShutdown(ctx))
		require.NoError(t, c.Exit(ctx))

		select {
		case <-c.idleTimer.C:
		case <-time.After(time.Second):
			t.Fatal("idle timer was not reset for immediate shutdown")
		}
	})
}
