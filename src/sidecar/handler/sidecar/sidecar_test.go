package sidecar

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uberzzr/lsp-sidecar/idl/mock/jsonrpc2mock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/sidecar/sidecarmock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/factory"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/jsonrpcfx/jsonrpcfxmock"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	c := sidecarmock.NewMockController(ctrl)

	t.Run("registers connection manager", func(t *testing.T) {
		jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
		jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(nil)

		h, err := New(c, jsonRPCMock, testScope, zap.NewNop().Sugar())
		require.NoError(t, err)
		assert.NotNil(t, h.ConnectionManager())
	})

	t.Run("duplicate registration surfaces", func(t *testing.T) {
		jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
		jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(errors.New("cannot register a duplicate connection manager"))

		_, err := New(c, jsonRPCMock, testScope, zap.NewNop().Sugar())
		assert.Error(t, err)
	})
}

func TestNewConnection(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	c := sidecarmock.NewMockController(ctrl)
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))

	mgr := jsonRPCConnectionManager{
		stats: testScope,
		ctrl:  c,
	}

	mockConn := jsonrpc2mock.NewMockConn(ctrl)
	var conn jsonrpc2.Conn = mockConn

	t.Run("create success", func(t *testing.T) {
		c.EXPECT().InitSession(gomock.Any(), gomock.Any()).Return(factory.UUID(), nil)
		router, err := mgr.NewConnection(ctx, &conn)
		assert.IsType(t, &jsonRPCRouter{}, router)
		assert.NoError(t, err)
	})

	t.Run("create failure", func(t *testing.T) {
		c.EXPECT().InitSession(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.New("error"))
		_, err := mgr.NewConnection(ctx, &conn)
		assert.Error(t, err)
	})
}

func TestRemoveConnection(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))

	t.Run("ends the session", func(t *testing.T) {
		c := sidecarmock.NewMockController(ctrl)
		id := factory.UUID()
		c.EXPECT().InitSession(gomock.Any(), gomock.Any()).Return(id, nil)
		c.EXPECT().EndSession(gomock.Any(), gomock.Any()).Do(func(ctx context.Context, id uuid.UUID) error {
			resultID, err := mapper.ContextToSessionUUID(ctx)
			assert.NoError(t, err)
			assert.Equal(t, id, resultID)
			return nil
		})

		mgr := jsonRPCConnectionManager{
			stats:  testScope,
			ctrl:   c,
			logger: zap.NewNop().Sugar(),
		}

		mockConn := jsonrpc2mock.NewMockConn(ctrl)
		var conn jsonrpc2.Conn = mockConn
		router, err := mgr.NewConnection(ctx, &conn)

		mgr.RemoveConnection(ctx, router.UUID())
		assert.NoError(t, err)
	})

	t.Run("end session failure is logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)

		c := sidecarmock.NewMockController(ctrl)
		c.EXPECT().EndSession(gomock.Any(), gomock.Any()).Return(errors.New("no session"))

		mgr := jsonRPCConnectionManager{
			stats:  testScope,
			ctrl:   c,
			logger: zap.New(core).Sugar(),
		}

		mgr.RemoveConnection(ctx, factory.UUID())
		assert.Equal(t, 1, logs.Len())
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newMockReplier() jsonrpc2.Replier {
	return func(ctx context.Context, result interface{}, err error) error {
		return err
	}
}
