package langserver

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/factory"
	sidecarerrors "github.com/uberzzr/lsp-sidecar/src/sidecar/internal/errors"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// serverStub stands in for a launched language server process.
type serverStub struct {
	mu       sync.Mutex
	received []jsonrpc2.Request
}

func (s *serverStub) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.mu.Lock()
	s.received = append(s.received, req)
	s.mu.Unlock()

	switch req.Method() {
	case protocol.MethodInitialize:
		return reply(ctx, &protocol.InitializeResult{
			ServerInfo: &protocol.ServerInfo{Name: "stub-server"},
		}, nil)
	case protocol.MethodTextDocumentHover:
		return reply(ctx, &protocol.Hover{
			Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: "sub foo"},
		}, nil)
	case protocol.MethodTextDocumentCompletion:
		return reply(ctx, &protocol.CompletionList{
			Items: []protocol.CompletionItem{{Label: "say"}},
		}, nil)
	default:
		return reply(ctx, nil, nil)
	}
}

func (s *serverStub) waitForMethod(t *testing.T, method string) jsonrpc2.Request {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, req := range s.received {
			if req.Method() == method {
				s.mu.Unlock()
				return req
			}
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q request received", method)
	return nil
}

func newTestGateway(t *testing.T) (Gateway, context.Context, *serverStub) {
	t.Helper()
	ctx := context.Background()

	c1, c2 := net.Pipe()
	sidecarConn := jsonrpc2.NewConn(jsonrpc2.NewStream(c1))
	serverConn := jsonrpc2.NewConn(jsonrpc2.NewStream(c2))

	stub := &serverStub{}
	serverConn.Go(ctx, stub.handle)
	sidecarConn.Go(ctx, jsonrpc2.MethodNotFoundHandler)

	t.Cleanup(func() {
		sidecarConn.Close()
		serverConn.Close()
		<-sidecarConn.Done()
		<-serverConn.Done()
	})

	id := factory.UUID()
	g := New(zap.NewNop())
	require.NoError(t, g.RegisterServer(ctx, id, &sidecarConn))

	return g, mapper.ContextWithSessionUUID(ctx, id), stub
}

func TestInitialize(t *testing.T) {
	g, ctx, _ := newTestGateway(t)

	result, err := g.Initialize(ctx, &protocol.InitializeParams{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "stub-server", result.ServerInfo.Name)
}

func TestHover(t *testing.T) {
	g, ctx, _ := newTestGateway(t)

	result, err := g.Hover(ctx, &protocol.HoverParams{})
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestCompletion(t *testing.T) {
	g, ctx, _ := newTestGateway(t)

	result, err := g.Completion(ctx, &protocol.CompletionParams{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "say", result.Items[0].Label)
}

func TestDidOpen(t *testing.T) {
	g, ctx, stub := newTestGateway(t)

	err := g.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///workspace/main.raku"},
	})
	require.NoError(t, err)

	req := stub.waitForMethod(t, protocol.MethodTextDocumentDidOpen)
	var params protocol.DidOpenTextDocumentParams
	require.NoError(t, json.Unmarshal(req.Params(), &params))
	assert.Equal(t, protocol.DocumentURI("file:///workspace/main.raku"), params.TextDocument.URI)
}

func TestDidChangeWatchedFiles(t *testing.T) {
	g, ctx, stub := newTestGateway(t)

	err := g.DidChangeWatchedFiles(ctx, &protocol.DidChangeWatchedFilesParams{
		Changes: []*protocol.FileEvent{
			{URI: "file:///workspace/lib/Foo.rakumod", Type: protocol.FileChangeTypeChanged},
		},
	})
	require.NoError(t, err)
	stub.waitForMethod(t, protocol.MethodWorkspaceDidChangeWatchedFiles)
}

func TestServerRegistered(t *testing.T) {
	g, ctx, _ := newTestGateway(t)
	assert.True(t, g.ServerRegistered(ctx))

	id, err := mapper.ContextToSessionUUID(ctx)
	require.NoError(t, err)
	require.NoError(t, g.DeregisterServer(ctx, id))
	assert.False(t, g.ServerRegistered(ctx))
}

func TestUnregisteredServer(t *testing.T) {
	g := New(zap.NewNop())
	ctx := mapper.ContextWithSessionUUID(context.Background(), factory.UUID())

	err := g.DidOpen(ctx, &protocol.DidOpenTextDocumentParams{})
	require.Error(t, err)

	var unavailable *sidecarerrors.ServerUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
