// Package editor sends outbound notifications and calls to the connected editor.
package editor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

const _errSendToEditor = "sending call/notification to editor: %w"

// Gateway is used to send outbound notifications and calls to the editor.
// All calls should include a context with a session UUID, which routes the
// outbound traffic to the correct editor connection.
type Gateway interface {
	// RegisterClient registers a new client with the gateway. Should be called each time a new editor connection is initialized.
	RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterClient removes a client from the gateway. Should be called each time an editor connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	// Methods from protocol.Client interface.
	ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error)
	ShowMessageRequest(ctx context.Context, params *protocol.ShowMessageRequestParams) (result *protocol.MessageActionItem, err error)
	LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error)
	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) (err error)

	// GetLogMessageWriter returns an io.Writer that surfaces writes in the
	// editor's output panel. Do not store across requests, get a new one each
	// time as needed.
	GetLogMessageWriter(ctx context.Context, prefix string) (io.Writer, error)
}

type gateway struct {
	clients   map[uuid.UUID]protocol.Client
	clientsMu sync.Mutex
	logger    *zap.Logger
}

// New returns a Gateway for sending editor notifications and calls.
func New(logger *zap.Logger) Gateway {
	return &gateway{
		clients: make(map[uuid.UUID]protocol.Client),
		logger:  logger,
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	g.clients[id] = protocol.ClientDispatcher(*conn, g.logger)
	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	delete(g.clients, id)
	return nil
}

func (g *gateway) ShowMessage(ctx context.Context, params *protocol.ShowMessageParams) (err error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToEditor, err)
	}
	return c.ShowMessage(ctx, params)
}

func (g *gateway) ShowMessageRequest(ctx context.Context, params *protocol.ShowMessageRequestParams) (result *protocol.MessageActionItem, err error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf(_errSendToEditor, err)
	}
	return c.ShowMessageRequest(ctx, params)
}

func (g *gateway) LogMessage(ctx context.Context, params *protocol.LogMessageParams) (err error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToEditor, err)
	}
	return c.LogMessage(ctx, params)
}

func (g *gateway) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) (err error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToEditor, err)
	}
	return c.PublishDiagnostics(ctx, params)
}

func (g *gateway) getClient(ctx context.Context) (protocol.Client, error) {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}

	client, ok := g.clients[id]
	if !ok {
		return nil, fmt.Errorf("client with id %q not found", id)
	}
	return client, nil
}

// logMessageWriter implements io.Writer to allow logging to the editor in
// situations that require an io.Writer.
type logMessageWriter struct {
	client protocol.Client
	ctx    context.Context
	prefix string
}

func (g *gateway) GetLogMessageWriter(ctx context.Context, prefix string) (io.Writer, error) {
	c, err := g.getClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting editor log message writer: %w", err)
	}
	return &logMessageWriter{
		client: c,
		ctx:    ctx,
		prefix: prefix,
	}, nil
}

func (w *logMessageWriter) Write(p []byte) (n int, err error) {
	str := strings.TrimSuffix(string(p), "\n")
	if err := w.client.LogMessage(w.ctx, &protocol.LogMessageParams{
		Message: fmt.Sprintf("[%s] %s", w.prefix, str),
		Type:    protocol.MessageTypeLog,
	}); err != nil {
		return 0, fmt.Errorf("writing to editor log message writer: %w", err)
	}
	return len(p), nil
}
