// Package sidecar wires inbound editor JSON-RPC connections into the
// sidecar controller.
package sidecar

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	controller "github.com/uberzzr/lsp-sidecar/src/sidecar/controller/sidecar"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/jsonrpcfx"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
)

// Handler accepts editor connections and routes their requests.
type Handler interface {
	ConnectionManager() jsonrpcfx.ConnectionManager
}

type handler struct {
	sidecar           controller.Controller
	connectionManager jsonrpcfx.ConnectionManager
	stats             tally.Scope
}

// New constructs a new sidecar Handler and registers it to receive connections.
func New(ctrl controller.Controller, jsonrpcmod jsonrpcfx.JSONRPCModule, stats tally.Scope, logger *zap.SugaredLogger) (Handler, error) {
	c := jsonRPCConnectionManager{
		ctrl:   ctrl,
		stats:  stats.SubScope("json_rpc"),
		logger: logger,
	}
	if err := jsonrpcmod.RegisterConnectionManager(&c); err != nil {
		return nil, fmt.Errorf("registering connection manager: %w", err)
	}

	return &handler{
		sidecar:           ctrl,
		connectionManager: &c,
		stats:             stats,
	}, nil
}

func (h *handler) ConnectionManager() jsonrpcfx.ConnectionManager {
	return h.connectionManager
}

type jsonRPCConnectionManager struct {
	ctrl   controller.Controller
	stats  tally.Scope
	logger *zap.SugaredLogger
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (c *jsonRPCConnectionManager) NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router jsonrpcfx.Router, err error) {
	id, err := c.ctrl.InitSession(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}

	r := jsonRPCRouter{
		sidecar: c.ctrl,
		uuid:    id,
		stats:   c.stats,
	}

	return &r, nil
}

// RemoveConnection cleans up a closed connection.
func (c *jsonRPCConnectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	// Ensure session is removed even if no Exit call has been received.
	ctx = context.WithValue(ctx, entity.SessionContextKey, id)
	if err := c.ctrl.EndSession(ctx, id); err != nil {
		c.logger.Warnf("ending session %s: %v", id, err)
	}
}
