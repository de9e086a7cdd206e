// Package mapper converts between transport, model and entity representations.
package mapper

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/entity"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/internal/errors"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/model"
	"go.lsp.dev/jsonrpc2"
)

// SessionToModel maps a Session entity to its model equivalent.
func SessionToModel(f *entity.Session) *model.Session {
	return &model.Session{
		UUID:             f.UUID,
		InitializeParams: f.InitializeParams,
		Conn:             f.Conn,
		WorkspaceRoot:    f.WorkspaceRoot,
		ServerRunning:    f.ServerRunning,
		StopServer:       f.StopServer,
		StopWatcher:      f.StopWatcher,
	}
}

// ModelToSession maps a model Session to its entity equivalent.
func ModelToSession(f *model.Session) (*entity.Session, error) {
	return &entity.Session{
		UUID:             f.UUID,
		InitializeParams: f.InitializeParams,
		Conn:             f.Conn,
		WorkspaceRoot:    f.WorkspaceRoot,
		ServerRunning:    f.ServerRunning,
		StopServer:       f.StopServer,
		StopWatcher:      f.StopWatcher,
	}, nil
}

// UUIDToSession initializes a new Session entity with the assigned uuid and connection.
func UUIDToSession(u uuid.UUID, c *jsonrpc2.Conn) *entity.Session {
	return &entity.Session{
		UUID: u,
		Conn: c,
	}
}

// ContextToSessionUUID extracts the session UUID from a context.
func ContextToSessionUUID(c context.Context) (uuid.UUID, error) {
	s, ok := c.Value(entity.SessionContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, &errors.NoSessionFoundError{}
	}
	return s, nil
}

// ContextWithSessionUUID returns a context carrying the session UUID.
func ContextWithSessionUUID(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, entity.SessionContextKey, id)
}
