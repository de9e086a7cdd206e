// Package entity contains the domain types for the lsp-sidecar service.
package entity

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type keyType string

// SessionContextKey indicates the key to be used to identify the session UUID in the context.
const SessionContextKey keyType = "SessionUUID"

// SidecarVersion is the build version of the sidecar binary, supplied at startup.
type SidecarVersion string

// Session represents a single editor connection and the language server launched for it.
type Session struct {
	UUID             uuid.UUID                  `json:"uuid" zap:"uuid"`
	InitializeParams *protocol.InitializeParams `json:"-" zap:"-"`
	Conn             *jsonrpc2.Conn             `json:"-" zap:"-"`
	WorkspaceRoot    string                     `json:"workspaceRoot" zap:"workspaceRoot"`
	ServerRunning    bool                       `json:"serverRunning" zap:"serverRunning"`

	// StopServer releases the launched language-server process, if any.
	StopServer func() error `json:"-" zap:"-"`
	// StopWatcher releases the workspace file watcher, if any.
	StopWatcher func() error `json:"-" zap:"-"`
}

// ClientName identifies the editor that opened a session, from its initialize params.
type ClientName string

const (
	// ClientNameVSCode is the name reported by VS Code based editors.
	ClientNameVSCode ClientName = "Visual Studio Code"
	// ClientNameNeovim is the name reported by Neovim's built-in client.
	ClientNameNeovim ClientName = "Neovim"
)
