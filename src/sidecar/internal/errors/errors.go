// Package errors defines error types shared across the lsp-sidecar service.
package errors

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// NoSessionFoundError indicates that the context does not carry a session UUID.
type NoSessionFoundError struct{}

// Error is an implementation of the error interface.
func (n *NoSessionFoundError) Error() string {
	return "no session UUID found in context"
}

// UUIDNotFoundError indicates that no session is stored under the given UUID.
type UUIDNotFoundError struct {
	UUID uuid.UUID
}

// Error is an implementation of the error interface.
func (n *UUIDNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", n.UUID)
}

// ServerUnavailableError indicates that a session has no running language server.
type ServerUnavailableError struct {
	UUID uuid.UUID
}

// Error is an implementation of the error interface.
func (n *ServerUnavailableError) Error() string {
	return fmt.Sprintf("no language server is running for session %q", n.UUID)
}
