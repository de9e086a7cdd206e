// Package factory provides test data constructors shared across packages.
package factory

import (
	"github.com/gofrs/uuid"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// InitializeParams is a factory for initialize params reporting the given
// installed extensions and workspace folder.
func InitializeParams(workspaceURI string, installedExtensions ...interface{}) *protocol.InitializeParams {
	params := &protocol.InitializeParams{
		InitializationOptions: map[string]interface{}{
			"installedExtensions": installedExtensions,
		},
	}
	if workspaceURI != "" {
		params.WorkspaceFolders = []protocol.WorkspaceFolder{{URI: workspaceURI, Name: "workspace"}}
	}
	return params
}
