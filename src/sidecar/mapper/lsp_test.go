package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/factory"
	"go.lsp.dev/protocol"
	"go.uber.org/goleak"
)

func TestRequestToInitializeParams(t *testing.T) {
	t.Run("valid params", func(t *testing.T) {
		params := protocol.InitializeParams{RootPath: "/workspace"}
		req := factory.JSONRPCRequest(protocol.MethodInitialize, params)

		result, err := RequestToInitializeParams(req)
		require.NoError(t, err)
		assert.Equal(t, params.RootPath, result.RootPath)
	})

	t.Run("invalid params", func(t *testing.T) {
		req := factory.JSONRPCRequest(protocol.MethodInitialize, struct {
			ProcessID string `json:"processId"`
		}{ProcessID: "not-a-number"})

		_, err := RequestToInitializeParams(req)
		assert.Error(t, err)
	})
}

func TestRequestToDocumentParams(t *testing.T) {
	docURI := protocol.DocumentURI("file:///workspace/main.raku")

	t.Run("did open", func(t *testing.T) {
		params := protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{URI: docURI, LanguageID: "raku", Text: "say 1"},
		}
		result, err := RequestToDidOpenTextDocumentParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDidOpen, params))
		require.NoError(t, err)
		assert.Equal(t, docURI, result.TextDocument.URI)
	})

	t.Run("did change", func(t *testing.T) {
		params := protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
				Version:                2,
			},
		}
		result, err := RequestToDidChangeTextDocumentParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDidChange, params))
		require.NoError(t, err)
		assert.Equal(t, int32(2), result.TextDocument.Version)
	})

	t.Run("did close", func(t *testing.T) {
		params := protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		}
		result, err := RequestToDidCloseTextDocumentParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDidClose, params))
		require.NoError(t, err)
		assert.Equal(t, docURI, result.TextDocument.URI)
	})

	t.Run("did save", func(t *testing.T) {
		params := protocol.DidSaveTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
			Text:         "say 1",
		}
		result, err := RequestToDidSaveTextDocumentParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDidSave, params))
		require.NoError(t, err)
		assert.Equal(t, "say 1", result.Text)
	})
}

func TestRequestToDidChangeWatchedFilesParams(t *testing.T) {
	params := protocol.DidChangeWatchedFilesParams{
		Changes: []*protocol.FileEvent{
			{URI: "file:///workspace/file1.raku", Type: protocol.FileChangeTypeChanged},
			{URI: "file:///workspace/file2.raku", Type: protocol.FileChangeTypeDeleted},
		},
	}
	result, err := RequestToDidChangeWatchedFilesParams(factory.JSONRPCRequest(protocol.MethodWorkspaceDidChangeWatchedFiles, params))
	require.NoError(t, err)
	require.Len(t, result.Changes, 2)
	for i := range result.Changes {
		assert.Equal(t, params.Changes[i].URI, result.Changes[i].URI)
		assert.Equal(t, params.Changes[i].Type, result.Changes[i].Type)
	}
}

func TestRequestToExecuteCommandParams(t *testing.T) {
	params := protocol.ExecuteCommandParams{Command: "sidecar.copyDebugInfo"}
	result, err := RequestToExecuteCommandParams(factory.JSONRPCRequest(protocol.MethodWorkspaceExecuteCommand, params))
	require.NoError(t, err)
	assert.Equal(t, "sidecar.copyDebugInfo", result.Command)
}

func TestRequestToCodeIntelParams(t *testing.T) {
	docURI := protocol.DocumentURI("file:///workspace/main.raku")
	position := protocol.Position{Line: 3, Character: 7}

	t.Run("hover", func(t *testing.T) {
		params := protocol.HoverParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
				Position:     position,
			},
		}
		result, err := RequestToHoverParams(factory.JSONRPCRequest(protocol.MethodTextDocumentHover, params))
		require.NoError(t, err)
		assert.Equal(t, position, result.Position)
	})

	t.Run("completion", func(t *testing.T) {
		params := protocol.CompletionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
				Position:     position,
			},
		}
		result, err := RequestToCompletionParams(factory.JSONRPCRequest(protocol.MethodTextDocumentCompletion, params))
		require.NoError(t, err)
		assert.Equal(t, docURI, result.TextDocument.URI)
	})

	t.Run("definition", func(t *testing.T) {
		params := protocol.DefinitionParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
				Position:     position,
			},
		}
		result, err := RequestToDefinitionParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDefinition, params))
		require.NoError(t, err)
		assert.Equal(t, position, result.Position)
	})

	t.Run("references", func(t *testing.T) {
		params := protocol.ReferenceParams{
			TextDocumentPositionParams: protocol.TextDocumentPositionParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
				Position:     position,
			},
		}
		result, err := RequestToReferenceParams(factory.JSONRPCRequest(protocol.MethodTextDocumentReferences, params))
		require.NoError(t, err)
		assert.Equal(t, docURI, result.TextDocument.URI)
	})

	t.Run("document symbol", func(t *testing.T) {
		params := protocol.DocumentSymbolParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: docURI},
		}
		result, err := RequestToDocumentSymbolParams(factory.JSONRPCRequest(protocol.MethodTextDocumentDocumentSymbol, params))
		require.NoError(t, err)
		assert.Equal(t, docURI, result.TextDocument.URI)
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
