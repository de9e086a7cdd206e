package mapper

import (
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// RequestToInitializeParams maps the parameters from a jsonrpc2.Request into protocol.InitializeParams.
func RequestToInitializeParams(req jsonrpc2.Request) (*protocol.InitializeParams, error) {
	params := protocol.InitializeParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToInitializedParams maps the parameters from a jsonrpc2.Request into protocol.InitializedParams.
func RequestToInitializedParams(req jsonrpc2.Request) (*protocol.InitializedParams, error) {
	params := protocol.InitializedParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidOpenTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidOpenTextDocumentParams.
func RequestToDidOpenTextDocumentParams(req jsonrpc2.Request) (*protocol.DidOpenTextDocumentParams, error) {
	params := protocol.DidOpenTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidChangeTextDocumentParams.
func RequestToDidChangeTextDocumentParams(req jsonrpc2.Request) (*protocol.DidChangeTextDocumentParams, error) {
	params := protocol.DidChangeTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidCloseTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidCloseTextDocumentParams.
func RequestToDidCloseTextDocumentParams(req jsonrpc2.Request) (*protocol.DidCloseTextDocumentParams, error) {
	params := protocol.DidCloseTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidSaveTextDocumentParams maps the parameters from a jsonrpc2.Request into protocol.DidSaveTextDocumentParams.
func RequestToDidSaveTextDocumentParams(req jsonrpc2.Request) (*protocol.DidSaveTextDocumentParams, error) {
	params := protocol.DidSaveTextDocumentParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeConfigurationParams maps the parameters from a jsonrpc2.Request into protocol.DidChangeConfigurationParams.
func RequestToDidChangeConfigurationParams(req jsonrpc2.Request) (*protocol.DidChangeConfigurationParams, error) {
	params := protocol.DidChangeConfigurationParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDidChangeWatchedFilesParams maps the parameters from a jsonrpc2.Request into protocol.DidChangeWatchedFilesParams.
func RequestToDidChangeWatchedFilesParams(req jsonrpc2.Request) (*protocol.DidChangeWatchedFilesParams, error) {
	params := protocol.DidChangeWatchedFilesParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToExecuteCommandParams maps the parameters from a jsonrpc2.Request into protocol.ExecuteCommandParams.
func RequestToExecuteCommandParams(req jsonrpc2.Request) (*protocol.ExecuteCommandParams, error) {
	params := protocol.ExecuteCommandParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToHoverParams maps the parameters from a jsonrpc2.Request into protocol.HoverParams.
func RequestToHoverParams(req jsonrpc2.Request) (*protocol.HoverParams, error) {
	params := protocol.HoverParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToCompletionParams maps the parameters from a jsonrpc2.Request into protocol.CompletionParams.
func RequestToCompletionParams(req jsonrpc2.Request) (*protocol.CompletionParams, error) {
	params := protocol.CompletionParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDefinitionParams maps the parameters from a jsonrpc2.Request into protocol.DefinitionParams.
func RequestToDefinitionParams(req jsonrpc2.Request) (*protocol.DefinitionParams, error) {
	params := protocol.DefinitionParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToReferenceParams maps the parameters from a jsonrpc2.Request into protocol.ReferenceParams.
func RequestToReferenceParams(req jsonrpc2.Request) (*protocol.ReferenceParams, error) {
	params := protocol.ReferenceParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToDocumentSymbolParams maps the parameters from a jsonrpc2.Request into protocol.DocumentSymbolParams.
func RequestToDocumentSymbolParams(req jsonrpc2.Request) (*protocol.DocumentSymbolParams, error) {
	params := protocol.DocumentSymbolParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToPublishDiagnosticsParams maps the parameters from a jsonrpc2.Request into protocol.PublishDiagnosticsParams.
func RequestToPublishDiagnosticsParams(req jsonrpc2.Request) (*protocol.PublishDiagnosticsParams, error) {
	params := protocol.PublishDiagnosticsParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToShowMessageParams maps the parameters from a jsonrpc2.Request into protocol.ShowMessageParams.
func RequestToShowMessageParams(req jsonrpc2.Request) (*protocol.ShowMessageParams, error) {
	params := protocol.ShowMessageParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToShowMessageRequestParams maps the parameters from a jsonrpc2.Request into protocol.ShowMessageRequestParams.
func RequestToShowMessageRequestParams(req jsonrpc2.Request) (*protocol.ShowMessageRequestParams, error) {
	params := protocol.ShowMessageRequestParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

// RequestToLogMessageParams maps the parameters from a jsonrpc2.Request into protocol.LogMessageParams.
func RequestToLogMessageParams(req jsonrpc2.Request) (*protocol.LogMessageParams, error) {
	params := protocol.LogMessageParams{}
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, wrapErrParse(err)
	}
	return &params, nil
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
