package sidecar

import (
	"context"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) Hover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToHoverParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.Hover(ctx, params)
	return reply(ctx, result, err)
}

func (r *jsonRPCRouter) Completion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToCompletionParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.Completion(ctx, params)
	return reply(ctx, result, err)
}

func (r *jsonRPCRouter) GotoDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDefinitionParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.GotoDefinition(ctx, params)
	return reply(ctx, result, err)
}

func (r *jsonRPCRouter) References(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToReferenceParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.References(ctx, params)
	return reply(ctx, result, err)
}

func (r *jsonRPCRouter) DocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDocumentSymbolParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.DocumentSymbol(ctx, params)
	return reply(ctx, result, err)
}
