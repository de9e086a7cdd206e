package sidecar

import (
	"context"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) DidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidOpenTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidOpen(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidChangeTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidChange(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidCloseTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidClose(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidSaveTextDocumentParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidSave(ctx, params)
	return reply(ctx, nil, err)
}
