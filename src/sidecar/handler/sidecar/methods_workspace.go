package sidecar

import (
	"context"

	"github.com/uberzzr/lsp-sidecar/src/sidecar/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) DidChangeConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidChangeConfigurationParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidChangeConfiguration(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) DidChangeWatchedFiles(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToDidChangeWatchedFilesParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.sidecar.DidChangeWatchedFiles(ctx, params)
	return reply(ctx, nil, err)
}

func (r *jsonRPCRouter) ExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToExecuteCommandParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.sidecar.ExecuteCommand(ctx, params)
	return reply(ctx, result, err)
}
