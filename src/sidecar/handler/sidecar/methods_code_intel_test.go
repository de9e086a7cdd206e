package sidecar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uberzzr/lsp-sidecar/src/sidecar/controller/sidecar/sidecarmock"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/mock/gomock"
)

func TestCodeIntelMethods(t *testing.T) {

	tests := []struct {
		name             string
		method           string
		setReturn        func(c *sidecarmock.MockController, result interface{}, err error)
		params           interface{}
		controllerResult interface{}
	}{
		{
			name:   "Hover",
			method: protocol.MethodTextDocumentHover,
			setReturn: func(c *sidecarmock.MockController, result interface{}, err error) {
				r := result.(*protocol.Hover)
				c.EXPECT().Hover(gomock.Any(), gomock.Any()).Return(r, err)
			},
			params:           protocol.HoverParams{},
			controllerResult: &protocol.Hover{},
		},
		{
			name:   "Completion",
			method: protocol.MethodTextDocumentCompletion,
			setReturn: func(c *sidecarmock.MockController, result interface{}, err error) {
				r := result.(*protocol.CompletionList)
				c.EXPECT().Completion(gomock.Any(), gomock.Any()).Return(r, err)
			},
			params:           protocol.CompletionParams{},
			controllerResult: &protocol.CompletionList{},
		},
		{
			name:   "GotoDefinition",
			method: protocol.MethodTextDocumentDefinition,
			setReturn: func(c *sidecarmock.MockController, result interface{}, err error) {
				r := result.([]protocol.Location)
				c.EXPECT().GotoDefinition(gomock.Any(), gomock.Any()).Return(r, err)
			},
			params:           protocol.DefinitionParams{},
			controllerResult: []protocol.Location{{}},
		},
		{
			name:   "References",
			method: protocol.MethodTextDocumentReferences,
			setReturn: func(c *sidecarmock.MockController, result interface{}, err error) {
				r := result.([]protocol.Location)
				c.EXPECT().References(gomock.Any(), gomock.Any()).Return(r, err)
			},
			params:           protocol.ReferenceParams{},
			controllerResult: []protocol.Location{{}, {}},
		},
		{
			name:   "DocumentSymbol",
			method: protocol.MethodTextDocumentDocumentSymbol,
			setReturn: func(c *sidecarmock.MockController, result interface{}, err error) {
				r := result.([]interface{})
				c.EXPECT().DocumentSymbol(gomock.Any(), gomock.Any()).Return(r, err)
			},
			params:           protocol.DocumentSymbolParams{},
			controllerResult: []interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ctx := context.Background()
			replier := newMockReplier()

			c := sidecarmock.NewMockController(ctrl)
			r := jsonRPCRouter{sidecar: c}

			// Valid params.
			tt.setReturn(c, tt.controllerResult, nil)
			req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, tt.params)
			err := r.HandleReq(ctx, replier, req)
			assert.NoError(t, err)

			// Invalid params.
			req, _ = jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, 5)
			err = r.HandleReq(ctx, replier, req)
			assert.Error(t, err)

			// Controller error.
			tt.setReturn(c, tt.controllerResult, errors.New("err"))
			req, _ = jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), tt.method, tt.params)
			err = r.HandleReq(ctx, replier, req)
			assert.Error(t, err)
		})
	}
}
