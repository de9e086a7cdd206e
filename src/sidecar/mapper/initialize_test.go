package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
)

func TestInitializeParamsToInstalledExtensions(t *testing.T) {
	tests := []struct {
		name   string
		params *protocol.InitializeParams
		want   []string
	}{
		{
			name:   "nil params",
			params: nil,
			want:   nil,
		},
		{
			name:   "no initialization options",
			params: &protocol.InitializeParams{},
			want:   nil,
		},
		{
			name: "extensions reported",
			params: &protocol.InitializeParams{
				InitializationOptions: map[string]interface{}{
					"installedExtensions": []interface{}{"vendor.ext-one", "vendor.ext-two"},
				},
			},
			want: []string{"vendor.ext-one", "vendor.ext-two"},
		},
		{
			name: "non-string entries skipped",
			params: &protocol.InitializeParams{
				InitializationOptions: map[string]interface{}{
					"installedExtensions": []interface{}{"vendor.ext-one", 5, ""},
				},
			},
			want: []string{"vendor.ext-one"},
		},
		{
			name: "wrong type",
			params: &protocol.InitializeParams{
				InitializationOptions: map[string]interface{}{
					"installedExtensions": "vendor.ext-one",
				},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitializeParamsToInstalledExtensions(tt.params))
		})
	}
}

func TestInitializeParamsToSettingsSection(t *testing.T) {
	options := map[string]interface{}{
		"raku": map[string]interface{}{"trace": "verbose"},
	}

	tests := []struct {
		name    string
		params  *protocol.InitializeParams
		section string
		want    interface{}
	}{
		{
			name:    "nil params",
			params:  nil,
			section: "raku",
			want:    nil,
		},
		{
			name:    "empty section name",
			params:  &protocol.InitializeParams{InitializationOptions: options},
			section: "",
			want:    nil,
		},
		{
			name:    "section present",
			params:  &protocol.InitializeParams{InitializationOptions: options},
			section: "raku",
			want:    map[string]interface{}{"trace": "verbose"},
		},
		{
			name:    "section absent",
			params:  &protocol.InitializeParams{InitializationOptions: options},
			section: "perl",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitializeParamsToSettingsSection(tt.params, tt.section))
		})
	}
}

func TestInitializeParamsToWorkspaceRoot(t *testing.T) {
	tests := []struct {
		name   string
		params *protocol.InitializeParams
		want   string
	}{
		{
			name:   "nil params",
			params: nil,
			want:   "",
		},
		{
			name: "workspace folders preferred",
			params: &protocol.InitializeParams{
				WorkspaceFolders: []protocol.WorkspaceFolder{{URI: "file:///workspace/project", Name: "project"}},
				RootPath:         "/elsewhere",
			},
			want: "/workspace/project",
		},
		{
			name: "malformed folder skipped",
			params: &protocol.InitializeParams{
				WorkspaceFolders: []protocol.WorkspaceFolder{
					{URI: "untitled:", Name: "bad"},
					{URI: "file:///workspace/project", Name: "project"},
				},
			},
			want: "/workspace/project",
		},
		{
			name: "root uri fallback",
			params: &protocol.InitializeParams{
				RootURI: "file:///workspace/project",
			},
			want: "/workspace/project",
		},
		{
			name: "root path fallback",
			params: &protocol.InitializeParams{
				RootPath: "/workspace/project",
			},
			want: "/workspace/project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitializeParamsToWorkspaceRoot(tt.params))
		})
	}
}
