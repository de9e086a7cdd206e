package serverinfofile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func provider(t *testing.T, data map[string]interface{}) config.Provider {
	t.Helper()
	p, err := config.NewStaticProvider(data)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
	}{
		{
			name: "all required params are present",
			data: map[string]interface{}{_configKeyInfoFile: filepath.Join(t.TempDir(), "info.json")},
		},
		{
			name:    "missing config key",
			data:    map[string]interface{}{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Params{
				Lifecycle: fxtest.NewLifecycle(t),
				Config:    provider(t, tt.data),
				Logger:    zap.NewNop().Sugar(),
			})

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateField(t *testing.T) {
	infofile := filepath.Join(t.TempDir(), "nested", "info.json")
	m := module{
		logger:       zap.NewNop().Sugar(),
		infofile:     infofile,
		fileContents: make(map[string]string),
	}

	require.NoError(t, m.UpdateField("lsp-address", "127.0.0.1:27883"))
	require.NoError(t, m.UpdateField("pid", "1234"))

	data, err := os.ReadFile(infofile)
	require.NoError(t, err)

	contents := map[string]string{}
	require.NoError(t, json.Unmarshal(data, &contents))
	assert.Equal(t, map[string]string{
		"lsp-address": "127.0.0.1:27883",
		"pid":         "1234",
	}, contents)
}

func TestOnStop(t *testing.T) {
	t.Run("file removed", func(t *testing.T) {
		tempFile, err := os.CreateTemp(t.TempDir(), "test")
		require.NoError(t, err)
		tempFile.Close()

		m := module{
			logger:   zap.NewNop().Sugar(),
			infofile: tempFile.Name(),
		}

		assert.NoError(t, m.OnStop(context.Background()))
		_, err = os.Stat(tempFile.Name())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("already removed", func(t *testing.T) {
		m := module{
			logger:   zap.NewNop().Sugar(),
			infofile: filepath.Join(t.TempDir(), "never-written.json"),
		}
		assert.NoError(t, m.OnStop(context.Background()))
	})
}
