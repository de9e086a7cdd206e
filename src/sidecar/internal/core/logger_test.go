package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/config"
)

func staticProvider(t *testing.T, data map[string]interface{}) config.Provider {
	t.Helper()
	provider, err := config.NewStaticProvider(data)
	require.NoError(t, err)
	return provider
}

func TestNewSugaredLogger(t *testing.T) {
	tests := []struct {
		name    string
		logging map[string]interface{}
		wantErr bool
	}{
		{
			name: "json production logger",
			logging: map[string]interface{}{
				"level":    "info",
				"encoding": "json",
			},
		},
		{
			name: "console development logger",
			logging: map[string]interface{}{
				"level":       "debug",
				"development": true,
				"encoding":    "console",
			},
		},
		{
			name: "unknown encoding falls back to json",
			logging: map[string]interface{}{
				"level":    "warn",
				"encoding": "something-else",
			},
		},
		{
			name: "invalid level",
			logging: map[string]interface{}{
				"level": "loud",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := staticProvider(t, map[string]interface{}{"logging": tt.logging})
			sugar, err := NewSugaredLogger(provider)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, sugar)
			assert.NotNil(t, NewLogger(sugar))
		})
	}
}
