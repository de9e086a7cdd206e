package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigDir(t *testing.T, meta string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.yaml"), []byte(meta), 0644))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestNewConfig(t *testing.T) {
	t.Run("loads listed files in order", func(t *testing.T) {
		dir := writeConfigDir(t, "files:\n  - base.yaml\n  - override.yaml\n", map[string]string{
			"base.yaml":     "service:\n  name: lsp-sidecar\nlogging:\n  level: info\n",
			"override.yaml": "logging:\n  level: debug\n",
		})
		t.Setenv(_envConfigDir, dir)

		provider, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "lsp-sidecar", provider.Get("service.name").String())
		assert.Equal(t, "debug", provider.Get("logging.level").String())
	})

	t.Run("skips listed files that are absent", func(t *testing.T) {
		dir := writeConfigDir(t, "files:\n  - base.yaml\n  - missing.yaml\n", map[string]string{
			"base.yaml": "service:\n  name: lsp-sidecar\n",
		})
		t.Setenv(_envConfigDir, dir)

		provider, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "lsp-sidecar", provider.Get("service.name").String())
	})

	t.Run("errors when no listed file exists", func(t *testing.T) {
		dir := writeConfigDir(t, "files:\n  - missing.yaml\n", nil)
		t.Setenv(_envConfigDir, dir)

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("errors when meta.yaml is absent", func(t *testing.T) {
		t.Setenv(_envConfigDir, t.TempDir())

		_, err := NewConfig()
		assert.Error(t, err)
	})
}

func TestConfigName(t *testing.T) {
	assert.Equal(t, "config", Config{}.Name())
}

func TestGetConfigDir(t *testing.T) {
	t.Run("returns environment variable when set", func(t *testing.T) {
		t.Setenv(_envConfigDir, "/custom/config/path")
		assert.Equal(t, "/custom/config/path", getConfigDir())
	})

	t.Run("returns default path when environment variable not set", func(t *testing.T) {
		t.Setenv(_envConfigDir, "")
		assert.Equal(t, "src/sidecar/config", getConfigDir())
	})
}
