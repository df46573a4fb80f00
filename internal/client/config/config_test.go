package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_Defaults(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		StateDir:  tmp,
		EngineURL: "http://127.0.0.1:7938",
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDaemonAddr, cfg.DaemonAddr)
	assert.Equal(t, "http://"+DefaultDaemonAddr, cfg.DaemonURL)
}

func TestConfig_Validate_ErrorsOnMissingFields(t *testing.T) {
	t.Run("missing state dir", func(t *testing.T) {
		cfg := &Config{EngineURL: "http://127.0.0.1:7938"}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "state dir")
	})

	t.Run("missing engine url", func(t *testing.T) {
		cfg := &Config{StateDir: t.TempDir()}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "engine url")
	})
}

func TestConfig_SaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")

	cfg := &Config{
		StateDir:     tmp,
		EngineURL:    "http://127.0.0.1:7938",
		AccessToken:  "atok",
		RefreshToken: "rtok",
		DaemonAddr:   "localhost:7937",
		DaemonURL:    "http://localhost:7937",
		DaemonToken:  "dtok",
		Path:         path,
	}

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.StateDir, loaded.StateDir)
	assert.Equal(t, cfg.EngineURL, loaded.EngineURL)
	assert.Equal(t, cfg.AccessToken, loaded.AccessToken)
	assert.Equal(t, cfg.RefreshToken, loaded.RefreshToken)
	assert.Equal(t, cfg.DaemonToken, loaded.DaemonToken)
	assert.Equal(t, path, loaded.Path)

	// tokens are secrets, the file must not be world readable
	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfig_Load_FillsDefaults(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultStateDir, loaded.StateDir)
	assert.Equal(t, DefaultEngineURL, loaded.EngineURL)
}

func TestConfig_Load_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
