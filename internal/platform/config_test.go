package platform

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFile))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("Relative file is resolved against the config directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, ConfigFile)
		content := "file: data/objects.json\nprompt: \"> \"\nlog_level: debug\nversioning: true\nwatch: true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "data", "objects.json"), cfg.File)
		assert.Equal(t, "> ", cfg.Prompt)
		assert.Equal(t, slog.LevelDebug, cfg.Level())
		assert.True(t, cfg.Versioning)
		assert.True(t, cfg.Watch)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("HBNB_FILE", "/srv/hbnb.json")
		t.Setenv("HBNB_LOG_LEVEL", "error")

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFile))
		require.NoError(t, err)
		assert.Equal(t, "/srv/hbnb.json", cfg.File)
		assert.Equal(t, slog.LevelError, cfg.Level())
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ConfigFile)
		require.NoError(t, os.WriteFile(path, []byte("file: [unclosed\n"), 0644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFile)
	cfg := DefaultConfig()
	cfg.File = "/abs/file.json"
	cfg.Watch = true
	require.NoError(t, cfg.Save(path))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestConfig_Level(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "bogus"}).Level())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "INFO"}).Level())
}
