package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-mvc/internal/apperror"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads the file and fills defaults", func(t *testing.T) {
		// Given: a config file with a few values
		path := writeConfig(t, t.TempDir(), `
log-level: debug
board-size: 4
ui: web
origin-patterns: ["localhost:*"]
terminal:
  symbol-x: "✕"
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: file values win and the rest come from defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, 4, conf.Size())
		assert.Equal(t, UIWeb, conf.UI)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, []string{"localhost:*"}, conf.OriginPatterns)
		assert.Equal(t, "✕", conf.Terminal.SymbolX)
		assert.Equal(t, "O", conf.Terminal.SymbolO)
		assert.Equal(t, time.Second, conf.Terminal.Refresh)
		assert.Equal(t, "tictactoe", conf.Telemetry.ServiceName)
		assert.Empty(t, conf.Telemetry.Endpoint)
	})

	t.Run("Environment only", func(t *testing.T) {
		// Given: no file and a board size in the environment
		t.Setenv("BOARD_SIZE", "5")
		t.Setenv("UI", "terminal")

		// When: loading without a path
		conf, err := Load("")

		// Then: the environment is used
		require.NoError(t, err)
		assert.Equal(t, 5, conf.Size())
		assert.Equal(t, UITerminal, conf.UI)
	})

	t.Run("Defaults the board size when it is not set", func(t *testing.T) {
		// Given: a config file without a board size
		path := writeConfig(t, t.TempDir(), "ui: web\n")

		// When: it is loaded
		conf, err := Load(path)

		// Then: the classic 3x3 board is used
		require.NoError(t, err)
		assert.Equal(t, 3, conf.Size())
	})

	t.Run("Rejects invalid board sizes", func(t *testing.T) {
		for _, size := range []string{"0", "-3", "2.5"} {
			path := writeConfig(t, t.TempDir(), "board-size: "+size+"\n")

			_, err := Load(path)

			assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration, size)
		}
	})

	t.Run("Rejects a zero board size from the environment", func(t *testing.T) {
		t.Setenv("BOARD_SIZE", "0")

		_, err := Load("")

		assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
	})

	t.Run("Rejects unknown ui modes", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "ui: gui\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrUnknownUIMode)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))

		assert.Error(t, err)
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "nope.yml"))
		})
	})
}

func TestLocate(t *testing.T) {
	t.Run("Prefers the XDG config directory", func(t *testing.T) {
		// Given: a config file under XDG_CONFIG_HOME
		home := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(home, "tictactoe"), 0o700))
		expected := writeConfig(t, filepath.Join(home, "tictactoe"), "board-size: 3\n")

		t.Setenv("XDG_CONFIG_HOME", home)
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		// When: the config is located
		// Then: the XDG file is returned
		assert.Equal(t, expected, Locate())
	})

	t.Run("Falls back to the working directory", func(t *testing.T) {
		// Given: an empty XDG home and a config.yml in the working directory
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		dir := t.TempDir()
		expected := writeConfig(t, dir, "board-size: 3\n")
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		// When: the config is located
		// Then: the working directory file is returned
		assert.Equal(t, expected, Locate())
	})
}
