package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG dirs at a temp dir and clears PROJBOARD_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, ".local", "state"))
	for _, env := range []string{
		"PROJBOARD_CONFIG", "PROJBOARD_PORT", "PROJBOARD_HOSTNAME", "PROJBOARD_CORS",
		"PROJBOARD_LOG_LEVEL", "PROJBOARD_LOG_PRETTY", "PROJBOARD_LOG_FILE",
	} {
		t.Setenv(env, "")
	}
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Hostname)
	assert.True(t, cfg.CORSEnabled())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout.Std())
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.False(t, cfg.PrettyLogs())
	assert.False(t, cfg.LogToFile())
}

func TestJSONCComments(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "projboard.jsonc"), `{
		// This is a comment
		"server": {
			"port": 9000, /* inline comment */
			"readTimeout": "10s",
		},
		"log": {"level": "debug"}
	}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1", cfg.Server.Hostname)
}

func TestYAMLConfig(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "projboard.yaml"), `
server:
  hostname: 0.0.0.0
  cors: false
  writeTimeout: 5
log:
  pretty: true
  file: true
`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Hostname)
	assert.False(t, cfg.CORSEnabled())
	assert.Equal(t, 5*time.Second, cfg.Server.WriteTimeout.Std())
	assert.True(t, cfg.PrettyLogs())
	assert.True(t, cfg.LogToFile())
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfigMerge(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, ".config", "projboard", "projboard.json"),
		`{"server": {"port": 7000, "hostname": "global.local"}, "log": {"level": "warn"}}`)
	writeFile(t, filepath.Join(tmpDir, "projboard.json"),
		`{"server": {"port": 7001}}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	// project overrides global, unset fields fall through
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "global.local", cfg.Server.Hostname)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestEnvInterpolation(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("BOARD_HOST", "board.example.com")

	writeFile(t, filepath.Join(tmpDir, "projboard.json"), `{"server": {"hostname": "{env:BOARD_HOST}"}}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "board.example.com", cfg.Server.Hostname)
}

func TestEnvVarOverride(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "projboard.json"), `{"server": {"port": 7000}, "log": {"level": "warn"}}`)
	t.Setenv("PROJBOARD_PORT", "7777")
	t.Setenv("PROJBOARD_HOSTNAME", "0.0.0.0")
	t.Setenv("PROJBOARD_CORS", "false")
	t.Setenv("PROJBOARD_LOG_LEVEL", "ERROR")
	t.Setenv("PROJBOARD_LOG_PRETTY", "1")

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Hostname)
	assert.False(t, cfg.CORSEnabled())
	assert.Equal(t, "ERROR", cfg.Log.Level)
	assert.True(t, cfg.PrettyLogs())
}

func TestInvalidEnv(t *testing.T) {
	tmpDir := isolate(t)

	t.Setenv("PROJBOARD_PORT", "eighty")
	_, err := Load(tmpDir)
	assert.Error(t, err)

	t.Setenv("PROJBOARD_PORT", "")
	t.Setenv("PROJBOARD_CORS", "sometimes")
	_, err = Load(tmpDir)
	assert.Error(t, err)
}

func TestPROJBOARD_CONFIG(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "projboard.json"), `{"server": {"port": 7000}}`)
	customPath := filepath.Join(tmpDir, "custom", "board.yml")
	writeFile(t, customPath, "server:\n  port: 7100\n")
	t.Setenv("PROJBOARD_CONFIG", customPath)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)

	t.Setenv("PROJBOARD_CONFIG", filepath.Join(tmpDir, "missing.json"))
	_, err = Load(tmpDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMalformedConfig(t *testing.T) {
	tmpDir := isolate(t)

	writeFile(t, filepath.Join(tmpDir, "projboard.json"), `{"server": {"port": "not a number"}}`)

	_, err := Load(tmpDir)
	assert.Error(t, err)

	writeFile(t, filepath.Join(tmpDir, "projboard.json"), `{"server": {"readTimeout": "soon"}}`)
	_, err = Load(tmpDir)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "saved", "projboard.json")

	cfg := Default()
	cfg.Server.Port = 9999
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "30s", raw["server"]["readTimeout"])

	loaded, err := Load(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
}

func TestPaths(t *testing.T) {
	tmpDir := isolate(t)

	paths := GetPaths()
	assert.Equal(t, filepath.Join(tmpDir, ".config", "projboard"), paths.Config)
	assert.Equal(t, filepath.Join(tmpDir, ".local", "state", "projboard"), paths.State)
	assert.Equal(t, filepath.Join(paths.State, "log"), paths.LogPath())
	assert.Equal(t, filepath.Join(paths.Config, "projboard.json"), GlobalConfigPath())

	require.NoError(t, paths.EnsurePaths())
	for _, dir := range []string{paths.Config, paths.State} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
