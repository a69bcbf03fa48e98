package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigParsing(t *testing.T) {
	t.Parallel()
	config, err := LoadFromReader(strings.NewReader(`# Global options
log.level debug
run.max-ticks 20

[inspect]
format yaml

[run]
seed 7
`))
	require.NoError(t, err)
	assert.False(t, config.HasWarnings(), config.GetWarnings())

	v, ok := config.GetGlobalOption("log.level")
	assert.True(t, ok)
	assert.Equal(t, "debug", v)

	v, ok = config.GetCommandOption("inspect", "format")
	assert.True(t, ok)
	assert.Equal(t, "yaml", v)

	// command sections fall back to global options
	v, ok = config.GetCommandOption("run", "run.max-ticks")
	assert.True(t, ok)
	assert.Equal(t, "20", v)

	_, ok = config.GetCommandOption("nonexistent", "option")
	assert.False(t, ok)
}

func TestConfigWarnings(t *testing.T) {
	t.Parallel()
	config, err := LoadFromReader(strings.NewReader("bogus 1\nrun.max-ticks many\n[run]\nseed x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		`global option "run.max-ticks": expected int, got "many"`,
		`option "seed" in [run]: expected int, got "x"`,
		`unknown global option: "bogus" (value: "1")`,
	}, config.GetWarnings())
}

func TestLoadFromPath(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	config, err := LoadFromPath(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, config.Global)

	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte("tree.strict true\n"), 0644))
	config, err = LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "true", config.Global["tree.strict"])

	if runtime.GOOS != "windows" {
		link := filepath.Join(dir, "link")
		require.NoError(t, os.Symlink(path, link))
		_, err = LoadFromPath(link)
		assert.ErrorContains(t, err, "symlink not allowed")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom-config")
	got, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-config", got)

	dir := t.TempDir()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Setenv(homeVar, dir)
	t.Setenv(EnvConfigPath, "")
	got, err = GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".aethiumian", "config"), got)

	nested := filepath.Join(dir, "nested", "config")
	t.Setenv(EnvConfigPath, nested)
	require.NoError(t, EnsureConfigDir())
	info, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSettings(t *testing.T) {
	t.Setenv("AETHIUMIAN_LOG_LEVEL", "warn")
	config := NewConfig()
	config.SetGlobalOption("log.level", "debug")
	config.SetGlobalOption("run.interval", "250ms")
	config.SetGlobalOption("tree.strict", "yes")

	s, err := DefaultSchema().Settings(config)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Color:         "auto",
		LogLevel:      slog.LevelWarn,
		LogFormat:     "text",
		ExprCacheSize: 1000,
		Strict:        true,
		MaxTicks:      100,
		Interval:      250 * time.Millisecond,
	}, s)

	config.SetGlobalOption("log.format", "xml")
	_, err = DefaultSchema().Settings(config)
	assert.ErrorContains(t, err, "log.format")
}

func TestResolveCommand(t *testing.T) {
	t.Setenv("AETHIUMIAN_SEED", "")
	os.Unsetenv("AETHIUMIAN_SEED")
	schema := DefaultSchema()
	config := NewConfig()
	assert.Equal(t, "text", schema.ResolveCommand(config, "inspect", "format"))
	assert.Equal(t, "100", schema.ResolveCommand(config, "run", "run.max-ticks"))

	config.SetCommandOption("run", "seed", "3")
	assert.Equal(t, "3", schema.ResolveCommand(config, "run", "seed"))

	t.Setenv("AETHIUMIAN_SEED", "9")
	assert.Equal(t, "9", schema.ResolveCommand(config, "run", "seed"))
}

func TestFormatHelp(t *testing.T) {
	t.Parallel()
	help := DefaultSchema().FormatHelp()
	assert.Contains(t, help, "Global Options:")
	assert.Contains(t, help, "log.level")
	assert.Contains(t, help, "env: AETHIUMIAN_LOG_LEVEL")
	assert.Contains(t, help, "[run] Options:")
}

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "config")

	require.NoError(t, SetKeyInFile(path, "log.level", "debug"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log.level debug", string(data))

	require.NoError(t, os.WriteFile(path, []byte("# comment\nlog.level info\n\n[run]\nlog.level error\n"), 0644))
	require.NoError(t, SetKeyInFile(path, "log.level", "warn"))
	require.NoError(t, SetKeyInFile(path, "tree.strict", "true"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# comment\nlog.level warn\n\ntree.strict true\n[run]\nlog.level error\n", string(data))
}
