package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dupes/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dupes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "sha256", cfg.Algorithm)
	assert.Equal(t, "1MiB", cfg.BufferSize)
	assert.Equal(t, 500*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSize)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
workers: 3
algorithm: sha512
progress_interval: 2s
log:
  level: debug
  file: /tmp/dupes.log
`)

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "sha512", cfg.Algorithm)
	assert.Equal(t, 2*time.Second, cfg.ProgressInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/dupes.log", cfg.Log.File)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("DUPES_ALGORITHM", "md5")
	t.Setenv("DUPES_LOG_LEVEL", "warn")

	cfg, err := config.Load(writeConfig(t, "algorithm: sha1\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, "md5", cfg.Algorithm)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "workers: 3\nalgorithm: sha1\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "")
	flags.String("algorithm", "sha256", "")

	require.NoError(t, flags.Parse([]string{"--workers", "7"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Workers, "changed flag wins")
	assert.Equal(t, "sha1", cfg.Algorithm, "unchanged flag does not shadow the file")
}
