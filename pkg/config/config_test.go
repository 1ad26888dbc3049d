package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Root: t.TempDir(), Home: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "appversion.json", cfg.Record.File)
	assert.True(t, cfg.Status.Validate)
	assert.Equal(t, 4, cfg.Propagation.Workers)
	assert.False(t, cfg.Propagation.RespectGitignore)
	assert.Equal(t, []string{"node_modules", "bower_components", ".git"}, cfg.Propagation.DefaultIgnore)
	assert.True(t, cfg.UpdateCheck.Enabled)
	assert.Equal(t, 2*time.Second, cfg.UpdateCheck.Timeout)
	assert.Equal(t, "go", cfg.UpdateCheck.Source)
	assert.Equal(t, time.RFC3339, cfg.DateLayout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadProjectOverridesHome(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".apv"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".apv", "config.yaml"), []byte(`
propagation:
  workers: 8
badge:
  url: "https://example.com/{{{text}}}.svg"
update_check:
  enabled: false
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".apv.yaml"), []byte(`
propagation:
  workers: 2
  respect_gitignore: true
update_check:
  timeout: 500ms
`), 0o644))

	cfg, err := Load(Options{Root: root, Home: home})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Propagation.Workers)
	assert.True(t, cfg.Propagation.RespectGitignore)
	assert.Equal(t, "https://example.com/{{{text}}}.svg", cfg.Badge.URL)
	assert.False(t, cfg.UpdateCheck.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.UpdateCheck.Timeout)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("APV_RECORD_FILE", "version.json")
	t.Setenv("APV_PROPAGATION_WORKERS", "3")

	cfg, err := Load(Options{Root: t.TempDir(), Home: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "version.json", cfg.Record.File)
	assert.Equal(t, 3, cfg.Propagation.Workers)
}

func TestLoadFlagsWin(t *testing.T) {
	t.Setenv("APV_RECORD_FILE", "from-env.json")

	fs := pflag.NewFlagSet("apv", pflag.ContinueOnError)
	fs.String("file", "appversion.json", "")
	fs.String("log-level", "info", "")
	fs.Bool("validate-status", true, "")
	require.NoError(t, fs.Parse([]string{"--file", "from-flag.json", "--validate-status=false"}))

	cfg, err := Load(Options{Root: t.TempDir(), Home: t.TempDir(), Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.Record.File)
	assert.False(t, cfg.Status.Validate)
	// unchanged flags leave lower layers alone
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsBadFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".apv.yaml"), []byte("propagation: [unclosed"), 0o644))

	_, err := Load(Options{Root: root, Home: t.TempDir()})
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveWorkers(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".apv.yaml"), []byte("propagation:\n  workers: 0\n"), 0o644))

	_, err := Load(Options{Root: root, Home: t.TempDir()})
	assert.Error(t, err)
}

func TestHomeConfigDir(t *testing.T) {
	dir, err := homeConfigDir("/users/dev")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/users/dev", ".apv"), dir)

	t.Setenv("APV_HOME", "/opt/apv")
	dir, err = homeConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/apv", dir)
}
