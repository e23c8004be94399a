package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/config"
	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/secret"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poster.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestDefaultMatchesEditorDefaults(t *testing.T) {
	got := config.Default().Editor()
	want := editor.DefaultOptions()
	want.FallbackSize = domain.Size{}
	assert.Equal(t, want, got)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[canvas]
grid_size = 10
auto_contain = false
bounds = { x = 0, y = 0, width = 1080, height = 1920 }

[history]
limit = 25

[storage]
driver = "postgres"
dsn = "postgres://poster@localhost/poster?sslmode=disable"

[autosave]
schedule = ""
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Canvas.GridSize)
	assert.False(t, cfg.Canvas.AutoContain)
	require.NotNil(t, cfg.Canvas.Bounds)
	assert.Equal(t, domain.Rect{W: 1080, H: 1920}, *cfg.Canvas.Bounds)
	assert.Equal(t, 25, cfg.History.Limit)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Empty(t, cfg.Autosave.Schedule)
	assert.Equal(t, 20.0, cfg.Duplicate.Offset, "untouched sections keep defaults")

	opts := cfg.Editor()
	assert.Equal(t, 10.0, opts.GridSize)
	assert.Equal(t, cfg.Canvas.Bounds, opts.Bounds)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[canvas]\ngrid = 10\n")
	_, err := config.Load(path)
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "canvas.grid")
}

func TestLoad_SyntaxError(t *testing.T) {
	path := writeConfig(t, "[canvas\n")
	_, err := config.Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero grid", func(c *config.Config) { c.Canvas.GridSize = 0 }},
		{"flat bounds", func(c *config.Config) { c.Canvas.Bounds = &domain.Rect{W: 100} }},
		{"inverted widths", func(c *config.Config) { c.Constraints.MaxWidth = 10 }},
		{"tiny history", func(c *config.Config) { c.History.Limit = 1 }},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "oracle" }},
		{"bad schedule", func(c *config.Config) { c.Autosave.Schedule = "every now and then" }},
		{"bad level", func(c *config.Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Canvas.GridSize = -1
	cfg.Guides.Epsilon = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid_size")
	assert.Contains(t, err.Error(), "epsilon")
}

type secrets map[string]string

func (s secrets) Get(key string) ([]byte, error) { return []byte(s[key]), nil }

func TestStorageConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "postgres"
	cfg.Storage.Host = "db.internal"
	cfg.Storage.Port = 5433
	cfg.Storage.User = "poster"
	cfg.Storage.PasswordSecret = "db-password"
	require.NoError(t, cfg.Validate())

	sc, err := cfg.StorageConfig(secrets{"db-password": "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", sc.Password)
	assert.Equal(t, 5433, sc.Port)
	assert.Equal(t, 40, sc.RevisionLimit)

	_, err = cfg.StorageConfig(secrets{})
	assert.ErrorIs(t, err, secret.ErrNotFound)

	sc, err = config.Default().StorageConfig(nil)
	require.NoError(t, err)
	dsn, err := sc.DataSource()
	require.NoError(t, err)
	assert.Equal(t, "poster.db", dsn)
}

func TestValidate_StorageCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Password = "inline"
	cfg.Storage.PasswordSecret = "db-password"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg = config.Default()
	cfg.Storage.Port = 70000
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}
