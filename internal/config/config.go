// Package config loads poster.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"poster/internal/canvas"
	"poster/internal/domain"
	"poster/internal/editor"
	"poster/internal/history"
	"poster/internal/logger"
	"poster/internal/secret"
	"poster/internal/storage"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Canvas      Canvas                 `toml:"canvas"`
	Constraints domain.SizeConstraints `toml:"constraints"`
	Collision   Collision              `toml:"collision"`
	Guides      Guides                 `toml:"guides"`
	Nudge       Nudge                  `toml:"nudge"`
	Duplicate   Duplicate              `toml:"duplicate"`
	History     History                `toml:"history"`
	Layout      Layout                 `toml:"layout"`
	Storage     Storage                `toml:"storage"`
	Autosave    Autosave               `toml:"autosave"`
	Log         Log                    `toml:"log"`
}

type Canvas struct {
	GridSize    float64      `toml:"grid_size"`
	AutoContain bool         `toml:"auto_contain"`
	Bounds      *domain.Rect `toml:"bounds"`
}

type Collision struct {
	MinDistance float64 `toml:"min_distance"`
	Strength    float64 `toml:"strength"`
}

type Guides struct {
	Epsilon float64 `toml:"epsilon"`
}

type Nudge struct {
	Step     float64 `toml:"step"`
	FineStep float64 `toml:"fine_step"`
}

type Duplicate struct {
	Offset float64 `toml:"offset"`
}

type History struct {
	Limit int `toml:"limit"`
}

type Layout struct {
	Padding     float64 `toml:"padding"`
	MaxRowWidth float64 `toml:"max_row_width"`
}

// Storage addresses the scene store. DSN wins over the host fields.
// PasswordSecret names a secret (environment variable or keychain item)
// holding the password, so it need not be written into the file.
type Storage struct {
	Driver         string `toml:"driver"`
	DSN            string `toml:"dsn"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	PasswordSecret string `toml:"password_secret"`
	Database       string `toml:"database"`
	SSLMode        string `toml:"sslmode"`
	Revisions      int    `toml:"revisions"`
}

type Autosave struct {
	Schedule string `toml:"schedule"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Canvas:      Canvas{GridSize: canvas.DefaultGridSize, AutoContain: true},
		Constraints: domain.DefaultSizeConstraints(),
		Collision:   Collision{MinDistance: canvas.DefaultMinDistance, Strength: canvas.DefaultStrength},
		Guides:      Guides{Epsilon: canvas.DefaultGuideEpsilon},
		Nudge:       Nudge{Step: 10, FineStep: 1},
		Duplicate:   Duplicate{Offset: 20},
		History:     History{Limit: history.DefaultLimit},
		Layout:      Layout{Padding: canvas.DefaultLayoutPadding, MaxRowWidth: canvas.DefaultMaxRowWidth},
		Storage:     Storage{Driver: storage.DriverSQLite, Database: "poster", Revisions: storage.DefaultRevisionLimit},
		Autosave:    Autosave{Schedule: "@every 30s"},
		Log:         Log{Level: "info"},
	}
}

// Load decodes path over the defaults. A missing file yields the
// defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Canvas.GridSize <= 0 {
		bad("canvas.grid_size must be positive, got %v", c.Canvas.GridSize)
	}
	if b := c.Canvas.Bounds; b != nil && (b.W <= 0 || b.H <= 0) {
		bad("canvas.bounds must have positive width and height")
	}
	k := c.Constraints
	if k.MinWidth <= 0 || k.MinHeight <= 0 {
		bad("constraints minimums must be positive")
	}
	if k.MaxWidth > 0 && k.MaxWidth < k.MinWidth {
		bad("constraints.max_width %v below min_width %v", k.MaxWidth, k.MinWidth)
	}
	if k.MaxHeight > 0 && k.MaxHeight < k.MinHeight {
		bad("constraints.max_height %v below min_height %v", k.MaxHeight, k.MinHeight)
	}
	if c.Collision.MinDistance <= 0 || c.Collision.Strength < 0 {
		bad("collision.min_distance must be positive and strength non-negative")
	}
	if c.Guides.Epsilon <= 0 {
		bad("guides.epsilon must be positive")
	}
	if c.Nudge.Step <= 0 || c.Nudge.FineStep <= 0 {
		bad("nudge steps must be positive")
	}
	if c.History.Limit < 2 {
		bad("history.limit must be at least 2, got %d", c.History.Limit)
	}
	if !storage.KnownDriver(c.Storage.Driver) {
		bad("storage.driver %q not one of %s", c.Storage.Driver, strings.Join(storage.Drivers(), ", "))
	}
	if c.Storage.Port < 0 || c.Storage.Port > 65535 {
		bad("storage.port %d out of range", c.Storage.Port)
	}
	if c.Storage.Password != "" && c.Storage.PasswordSecret != "" {
		bad("storage.password and storage.password_secret are exclusive")
	}
	if c.Storage.Revisions < 1 {
		bad("storage.revisions must be positive")
	}
	if s := c.Autosave.Schedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			bad("autosave.schedule %q: %v", s, err)
		}
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		bad("log.level %q", c.Log.Level)
	}
	return errors.Join(errs...)
}

// Editor converts the canvas sections into session options.
func (c Config) Editor() editor.Options {
	return editor.Options{
		GridSize:        c.Canvas.GridSize,
		Bounds:          c.Canvas.Bounds,
		Constraints:     c.Constraints,
		MinDistance:     c.Collision.MinDistance,
		Strength:        c.Collision.Strength,
		GuideEpsilon:    c.Guides.Epsilon,
		NudgeStep:       c.Nudge.Step,
		FineNudgeStep:   c.Nudge.FineStep,
		DuplicateOffset: c.Duplicate.Offset,
		AutoContain:     c.Canvas.AutoContain,
		HistoryLimit:    c.History.Limit,
		LayoutPadding:   c.Layout.Padding,
		MaxRowWidth:     c.Layout.MaxRowWidth,
	}
}

// StorageConfig converts the storage section. A password_secret is
// resolved through secrets; a nil store leaves the password empty.
func (c Config) StorageConfig(secrets secret.Store) (storage.Config, error) {
	cfg := storage.Config{
		Driver:        c.Storage.Driver,
		DSN:           c.Storage.DSN,
		Host:          c.Storage.Host,
		Port:          c.Storage.Port,
		User:          c.Storage.User,
		Password:      c.Storage.Password,
		Database:      c.Storage.Database,
		SSLMode:       c.Storage.SSLMode,
		RevisionLimit: c.Storage.Revisions,
	}
	if name := c.Storage.PasswordSecret; name != "" && secrets != nil {
		value, err := secrets.Get(name)
		if err != nil {
			return storage.Config{}, fmt.Errorf("storage password: %w", err)
		}
		if len(value) == 0 {
			return storage.Config{}, fmt.Errorf("storage password: %w: %s", secret.ErrNotFound, name)
		}
		cfg.Password = string(value)
	}
	return cfg, nil
}
