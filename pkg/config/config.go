// Package config loads sizemap's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/sizemap/config.toml (falling back to
// ~/.config/sizemap/config.toml) unless a path is given explicitly. Every
// key is optional; a missing file yields [Default]. Command-line flags take
// precedence over the file.
//
//	[render]
//	width = 800
//	height = 600
//	formats = ["html"]
//	root = "/"
//
//	[cache]
//	backend = "file"   # file | redis | none
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/sizemap/pkg/errors"
)

const appName = "sizemap"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete configuration file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds defaults for the render command and the server.
type RenderConfig struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	Formats  []string `toml:"formats"`
	Root     string   `toml:"root"`
	MaxDepth int      `toml:"max_depth"`
	Minify   bool     `toml:"minify"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir overrides the file cache directory. Empty means the XDG cache dir.
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
	// Namespace prefixes every key, for sharing one Redis between setups.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures "sizemap serve".
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Width:   800,
			Height:  600,
			Formats: []string{"html"},
			Root:    "/",
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
		},
	}
}

// DefaultPath returns the standard location of the configuration file.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over [Default]. A missing file is not an
// error. Unknown keys are rejected so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidInput, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by their consumers
// alone.
func (c Config) Validate() error {
	if err := errs.ValidateDimensions(c.Render.Width, c.Render.Height); err != nil {
		return err
	}
	if c.Render.MaxDepth < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "max_depth must be >= 0, got %d", c.Render.MaxDepth)
	}
	if err := errs.ValidateRoot(c.Render.Root); err != nil {
		return err
	}

	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errs.New(errs.ErrCodeInvalidArgument, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errs.New(errs.ErrCodeInvalidArgument, "cache backend redis needs redis_url")
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "cache ttl must not be negative")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "max_body_bytes must be positive")
	}
	return nil
}

// Write encodes the configuration as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
