// Package cli implements the sizemap command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sizemap/pkg/buildinfo"
	"github.com/matzehuels/sizemap/pkg/cache"
	"github.com/matzehuels/sizemap/pkg/config"
	"github.com/matzehuels/sizemap/pkg/observability"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sizemap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs; flags override it.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline,
// cache and HTTP hooks are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sizemap",
		Short: "Sizemap draws disk usage as a treemap",
		Long: `Sizemap reads the output of "du -ab" and draws every file as a rectangle
whose area is proportional to its size, nested inside the rectangles of
the folders that contain it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sizemap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.partitionCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config, or the default
// one. Only an explicitly named file has to exist.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns+":")
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sizemap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderDefaults converts the [render] config section into pipeline options.
func (c *CLI) renderDefaults() pipeline.Options {
	r := c.Config.Render
	return pipeline.Options{
		Root:     r.Root,
		Width:    r.Width,
		Height:   r.Height,
		MaxDepth: r.MaxDepth,
		Formats:  append([]string(nil), r.Formats...),
		Minify:   r.Minify,
		TTL:      c.Config.Cache.TTL.Duration,
		Logger:   c.Logger,
	}
}
