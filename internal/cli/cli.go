// Package cli implements the strataviz command-line interface.
//
// This package provides commands for computing plan layouts, checking graph
// integrity, serving the HTTP API, and managing the local scene cache. The
// CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a renderable scene from a plan graph
//   - check: Verify graph integrity and connection rules
//   - inspect: Interactively test connections between nodes
//   - serve: Run the HTTP API
//   - cache: Manage the local scene cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/strataviz/strataviz/pkg/buildinfo"
	"github.com/strataviz/strataviz/pkg/cache"
	"github.com/strataviz/strataviz/pkg/config"
	"github.com/strataviz/strataviz/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "strataviz"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Strataviz lays out and validates plan graphs",
		Long:         `Strataviz computes layered layouts for plan graphs - nested DAGs of data sources, transforms and outputs - and validates their structural integrity.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The CLI always uses the
// file cache (or none); the redis backend is a server concern.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger, nil), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/strataviz/).
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

// loadConfig reads the config file, falling back to defaults when the path
// is empty and no default file exists.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = defaultConfigPath()
	}
	return config.Load(path)
}

func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
