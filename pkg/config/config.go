// Package config loads application configuration from a TOML file. Every
// field has a working default; a missing config file is not an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/strataviz/strataviz/pkg/errors"
)

// Backend names accepted by [Cache].Backend.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the full application configuration.
type Config struct {
	Server Server `toml:"server"`
	Layout Layout `toml:"layout"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Layout configures the default layout pass.
type Layout struct {
	Orientation string  `toml:"orientation"` // vertical | horizontal
	NodeSpacing float64 `toml:"node_spacing"`
	RankSpacing float64 `toml:"rank_spacing"`
}

// Cache configures the scene/graph cache.
type Cache struct {
	Backend   string `toml:"backend"` // file | redis | none
	Dir       string `toml:"dir"`     // file backend
	RedisAddr string `toml:"redis_addr"`
	TTLHours  int    `toml:"ttl_hours"`
}

// Store configures graph persistence.
type Store struct {
	MongoURI string `toml:"mongo_uri"` // empty disables persistence
	Database string `toml:"database"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
		Layout: Layout{
			Orientation: "vertical",
			NodeSpacing: 40,
			RankSpacing: 60,
		},
		Cache: Cache{
			Backend:  CacheBackendFile,
			Dir:      defaultCacheDir(),
			TTLHours: 24,
		},
		Store: Store{Database: "strataviz"},
	}
}

// Load reads the config file at path, layered over the defaults. A missing
// file returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated fields. Spacing values are clamped later by the
// layout package, so out-of-range numbers are not config errors.
func (c *Config) Validate() error {
	switch c.Layout.Orientation {
	case "vertical", "horizontal":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.orientation must be vertical or horizontal, got %q", c.Layout.Orientation)
	}
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr required for the redis backend")
	}
	return nil
}

// defaultCacheDir follows the XDG convention with a fallback to a hidden
// directory in $HOME.
func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "strataviz")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".strataviz-cache"
	}
	return filepath.Join(home, ".strataviz", "cache")
}
