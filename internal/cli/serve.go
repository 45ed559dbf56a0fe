package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/strataviz/strataviz/internal/server"
	"github.com/strataviz/strataviz/pkg/cache"
	"github.com/strataviz/strataviz/pkg/config"
	"github.com/strataviz/strataviz/pkg/pipeline"
	"github.com/strataviz/strataviz/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Serve the layout and graph endpoints over HTTP.

Configuration is read from the TOML config file (see --config). Without a
MongoDB URI in the config, the graph CRUD endpoints are disabled and only
stateless layout and connection checks are served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file (default: XDG config dir)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the config file)")

	return cmd
}

func (c *CLI) serve(ctx context.Context, cfg config.Config) error {
	cc, err := c.serverCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}

	var st store.Store
	if cfg.Store.MongoURI != "" {
		ms, err := store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database)
		if err != nil {
			return err
		}
		st = ms
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = ms.Close(shutdownCtx)
		}()
	} else {
		printWarning("no store configured, graph persistence endpoints are disabled")
	}

	runner := pipeline.NewRunner(cc, nil, c.Logger, nil)
	defer runner.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(runner, st, c.Logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// serverCache builds the cache backend named by the config.
func (c *CLI) serverCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisAddr)
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	default:
		return cache.NewFileCache(cfg.Dir)
	}
}
