package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdancy/bramble"
	"github.com/verdancy/bramble/internal/config"
	"github.com/verdancy/bramble/internal/logging"
	"github.com/verdancy/bramble/internal/metrics"
	"github.com/verdancy/bramble/pkg/adapters/badgercache"
	httpAdapter "github.com/verdancy/bramble/pkg/adapters/http"
	"github.com/verdancy/bramble/pkg/adapters/memory"
	"github.com/verdancy/bramble/pkg/adapters/middleware"
	"github.com/verdancy/bramble/pkg/adapters/presetdir"
	"github.com/verdancy/bramble/pkg/adapters/redis"
	"github.com/verdancy/bramble/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the engine in server mode, exposing a JSON API over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(cmd); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runServe(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetString("port")
		cfg.Listen = ":" + port
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	met := metrics.New()

	opts := []bramble.Option{
		bramble.WithLogger(logger),
		bramble.WithLimits(cfg.Limits.Limits()),
		bramble.WithLifecycleHooks(met.Hooks()),
	}

	cache, err := buildCache(cfg.Cache)
	if err != nil {
		return err
	}
	if cache != nil {
		opts = append(opts, bramble.WithCache(cache))
	}

	if cfg.PresetDir != "" {
		store, err := presetdir.New(cfg.PresetDir)
		if err != nil {
			return err
		}
		opts = append(opts, bramble.WithPresetStore(store))
	}

	engine, err := bramble.New(opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	handler := httpAdapter.NewHandler(engine, httpAdapter.WithMetricsHandler(met.Handler()))

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting Bramble Server",
			"address", srv.Addr,
			"cache", cfg.Cache.Backend,
			"preset_dir", cfg.PresetDir,
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Asking listener to shut down and shed load.
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not kill server: %w", err)
			}
		}
		fmt.Println("Bramble Server stopped gracefully")
		return nil
	}
}

// buildCache constructs the render cache named by the config, or nil for
// the "none" backend.
func buildCache(cfg config.CacheConfig) (ports.Cache, error) {
	var cache ports.Cache
	switch cfg.Backend {
	case "", config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		cache = memory.NewCache()
	case config.CacheRedis:
		var opts []redis.Option
		if cfg.TTL.Std() > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL.Std()))
		}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		cache = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
	case config.CacheBadger:
		var err error
		cache, err = badgercache.New(badgercache.Options{
			Dir: cfg.Badger.Dir,
			TTL: cfg.TTL.Std(),
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if cfg.Compress {
		cache = middleware.NewCompression()(cache)
	}
	return cache, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "Path to the server configuration file")
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides the config listen address)")
}
