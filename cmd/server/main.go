package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/api"
	"github.com/meur/stadiumforge/internal/catalog"
	"github.com/meur/stadiumforge/internal/cli"
	"github.com/meur/stadiumforge/internal/config"
	"github.com/meur/stadiumforge/internal/redis"
	"github.com/meur/stadiumforge/internal/storage"
	"github.com/meur/stadiumforge/internal/storage/redisstore"
)

var (
	globals   cli.Globals
	port      string
	dataDir   string
	dbPath    string
	publicDir string
	noWatch   bool
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the Stadium catalog over a read-only HTTP API",
	Long: `Loads the catalog from Redis, the SQLite mirror or the output directory,
in that order of preference, and serves it under /api. The catalog is
reloaded when a new build is published or written.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	globals.Register(rootCmd)
	f := rootCmd.Flags()
	f.StringVar(&port, "port", "", "Server port")
	f.StringVar(&dataDir, "data", "", "Catalog directory")
	f.StringVar(&dbPath, "db", "", "SQLite mirror path")
	f.StringVar(&publicDir, "public", "", "Static files served at /")
	f.BoolVar(&noWatch, "no-watch", false, "Do not reload when the catalog changes")
}

func main() {
	cli.Execute(rootCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if dataDir != "" {
		cfg.Output.Dir = dataDir
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	if publicDir != "" {
		cfg.Output.PublicDir = publicDir
	}
	if noWatch {
		cfg.Server.Watch = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	cat, follow, cleanup, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cat.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	meta := cat.Snapshot().Manifest()
	log.Info().Msgf("📦 Catalog: %d items, %d heroes (generated %s)", meta.Counts.Items, meta.Counts.Heroes, meta.GeneratedAt)

	if cfg.Server.Watch && follow != nil {
		go func() {
			if err := follow(ctx); err != nil {
				log.Error().Err(err).Msg("catalog reloads stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.New(cat, api.Options{AllowedOrigins: cfg.Server.AllowedOrigins, PublicDir: cfg.Output.PublicDir}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("🚀 Stadium API starting on http://localhost:%s", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("🛑 Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// openCatalog picks the catalog source. follow, when non-nil, blocks and
// reloads the catalog on upstream changes.
func openCatalog(cfg *config.Config) (*catalog.Catalog, func(context.Context) error, func(), error) {
	switch {
	case cfg.Redis.Addr != "":
		client, err := redis.NewClient(cfg.Redis.Addr, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		pub, err := redisstore.NewPublisher(client, cfg.Redis.Prefix)
		if err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		cat, err := catalog.New(catalog.NewRedisLoader(pub))
		if err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		log.Info().Msgf("🔌 Redis: %s (prefix %s)", cfg.Redis.Addr, cfg.Redis.Prefix)
		return cat, catalog.NewSubscriber(cat, pub).Run, func() { client.Close() }, nil

	case cfg.Output.DBPath != "":
		store, err := storage.New(cfg.Output.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		cat, err := catalog.New(catalog.NewStoreLoader(store))
		if err != nil {
			store.Close()
			return nil, nil, nil, err
		}
		log.Info().Msgf("📦 Database: %s", cfg.Output.DBPath)
		return cat, nil, func() { store.Close() }, nil

	default:
		cat, err := catalog.New(catalog.NewFileLoader(cfg.Output.Dir))
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info().Msgf("📂 Catalog dir: %s", cfg.Output.Dir)
		return cat, catalog.NewWatcher(cat, cfg.Output.Dir, catalog.DefaultDebounce).Run, func() {}, nil
	}
}
