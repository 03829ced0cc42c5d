package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/cli"
	"github.com/meur/stadiumforge/internal/pipeline"
)

var (
	globals   cli.Globals
	dataDir   string
	dbPath    string
	redisAddr string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the SQLite mirror and Redis from an existing catalog directory",
	Long: `Reads items.json, heroes.json and meta.json from the catalog directory
and writes them to the configured SQLite database and Redis, without
parsing any dumps.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	globals.Register(rootCmd)
	f := rootCmd.Flags()
	f.StringVar(&dataDir, "data", "", "Catalog directory")
	f.StringVar(&dbPath, "db", "", "SQLite database path")
	f.StringVar(&redisAddr, "redis", "", "Redis address")
}

func main() {
	cli.Execute(rootCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Output.Dir = dataDir
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	if redisAddr != "" {
		cfg.Redis.Addr = redisAddr
	}
	if cfg.Output.DBPath == "" && cfg.Redis.Addr == "" {
		return errors.New("nothing to seed: set --db or --redis")
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	p, err := pipeline.New(cfg, pipeline.Options{})
	if err != nil {
		return err
	}
	defer p.Close()

	rep, err := p.Sync(ctx)
	if err != nil {
		return err
	}

	m := rep.Result.Manifest
	if cfg.Output.DBPath != "" {
		log.Info().Msgf("✓ Seeded %s", cfg.Output.DBPath)
	}
	if cfg.Redis.Addr != "" {
		log.Info().Msgf("✓ Published to %s", cfg.Redis.Addr)
	}
	log.Info().Msgf("🌱 Seeding complete! %d items, %d heroes (generated %s)", m.Counts.Items, m.Counts.Heroes, m.GeneratedAt)
	return nil
}
