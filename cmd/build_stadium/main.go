package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/cli"
	"github.com/meur/stadiumforge/internal/pipeline"
)

var (
	globals    cli.Globals
	dump       string
	dumpItems  string
	dumpHeroes string
	outDir     string
	dbPath     string
	dryRun     bool
	validate   bool
	noAssets   bool
)

var rootCmd = &cobra.Command{
	Use:   "build_stadium",
	Short: "Build the Stadium items and heroes catalog from wiki dumps",
	Long: `Parses the Stadium items and heroes dumps, merges the result into the
output directory (items.json, heroes.json, meta.json) and mirrors it to the
configured SQLite database and Redis.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runBuild,
}

func init() {
	globals.Register(rootCmd)
	f := rootCmd.Flags()
	f.StringVar(&dump, "dump", "", "Single dump folder used for both items and heroes")
	f.StringVar(&dumpItems, "dump-items", "", "Items dump root or wikitext folder")
	f.StringVar(&dumpHeroes, "dump-heroes", "", "Heroes dump root or wikitext folder")
	f.StringVar(&outDir, "out", "", "Output directory")
	f.StringVar(&dbPath, "db", "", "SQLite mirror path")
	f.BoolVar(&dryRun, "dry-run", false, "Parse and merge without writing anything")
	f.BoolVar(&validate, "validate", false, "Validate records and log the invalid ones")
	f.BoolVar(&noAssets, "no-assets", false, "Skip copying images into the public dir")
}

func main() {
	cli.Execute(rootCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}

	if dump != "" {
		cfg.Dumps.Items = dump
		cfg.Dumps.Heroes = dump
	}
	if dumpItems != "" {
		cfg.Dumps.Items = dumpItems
	}
	if dumpHeroes != "" {
		cfg.Dumps.Heroes = dumpHeroes
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if dbPath != "" {
		cfg.Output.DBPath = dbPath
	}
	if validate {
		cfg.Build.Validate = true
	}
	if noAssets {
		cfg.Build.CopyAssets = false
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	p, err := pipeline.New(cfg, pipeline.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	defer p.Close()

	log.Info().Msgf("📂 Items dump: %s", cfg.Dumps.Items)
	log.Info().Msgf("📂 Heroes dump: %s", cfg.Dumps.Heroes)

	rep, err := p.Build(ctx)
	if err != nil {
		return err
	}

	res := rep.Result
	if !res.Written {
		log.Info().Msgf("🔍 Dry run: %d items, %d heroes, nothing written", len(res.Items), len(res.Heroes))
		return nil
	}
	if rep.Validation != nil && len(rep.Validation.Issues) > 0 {
		log.Warn().Msgf("⚠️  %d records failed validation", len(rep.Validation.Issues))
	}
	log.Info().Msgf("✅ Wrote %d items and %d heroes to %s", res.Manifest.Counts.Items, res.Manifest.Counts.Heroes, cfg.Output.Dir)
	if cfg.Build.CopyAssets {
		log.Info().Msgf("🖼️  Assets: %d copied, %d unchanged", rep.Assets.Copied, rep.Assets.Skipped)
	}
	return nil
}
