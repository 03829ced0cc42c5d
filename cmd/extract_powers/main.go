package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/cli"
	"github.com/meur/stadiumforge/internal/pipeline"
)

var (
	globals cli.Globals
	outDir  string
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "extract_powers [wikitext-dir]",
	Short: "Refresh hero powers in heroes.json from a folder of hero pages",
	Long: `Parses every hero page in the folder and replaces the powers of the
matching heroes in heroes.json. Heroes not seen before are added without
items. items.json is left untouched. The folder defaults to the configured
heroes dump.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	globals.Register(rootCmd)
	rootCmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and merge without writing anything")
}

func main() {
	cli.Execute(rootCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	wikiDir := cfg.Dumps.Heroes
	if len(args) == 1 {
		wikiDir = args[0]
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	p, err := pipeline.New(cfg, pipeline.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	defer p.Close()

	rep, err := p.RefreshPowers(ctx, wikiDir)
	if err != nil {
		return err
	}

	stats := rep.Result.Stats
	log.Info().Msgf("🦸 Parsed %d heroes: %d updated, %d added, %d powers", stats.Parsed, stats.Updated, stats.Added, stats.TotalPowers)
	if rep.Result.Written {
		log.Info().Msgf("✅ Heroes written to %s", cfg.Output.Dir)
	}
	return nil
}
