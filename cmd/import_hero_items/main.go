package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/meur/stadiumforge/internal/cli"
	"github.com/meur/stadiumforge/internal/pipeline"
)

var (
	globals  cli.Globals
	outDir   string
	dryRun   bool
	noRoster bool
)

var rootCmd = &cobra.Command{
	Use:   "import_hero_items <manifest.csv> [images-root]",
	Short: "Import hero items from a scraped CSV manifest",
	Long: `Reads a hero,page_title,item_name,saved_path manifest and folds its
rows into items.json. When images-root is given, each saved_path is copied
under the public items asset dir, one folder per hero.

Afterwards heroes.json is rebuilt around the items: heroes named only by
items or by a hero folder under images-root are added, each hero's items
are regrouped, and the global stat icons are written to powers.json.`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         runImport,
}

func init() {
	globals.Register(rootCmd)
	rootCmd.Flags().StringVar(&outDir, "out", "", "Output directory")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Import without writing anything")
	rootCmd.Flags().BoolVar(&noRoster, "no-roster", false, "Leave heroes.json and powers.json untouched")
}

func main() {
	cli.Execute(rootCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := globals.Load()
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	var imagesRoot string
	if len(args) == 2 {
		imagesRoot = args[1]
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	p, err := pipeline.New(cfg, pipeline.Options{DryRun: dryRun})
	if err != nil {
		return err
	}
	defer p.Close()

	rep, err := p.ImportHeroItems(ctx, args[0], imagesRoot)
	if err != nil {
		return err
	}

	stats := rep.Import
	log.Info().Msgf("📥 %d rows: %d items added, %d updated, %d images copied", stats.Rows, stats.Added, stats.Updated, stats.Copied)
	if rep.Result.Written {
		log.Info().Msgf("✅ Wrote %d items to %s", len(rep.Result.Items), cfg.Output.Dir)
	}
	if noRoster {
		return nil
	}

	roster, err := p.DeriveRoster(ctx, imagesRoot)
	if err != nil {
		return err
	}
	log.Info().Msgf("🦸 Roster: %d heroes (%d new), %d stat powers", len(roster.Result.Heroes), roster.RosterAdded, len(roster.Result.StatPowers))
	return nil
}
