package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"spots-backend/lib/serviceutil"
	"spots-backend/pipeline/archive"
	"spots-backend/pipeline/transform"
)

var (
	filterTerm     *string
	filterMinRooms *int
)

func init() {
	filterTerm = filterCmd.Flags().String("term", "SP26", "Term code of the building document to filter.")
	filterMinRooms = filterCmd.Flags().Int("min-rooms", 4, "Smallest room count a building may have and still be kept.")
	rootCmd.AddCommand(filterCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter [--term <code>] [--min-rooms <n>]",
	Short: "Drops excluded and undersized buildings from the derived document.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if err := runFilter(cmd.Context(), cfg, *filterTerm, *filterMinRooms); err != nil {
			serviceutil.Fatal("filter failed", err)
		}
	},
}

func runFilter(ctx context.Context, cfg Config, term string, minRooms int) error {
	arc := archive.New(cfg.ArchiveDir)

	derived, err := arc.LoadBuildings(archive.StageDerived, term)
	if err != nil {
		return err
	}

	filterCfg := transform.DefaultFilterConfig()
	if minRooms > 0 {
		filterCfg.MinRooms = minRooms
	}

	doc := transform.Filter(derived, filterCfg)
	if err := arc.SaveBuildings(archive.StageFiltered, term, doc); err != nil {
		return err
	}

	slog.Info("filtered buildings",
		"before", len(derived.Buildings),
		"after", len(doc.Buildings),
	)
	renderStats(transform.Summarize(doc))
	return nil
}
