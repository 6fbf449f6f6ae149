package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spots-backend/lib/restyutil"
	"spots-backend/lib/serviceutil"
	"spots-backend/pipeline/archive"
	"spots-backend/pipeline/enrich"
	"spots-backend/pipeline/schedule"
)

var (
	enrichTerm  *string
	enrichDebug *bool
)

func init() {
	enrichTerm = enrichCmd.Flags().String("term", "SP26", "Term code of the filtered document to enrich.")
	enrichDebug = enrichCmd.Flags().Bool("debug", false, "Dump campus map requests and responses.")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [--term <code>]",
	Short: "Adds opening hours and coordinates to the filtered document.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if err := runEnrich(cmd.Context(), cfg, *enrichTerm, *enrichDebug); err != nil {
			serviceutil.Fatal("enrich failed", err)
		}
	},
}

func runEnrich(ctx context.Context, cfg Config, term string, debug bool) error {
	arc := archive.New(cfg.ArchiveDir)

	doc, err := arc.LoadBuildings(archive.StageFiltered, term)
	if err != nil {
		return err
	}

	var hoursTable enrich.HoursTable
	hoursData, err := os.ReadFile(filepath.Join(cfg.DataDir, "building_hours.json"))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(hoursData, &hoursTable); err != nil {
		return err
	}

	hoursReport, err := enrich.ApplyHours(ctx, &doc, hoursTable)
	if err != nil {
		return err
	}
	// The hours merge updates the filtered document in place so a
	// re-run picks up hours-table edits without a fresh scrape.
	if err := arc.SaveBuildings(archive.StageFiltered, term, doc); err != nil {
		return err
	}
	slog.Info("merged building hours",
		"updated", hoursReport.Updated,
		"missing", len(hoursReport.Missing),
	)
	for _, code := range hoursReport.Missing {
		slog.Warn("building has no hours entry", "building", code)
	}

	var coords map[string]schedule.Coordinates
	if cfg.CampusMapUrl != "" {
		var debugOut restyutil.InstrumentOutput
		if debug {
			debugOut = restyutil.NewFilesystemOutput(filepath.Join(cfg.ArchiveDir, "debug", "campus_map"))
		}
		coords, err = enrich.FetchGeoJSON(ctx, cfg.CampusMapUrl, debugOut)
	} else {
		coords, err = enrich.LoadGeoJSON(filepath.Join(cfg.DataDir, "ucf_buildings.geojson"))
	}
	if err != nil {
		return err
	}

	coordsReport := enrich.ApplyCoordinates(ctx, &doc, coords)
	if err := arc.SaveBuildings(archive.StageEnriched, term, doc); err != nil {
		return err
	}
	slog.Info("added building coordinates",
		"updated", coordsReport.Updated,
		"missing", len(coordsReport.Missing),
	)

	return nil
}
