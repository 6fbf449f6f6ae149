package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"spots-backend/lib/configuration"
	"spots-backend/lib/serviceutil"
	"spots-backend/pipeline/archive"
	"spots-backend/pipeline/load"
	"spots-backend/pipeline/schedule"
)

var (
	loadTerm      *string
	loadSkipTerms *bool
	loadDryRun    *bool
)

func init() {
	loadTerm = loadCmd.Flags().String("term", "SP26", "Term code of the enriched document to load.")
	loadSkipTerms = loadCmd.Flags().Bool("skip-terms", false, "Skip loading the academic calendar.")
	loadDryRun = loadCmd.Flags().Bool("dry-run", false, "Validate and count only, write nothing.")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load [--term <code>] [--skip-terms] [--dry-run]",
	Short: "Loads the enriched document into the relational database.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if err := runLoad(cmd.Context(), cfg, *loadTerm, *loadSkipTerms, *loadDryRun); err != nil {
			serviceutil.Fatal("load failed", err)
		}
	},
}

func openStore(cfg configuration.Database) (load.Store, func(), error) {
	db, err := cfg.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { db.Close() }

	if cfg.Postgres() {
		return load.NewPostgresStore(db), cleanup, nil
	}
	return load.NewSQLiteStore(db), cleanup, nil
}

func runLoad(ctx context.Context, cfg Config, term string, skipTerms, dryRun bool) error {
	arc := archive.New(cfg.ArchiveDir)

	doc, err := arc.LoadBuildings(archive.StageEnriched, term)
	if err != nil {
		return err
	}

	var terms []schedule.AcademicTerm
	if !skipTerms {
		calendarPath := filepath.Join(cfg.DataDir, "academic_calendar.json")
		data, err := os.ReadFile(calendarPath)
		if os.IsNotExist(err) {
			slog.Info("no academic calendar, skipping terms", "path", calendarPath)
		} else if err != nil {
			return err
		} else if err := json.Unmarshal(data, &terms); err != nil {
			return err
		}
	}

	store, cleanup, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := load.Run(ctx, store, doc, terms, load.Config{
		BatchSize: cfg.BatchSize,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}

	if result.DryRun {
		slog.Info("dry run complete, nothing written")
	}
	slog.Info("load complete",
		"buildings", result.Buildings,
		"rooms", result.Rooms,
		"schedules", result.Schedules,
		"terms", result.Terms,
	)
	return nil
}
