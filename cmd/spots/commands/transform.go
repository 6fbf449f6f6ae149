package commands

import (
	"context"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"spots-backend/lib/serviceutil"
	"spots-backend/pipeline/archive"
	"spots-backend/pipeline/transform"
)

var transformTerm *string

func init() {
	transformTerm = transformCmd.Flags().String("term", "SP26", "Term code of the subject document to transform.")
	rootCmd.AddCommand(transformCmd)
}

var transformCmd = &cobra.Command{
	Use:   "transform [--term <code>]",
	Short: "Reindexes the subject document by building and room.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if err := runTransform(cmd.Context(), cfg, *transformTerm); err != nil {
			serviceutil.Fatal("transform failed", err)
		}
	},
}

func runTransform(ctx context.Context, cfg Config, term string) error {
	arc := archive.New(cfg.ArchiveDir)

	courses, err := arc.LoadCourses(term)
	if err != nil {
		return err
	}

	doc := transform.ToBuildings(courses)
	if err := arc.SaveBuildings(archive.StageDerived, term, doc); err != nil {
		return err
	}

	renderStats(transform.Summarize(doc))
	return nil
}

func renderStats(stats transform.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Building", "Rooms"})
	for _, b := range stats.TopBuildings {
		t.AppendRow(table.Row{b.Code, b.Rooms})
	}
	t.AppendFooter(table.Row{"total", stats.Rooms})
	t.Render()

	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.AppendRow(table.Row{"buildings", stats.Buildings})
	summary.AppendRow(table.Row{"rooms", stats.Rooms})
	summary.AppendRow(table.Row{"sections", stats.TotalSections})
	summary.Render()
}
