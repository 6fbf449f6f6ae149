package commands

import (
	"github.com/spf13/cobra"

	"spots-backend/lib/serviceutil"
)

var (
	runTerm      *string
	runTest      *bool
	runSkipTerms *bool
	runDryRun    *bool
)

func init() {
	runTerm = runCmd.Flags().String("term", "SP26", "Term code for the whole pipeline run.")
	runTest = runCmd.Flags().Bool("test", false, "Scrape only the first three subjects.")
	runSkipTerms = runCmd.Flags().Bool("skip-terms", false, "Skip loading the academic calendar.")
	runDryRun = runCmd.Flags().Bool("dry-run", false, "Run every stage but write nothing to the database.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--term <code>] [--test] [--skip-terms] [--dry-run]",
	Short: "Runs the whole pipeline: scrape, transform, filter, enrich, load.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		ctx := cmd.Context()
		term := *runTerm

		err = runScrape(ctx, cfg, scrapeStageOptions{term: term, test: *runTest})
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		if err := runTransform(ctx, cfg, term); err != nil {
			serviceutil.Fatal("transform failed", err)
		}
		if err := runFilter(ctx, cfg, term, 0); err != nil {
			serviceutil.Fatal("filter failed", err)
		}
		if err := runEnrich(ctx, cfg, term, false); err != nil {
			serviceutil.Fatal("enrich failed", err)
		}
		if err := runLoad(ctx, cfg, term, *runSkipTerms, *runDryRun); err != nil {
			serviceutil.Fatal("load failed", err)
		}
	},
}
