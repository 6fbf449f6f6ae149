package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"spots-backend/lib/serviceutil"
	"spots-backend/pipeline/archive"
	"spots-backend/pipeline/portal"
	"spots-backend/pipeline/scrape"
)

var (
	scrapeTerm     *string
	scrapeSubjects *[]string
	scrapeTest     *bool
	scrapeDebug    *bool
	scrapeHeadful  *bool
)

func init() {
	scrapeTerm = scrapeCmd.Flags().String("term", "SP26", "Term code the output files are stamped with (e.g. SP26, FA25).")
	scrapeSubjects = scrapeCmd.Flags().StringSlice("subjects", nil, "Subject codes to scrape instead of the full catalog.")
	scrapeTest = scrapeCmd.Flags().Bool("test", false, "Scrape only the first three subjects.")
	scrapeDebug = scrapeCmd.Flags().Bool("debug", false, "Dump the rendered page source of every subject.")
	scrapeHeadful = scrapeCmd.Flags().Bool("headful", false, "Show the browser window while scraping.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--term <code>] [--subjects <codes>] [--test] [--debug]",
	Short: "Scrapes the class search portal into a subject document.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		err = runScrape(cmd.Context(), cfg, scrapeStageOptions{
			term:     *scrapeTerm,
			subjects: *scrapeSubjects,
			test:     *scrapeTest,
			debug:    *scrapeDebug,
			headful:  *scrapeHeadful,
		})
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
	},
}

type scrapeStageOptions struct {
	term     string
	subjects []string
	test     bool
	debug    bool
	headful  bool
}

func runScrape(ctx context.Context, cfg Config, opts scrapeStageOptions) error {
	driver, cleanup, err := portal.NewDriver(ctx, portal.DriverOptions{
		BaseURL:  cfg.PortalUrl,
		Headless: !opts.headful,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	subjects := opts.subjects
	if len(subjects) == 0 {
		subjects = scrape.DefaultSubjectCodes
	}
	if opts.test && len(subjects) > 3 {
		subjects = subjects[:3]
	}

	debugDir := ""
	if opts.debug {
		debugDir = filepath.Join(cfg.ArchiveDir, "debug")
	}

	t1 := time.Now()
	doc, runErr := scrape.Run(ctx, scrape.Options{
		Portal:   driver,
		Subjects: subjects,
		Term:     opts.term,
		DebugDir: debugDir,
	})
	t2 := time.Now()

	// A partial document is still worth keeping; an interrupted run
	// saves what it has before reporting the interruption.
	if len(doc.Subjects) > 0 {
		arc := archive.New(cfg.ArchiveDir)
		if err := arc.SaveCourses(opts.term, doc); err != nil {
			return err
		}
		slog.Info("saved subject document",
			"path", arc.CoursesPath(opts.term),
			"subjects", len(doc.Subjects),
			"seconds", t2.Sub(t1).Seconds(),
		)
	}

	return runErr
}
