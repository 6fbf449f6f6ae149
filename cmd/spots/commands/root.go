package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spots-backend/lib/configuration"
	"spots-backend/lib/configutil"
)

var rootCmd = &cobra.Command{
	Use:   "spots",
	Short: "spots is a CLI for scraping, transforming and loading the campus class schedule.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	PortalUrl    string                 `json:"portal_url"`
	ArchiveDir   string                 `json:"archive_dir"`
	DataDir      string                 `json:"data_dir"`
	CampusMapUrl string                 `json:"campus_map_url"`
	BatchSize    int                    `json:"batch_size"`
	Database     configuration.Database `json:"database"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		err = nil
	}
	if err != nil {
		return cfg, err
	}

	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "archive"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg, nil
}
