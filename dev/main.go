package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "spots-backend/dev/env"
	"spots-backend/pipeline/load"

	_ "modernc.org/sqlite"
)

const localConfig = `{
	// local overrides for the dev environment
	archive_dir: "dev/.state/archive",
	database: {
		driver: "sqlite",
		dsn: "dev/.state/spots.db",
	},
}
`

func createDb(recreate bool) error {
	dbpath, err := devenv.ResolvePath(filepath.Join("<dev_state>", "spots.db"))
	if err != nil {
		return err
	}

	if recreate {
		err = os.Remove(dbpath)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if _, err := os.Stat(dbpath); err == nil {
		fmt.Println("database already created at", dbpath)
		return nil
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(load.Schema)
	if err != nil {
		return err
	}

	fmt.Println("created database at", dbpath)
	return nil
}

func createLocalConfig() error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("the dev environment must be created inside the repository")
	}

	path := filepath.Join(root, "config.local.json5")
	if _, err := os.Stat(path); err == nil {
		fmt.Println("local config already exists at", path)
		return nil
	}

	err = os.WriteFile(path, []byte(localConfig), 0644)
	if err != nil {
		return err
	}
	fmt.Println("created local config at", path)
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := createDb(*recreate)
	if err == nil {
		err = createLocalConfig()
	}
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
