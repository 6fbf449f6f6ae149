package configuration

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Database selects the relational destination of a load. Dsn is the
// driver-specific connection string: a postgres URL, a sqlite file
// path or a libsql URL.
type Database struct {
	Driver string `json:"driver"`
	Dsn    string `json:"dsn"`
}

func (config Database) driverName() (string, error) {
	if config.Driver == "" {
		return "sqlite", nil
	}
	switch config.Driver {
	case "postgres", "sqlite", "libsql":
		return config.Driver, nil
	}
	return "", fmt.Errorf("unknown database driver %q", config.Driver)
}

func (config Database) Postgres() bool {
	return config.Driver == "postgres"
}

func (config Database) OpenDB() (*sql.DB, error) {
	driver, err := config.driverName()
	if err != nil {
		return nil, err
	}
	return sql.Open(driver, config.Dsn)
}
