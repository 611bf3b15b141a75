package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goliatone/go-task-countcache/task"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open connects to the database named by driver and dsn and wraps it in a
// bun.DB with the matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	switch driver {
	case DriverSQLite:
		// every connection to ":memory:" is its own database
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb.Close()
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates the tasks table and the indexes filters run against.
func Migrate(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*task.Task)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}

	indexes := map[string]string{
		"tasks_status_idx":   "status",
		"tasks_priority_idx": "priority",
	}
	for name, column := range indexes {
		if _, err := db.NewCreateIndex().
			Model((*task.Task)(nil)).
			Index(name).
			Column(column).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", name, err)
		}
	}
	return nil
}
