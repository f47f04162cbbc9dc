package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"codecoach/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

//go:embed schema.sql
var schemaSQL string

// Connect opens and pings the store selected by cfg.DBDriver.
func Connect(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return Open(config.DriverPostgres, cfg.DBConnStr)
	case config.DriverSQLite:
		return Open(config.DriverSQLite, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("database.Connect: unsupported driver %q", cfg.DBDriver)
	}
}

func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database.Open: %w", err)
	}

	if driver == config.DriverSQLite {
		// Every connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db, dsn); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database.Open: ping %s: %w", driver, err)
	}
	return db, nil
}

func applyPragmas(db *sql.DB, dsn string) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if !strings.Contains(dsn, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("database.applyPragmas: %s: %w", p, err)
		}
	}
	return nil
}

// EnsureSchema creates the tables the service needs. The DDL is shared by
// PostgreSQL and SQLite and is safe to apply repeatedly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.EnsureSchema: %w", err)
		}
	}
	return nil
}
