package data

import (
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/config"
	sqliteMigrations "github.com/KotFed0t/invest_tracker/data/migrations/sqlite"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
}

func NewSqliteClient(cfg *config.Config) *sqlx.DB {
	db, err := OpenSqlite(cfg.Sqlite.Path)
	if err != nil {
		slog.Error("Sqlite open failed", slog.String("path", cfg.Sqlite.Path), slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("Sqlite connected", slog.String("path", cfg.Sqlite.Path))

	return db
}

// OpenSqlite opens the database at path (":memory:" for a private in-memory
// one) and applies the embedded migrations.
func OpenSqlite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err = db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}

	if err = migrateSqlite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSqlite(db *sqlx.DB) error {
	goose.SetBaseFS(sqliteMigrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db.DB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
