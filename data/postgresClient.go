package data

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	pgConnAttempts   = 10
	pgRetryInterval  = time.Second
	pgMigrationsName = "postgres"
)

func NewPostgresClient(cfg *config.Config) *sqlx.DB {
	db, err := OpenPostgres(cfg)
	if err != nil {
		slog.Error("Postgres open failed", slog.String("host", cfg.Postgres.Host), slog.String("err", err.Error()))
		panic(err)
	}
	slog.Info("Postgres connected and migrated", slog.String("db", cfg.Postgres.DbName))

	return db
}

// OpenPostgres connects with retries, tunes the pool and applies the blob
// table migrations from cfg.Postgres.MigrationDir.
func OpenPostgres(cfg *config.Config) (*sqlx.DB, error) {
	db, err := connectPostgres(postgresDSN(cfg.Postgres))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second)

	if err = migratePostgres(db, cfg.Postgres.MigrationDir); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func postgresDSN(pg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		pg.Host, pg.Port, pg.User, pg.DbName, pg.Password)
}

func connectPostgres(dsn string) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= pgConnAttempts; attempt++ {
		db, err := sqlx.Connect("pgx", dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("Postgres is not ready", slog.Int("attempt", attempt), slog.String("err", err.Error()))
		time.Sleep(pgRetryInterval)
	}
	return nil, fmt.Errorf("connect postgres after %d attempts: %w", pgConnAttempts, lastErr)
}

func migratePostgres(db *sqlx.DB, migrationDir string) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationDir, pgMigrationsName, driver)
	if err != nil {
		return fmt.Errorf("load migrations from %s: %w", migrationDir, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
