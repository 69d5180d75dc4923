package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vntrieu/mafia/migrations"
)

// Migrate runs the goose migrations against the pool. migrationsDir points
// at a directory on disk; when it is empty or missing, the migrations
// compiled into the binary are used.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) error {
	// goose needs a *sql.DB; open one over the pool's connection config.
	db := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer db.Close()

	var fsys fs.FS = migrations.FS
	if migrationsDir != "" {
		if st, err := os.Stat(migrationsDir); err == nil && st.IsDir() {
			fsys = os.DirFS(migrationsDir)
		}
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	slog.Info("migrations applied", "tag", "database", "version", version)
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "tag", "database")
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "tag", "database")
	os.Exit(1)
}
