package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/mafia/internal/database"
)

// testDatabaseURL prefers TEST_DATABASE_URL so a developer's DATABASE_URL is
// not wiped by accident.
func testDatabaseURL() string {
	if u := os.Getenv("TEST_DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// SetupTestDB returns a migrated pool with an empty archive. Tests calling it
// are skipped when no database is configured.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := testDatabaseURL()
	if url == "" {
		t.Skip("set TEST_DATABASE_URL or DATABASE_URL to run archive tests")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, url, 2)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.Migrate(ctx, pool, ""); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE match_archive_players, match_archive RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate archive: %v", err)
	}
	return pool
}
