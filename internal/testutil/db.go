//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/repair-desk/internal/adapter/postgres"
)

// SetupTestDB connects to the test database and applies the embedded migrations.
// It skips the test if TEST_DATABASE_URL is not set.
// Every call shares one database, so tests must create their own rows and
// never assume a table is empty.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migrate test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

// UniqueEmail returns an address that will not collide across test runs.
func UniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.test"
}
