package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/apaarauth/backend/src/database"
	"github.com/apaarauth/backend/src/utils"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

var migrationPath = "file://" + filepath.Join(utils.FindProjectRoot(), "migrations")

// SetupTestDB connects to TEST_DB_URL and migrates it up. The test is skipped
// when no test database is configured.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := GetEnv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL is not set")
	}

	db, err := database.Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	migration, err := migrate.New(migrationPath, dsn)
	if err != nil {
		t.Fatalf("failed to create migrate: %v", err)
	}
	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migration up: %v", err)
	}

	return db
}

// CleanupTestDB migrates the test database down and closes the pool.
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_URL")
	migration, err := migrate.New(migrationPath, dsn)
	if err != nil {
		t.Fatalf("failed to create migrate: %v", err)
	}
	if err := migration.Down(); err != nil && err != migrate.ErrNoChange {
		t.Logf("Warning: failed to run migration down: %v", err)
	}

	if err := database.Close(db); err != nil {
		t.Logf("Warning: failed to close test database: %v", err)
	}
}

// SetupTestRedis connects to TEST_REDIS_URL, skipping the test when unset.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	url := GetEnv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse TEST_REDIS_URL: %v", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("connection to test redis failed: %v", err)
	}

	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// SetupMiniRedis starts an in-process Redis server for the test and returns a
// client bound to it. The server is exposed so tests can inspect TTLs and
// move its clock.
func SetupMiniRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}
