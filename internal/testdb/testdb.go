// AngelaMos | 2026
// testdb.go

// Package testdb opens throwaway in-memory SQLite stores with the production
// migrations applied, and in-process Redis servers.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/dice-roller/internal/config"
	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL: "sqlite::memory:",
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	return db.DB
}

// PostgresEnv names the DSN used by tests that need real row locking.
const PostgresEnv = "DICE_TEST_POSTGRES_URL"

// OpenPostgres connects to the database named by PostgresEnv, skipping the
// test when it is unset. Tables are emptied before and after the test.
func OpenPostgres(t testing.TB) *sqlx.DB {
	t.Helper()

	url := os.Getenv(PostgresEnv)
	if url == "" {
		t.Skipf("%s not set", PostgresEnv)
	}

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}

	truncate := func() {
		_, err := db.DB.Exec(`TRUNCATE dice_rolls, guest_sessions, users`)
		if err != nil {
			t.Errorf("truncate: %v", err)
		}
	}
	truncate()

	t.Cleanup(func() {
		truncate()
		_ = db.Close() //nolint:errcheck // test cleanup
	})

	return db.DB
}

// OpenRedis starts an in-process Redis server and returns a client for it.
func OpenRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close() //nolint:errcheck // test cleanup
	})

	return client, mr
}
