package storage_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dshills/booksearch-mcp/internal/storage"
)

func openRawDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open(storage.DriverName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApplyMigrations(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	if err := storage.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	var version string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&version)
	if err != nil {
		t.Fatalf("Failed to query schema version: %v", err)
	}
	if version != storage.CurrentSchemaVersion {
		t.Errorf("Expected schema version %s, got %s", storage.CurrentSchemaVersion, version)
	}

	for _, table := range []string{"corpora", "books", "lines"} {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err == sql.ErrNoRows {
			t.Errorf("Table %s does not exist", table)
		} else if err != nil {
			t.Errorf("Failed to check table %s: %v", table, err)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	if err := storage.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("First migration failed: %v", err)
	}
	if err := storage.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("Second migration failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("Failed to count versions: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 version record, got %d", count)
	}
}

func TestRollbackMigration(t *testing.T) {
	db := openRawDB(t)
	ctx := context.Background()

	if err := storage.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	if err := storage.RollbackMigration(ctx, db); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='books'").Scan(&name)
	if err != sql.ErrNoRows {
		t.Errorf("Expected books table to be dropped, got err=%v name=%q", err, name)
	}

	// A rolled back database migrates cleanly again
	if err := storage.ApplyMigrations(ctx, db); err != nil {
		t.Fatalf("Re-applying migrations failed: %v", err)
	}
}

func TestRollbackMigration_Empty(t *testing.T) {
	db := openRawDB(t)

	if err := storage.RollbackMigration(context.Background(), db); err == nil {
		t.Error("Expected error rolling back a fresh database")
	}
}
