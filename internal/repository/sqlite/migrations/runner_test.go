package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/msomdec/blog-api/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"6f1c3c1e-8d7a-4c1a-9f57-2f4f0d8f1a11", "test@example.com", "Test User", "hash123", 1, 1,
	)
	if err != nil {
		t.Fatalf("insert into users: %v", err)
	}

	// Posts must reference an existing author.
	_, err = db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"0d0c6c55-3a8c-4b43-8f1c-5b0b3f0e2e22", "00000000-0000-0000-0000-000000000000", "t", "c", 1, 1,
	)
	if err == nil {
		t.Fatal("expected foreign key violation for unknown author")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 migration records, got %d", count)
	}
}

func TestRunFS_AppliesInVersionOrder(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"010_add_column.sql": {Data: []byte("ALTER TABLE notes ADD COLUMN body TEXT;")},
		"002_create.sql":     {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err != nil {
		t.Fatalf("RunFS: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO notes (id, body) VALUES (1, 'x')"); err != nil {
		t.Fatalf("expected both migrations applied: %v", err)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if version != 10 {
		t.Fatalf("expected version 10, got %d", version)
	}
}

func TestRunFS_FailedMigrationRollsBack(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE b (id INTEGER); NOT VALID SQL;")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error from broken migration")
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'b'").Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 0 {
		t.Fatal("expected table b to be rolled back")
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the first migration recorded, got %d", n)
	}
}

func TestRunFS_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no version", fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}},
		{"zero version", fstest.MapFS{"000_init.sql": {Data: []byte("SELECT 1;")}}},
		{"duplicate version", fstest.MapFS{
			"001_a.sql":  {Data: []byte("SELECT 1;")},
			"0001_b.sql": {Data: []byte("SELECT 1;")},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := openMemoryDB(t)
			if err := migrations.RunFS(context.Background(), db, tc.fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
