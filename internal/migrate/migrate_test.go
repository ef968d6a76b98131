package migrate

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func TestRun_AppliesSchema(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, table := range []string{"snapshots", "snapshot_hours", "frames", "schema_migrations"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Run(db); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := Run(db); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	var applied int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied migrations = %d; want 1", applied)
	}
}

func TestApply_FailedMigrationLeavesNoTrace(t *testing.T) {
	db := openTestDB(t)
	if err := ensureMigrationsTable(db); err != nil {
		t.Fatalf("ensure migrations table: %v", err)
	}

	bad := migration{version: "0042", name: "broken", body: `
		CREATE TABLE halfway (id INTEGER PRIMARY KEY);
		INSERT INTO no_such_table VALUES (1);
	`}
	if err := apply(db, bad); err == nil {
		t.Fatal("apply broken migration: want error, got nil")
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='halfway'`).Scan(&n); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 0 {
		t.Errorf("halfway table survived a failed migration")
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE version = '0042'`).Scan(&n); err != nil {
		t.Fatalf("query schema_migrations: %v", err)
	}
	if n != 0 {
		t.Errorf("failed migration was recorded as applied")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{in: "0001_schema.sql", version: "0001", name: "schema", ok: true},
		{in: "0012_add_frames.sql", version: "0012", name: "add_frames", ok: true},
		{in: "schema.sql", ok: false},
		{in: "001_short.sql", ok: false},
		{in: "0001_schema.txt", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v; want %v", ok, tt.ok)
			}
			if ok && (version != tt.version || name != tt.name) {
				t.Errorf("got (%q, %q); want (%q, %q)", version, name, tt.version, tt.name)
			}
		})
	}
}
