package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var n int
	err := database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('items', 'claims', 'payments', 'notifications', 'profiles')`,
	).Scan(&n)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 core tables, got %d", n)
	}
}

func TestItemIncentivesMutuallyExclusive(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO users (email, password_hash) VALUES ('a@example.com', 'x')`)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}

	_, err = database.Exec(
		`INSERT INTO items (kind, title, description, category, location, event_date, reporter_id, reward, commission)
		 VALUES ('lost', 't', 'd', 'c', 'l', '2025-01-01', 1, 10, 20)`,
	)
	if err == nil {
		t.Error("expected check constraint to reject reward and commission together")
	}
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pool.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	first, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	defer first.Close()
	second, err := database.Conn(ctx)
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var foreignKeys, busyTimeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
			t.Fatalf("conn %d foreign_keys: %v", i, err)
		}
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if foreignKeys != 1 || busyTimeout != 5000 {
			t.Errorf("conn %d: foreign_keys=%d busy_timeout=%d", i, foreignKeys, busyTimeout)
		}
	}
}

func TestForeignKeysEnforcedOnFileDatabase(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(4)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	_, err = database.Exec(
		`INSERT INTO items (kind, title, description, category, location, event_date, reporter_id)
		 VALUES ('lost', 't', 'd', 'c', 'l', '2025-01-01', 999)`,
	)
	if err == nil {
		t.Error("expected insert with unknown reporter to violate the foreign key")
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"app.db", "app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"},
		{"file:app.db?mode=rwc", "file:app.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"},
	}
	for _, tt := range tests {
		if got := DSN(tt.path); got != tt.want {
			t.Errorf("DSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
