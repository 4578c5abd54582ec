package database

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestMigrate(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	var ver int
	if err := db.read.QueryRowContext(ctx, "PRAGMA user_version").Scan(&ver); err != nil {
		t.Fatalf("failed to read user_version: %v", err)
	}
	if ver != 2 {
		t.Errorf("user_version expected 2, got %d", ver)
	}

	// Reopening an up to date database must not apply anything
	pending, err := pendingMigrations(ver)
	if err != nil {
		t.Fatalf("pendingMigrations failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending migrations, got %d", len(pending))
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("ping failed: %v", err)
	}
}

func TestPendingMigrations(t *testing.T) {
	tests := []struct {
		name    string
		current int
		want    []int
	}{
		{"fresh database", 0, []int{1, 2}},
		{"first applied", 1, []int{2}},
		{"all applied", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pendingMigrations(tt.current)
			if err != nil {
				t.Fatalf("pendingMigrations failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d migrations, got %d", len(tt.want), len(got))
			}
			for i, m := range got {
				if m.version != tt.want[i] {
					t.Errorf("migration %d expected version %d, got %d", i, tt.want[i], m.version)
				}
			}
		})
	}
}
