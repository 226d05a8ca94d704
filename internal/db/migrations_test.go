package db_test

import (
	"path/filepath"
	"testing"

	"github.com/saadjs/kcal-sync/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kcal-sync.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	version, err := db.SchemaVersion(sqldb)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected schema version 1, got %d", version)
	}

	for _, table := range []string{"app_config", "recent_products", "goal_overrides"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}
}

func TestGoalOverridesRejectUnknownNutrient(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "kcal-sync.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`INSERT INTO goal_overrides(nutrient, value) VALUES('sodium_mg', 10)`); err == nil {
		t.Fatalf("expected check constraint to reject unknown nutrient")
	}
	if _, err := sqldb.Exec(`INSERT INTO goal_overrides(nutrient, value) VALUES('calories', -1)`); err == nil {
		t.Fatalf("expected check constraint to reject negative goal")
	}
}
