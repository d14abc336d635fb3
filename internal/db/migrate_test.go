package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyMigrationsIsRerunnable(t *testing.T) {
	sqdb, err := OpenSQLite(filepath.Join(t.TempDir(), "portal.db"), 1, 1, time.Minute)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqdb.Close() })

	dir := filepath.Join("..", "..", "migrations")
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(sqdb, dir); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i+1, err)
		}
	}

	for table, col := range map[string]string{
		"users":         "access_card_id",
		"vehicles":      "plate",
		"complaints":    "author_name",
		"move_in_cards": "vehicles_json",
		"notices":       "views",
	} {
		if !hasColumn(t, sqdb, table, col) {
			t.Fatalf("expected %s.%s to exist after migration", table, col)
		}
	}
	if !hasColumn(t, sqdb, "move_in_cards", "employee_id") {
		t.Fatalf("expected move_in_cards.employee_id to exist after migration")
	}
}

func TestApplyMigrationsEmptyDir(t *testing.T) {
	sqdb, err := OpenSQLite(filepath.Join(t.TempDir(), "portal.db"), 1, 1, time.Minute)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqdb.Close() })
	if err := ApplyMigrations(sqdb, t.TempDir()); err == nil {
		t.Fatalf("expected error for empty migrations dir")
	}
}

func hasColumn(t *testing.T, sqdb *sql.DB, tableName, colName string) bool {
	t.Helper()
	rows, err := sqdb.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		t.Fatalf("table_info %s: %v", tableName, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			t.Fatalf("scan table_info %s: %v", tableName, err)
		}
		if name == colName {
			return true
		}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate table_info %s: %v", tableName, err)
	}
	return false
}
