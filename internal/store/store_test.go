package store

import (
	"path/filepath"
	"testing"
)

// testDB opens a fresh database with the ledger migrated and empty
// telegram-export archive tables created, mirroring the schema this tool
// reads in production.
func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mustExec(t, db, `CREATE TABLE Message (
		ID INTEGER PRIMARY KEY,
		FromID INTEGER,
		MediaID INTEGER,
		ReplyMessageID INTEGER,
		Date INTEGER,
		Message TEXT,
		ServiceAction TEXT
	)`)
	mustExec(t, db, `CREATE TABLE User (ID INTEGER PRIMARY KEY, FirstName TEXT)`)
	mustExec(t, db, `CREATE TABLE Media (ID INTEGER PRIMARY KEY, Type TEXT, MimeType TEXT, Name TEXT, Extra TEXT)`)

	return db
}

func mustExec(t *testing.T, db *DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func insertMessage(t *testing.T, db *DB, id, fromID, date int64, text string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO Message (ID, FromID, Date, Message) VALUES (?, ?, ?, ?)`,
		id, fromID, date, text)
}

func insertUser(t *testing.T, db *DB, id int64, name string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO User (ID, FirstName) VALUES (?, ?)`, id, name)
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate; a second run must be a no-op.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 1 {
		t.Errorf("version = %d, want 1", result.Version)
	}
}

func TestMigrateCreatesLedgerTable(t *testing.T) {
	db := testDB(t)

	mustExec(t, db, `INSERT INTO MessageIDMigration (OldID, UpdatedAt) VALUES (1, 1000)`)

	// OldID is unique: a second row for the same message must be rejected.
	if _, err := db.Exec(`INSERT INTO MessageIDMigration (OldID, UpdatedAt) VALUES (1, 2000)`); err == nil {
		t.Error("duplicate OldID insert should fail")
	}
}

func TestParseMediaKind(t *testing.T) {
	for _, k := range MediaKinds() {
		got, err := ParseMediaKind(string(k))
		if err != nil {
			t.Errorf("ParseMediaKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Errorf("ParseMediaKind(%q) = %q", k, got)
		}
	}

	if _, err := ParseMediaKind("sticker"); err == nil {
		t.Error("ParseMediaKind(\"sticker\") expected error")
	}
}
