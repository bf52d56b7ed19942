package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a row the caller promised exists is missing:
// an archived message the selector chose, or a ledger entry an outcome is
// recorded against. Both indicate a contract violation upstream.
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite connection to a telegram-export archive. The export's
// Message/User/Media tables are read-only; the MessageIDMigration ledger
// table is owned and written exclusively through the methods in ledger.go.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Verify connection.
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}
