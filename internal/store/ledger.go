package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordAttempt ensures a ledger row exists for oldID before the publish call
// goes out. A fresh row starts pending with zero retries; an existing row only
// has its UpdatedAt refreshed. Crashing mid-publish therefore leaves a visible
// pending marker instead of silent amnesia.
func (db *DB) RecordAttempt(oldID int64) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO MessageIDMigration (OldID, Retries, UpdatedAt)
		VALUES (?, 0, ?)
		ON CONFLICT(OldID) DO UPDATE SET UpdatedAt = excluded.UpdatedAt`,
		oldID, now)
	if err != nil {
		return fmt.Errorf("record attempt %d: %w", oldID, err)
	}
	return nil
}

// RecordSuccess maps oldID to the channel-assigned newID. Success is terminal:
// a NewID already present is kept, not overwritten. Returns ErrNotFound if no
// attempt was ever recorded for oldID, which callers must treat as fatal.
func (db *DB) RecordSuccess(oldID, newID int64) error {
	now := time.Now().UnixMilli()
	res, err := db.Exec(`
		UPDATE MessageIDMigration
		SET NewID = ?, UpdatedAt = ?
		WHERE OldID = ? AND NewID IS NULL`,
		newID, now, oldID)
	if err != nil {
		return fmt.Errorf("record success %d: %w", oldID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record success %d: %w", oldID, err)
	}
	if n == 0 {
		return db.requireEntry(oldID)
	}
	return nil
}

// RecordFailure bumps the retry count for a pending oldID. A row that already
// carries a NewID is left untouched. Returns ErrNotFound if no attempt was
// ever recorded for oldID.
func (db *DB) RecordFailure(oldID int64) error {
	now := time.Now().UnixMilli()
	res, err := db.Exec(`
		UPDATE MessageIDMigration
		SET Retries = Retries + 1, UpdatedAt = ?
		WHERE OldID = ? AND NewID IS NULL`,
		now, oldID)
	if err != nil {
		return fmt.Errorf("record failure %d: %w", oldID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record failure %d: %w", oldID, err)
	}
	if n == 0 {
		return db.requireEntry(oldID)
	}
	return nil
}

// requireEntry distinguishes "row exists but is already terminal" (fine)
// from "row was never created" (contract violation).
func (db *DB) requireEntry(oldID int64) error {
	var one int
	err := db.QueryRow(`SELECT 1 FROM MessageIDMigration WHERE OldID = ?`, oldID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ledger entry %d: %w", oldID, ErrNotFound)
	}
	return err
}

// ResolveNewID translates an old message id into the id its re-published copy
// received, if it has one yet.
func (db *DB) ResolveNewID(oldID int64) (int64, bool, error) {
	var newID int64
	err := db.QueryRow(`
		SELECT NewID
		FROM MessageIDMigration
		WHERE OldID = ? AND NewID IS NOT NULL`,
		oldID).Scan(&newID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve new id %d: %w", oldID, err)
	}
	return newID, true, nil
}

// NextPendingID returns the oldest attempted-but-unpublished message still
// under the retry ceiling, ties broken by fewest retries. Rows past the
// ceiling never come back; they stay in the ledger for inspection.
func (db *DB) NextPendingID(ceiling int) (int64, bool, error) {
	var oldID int64
	err := db.QueryRow(`
		SELECT OldID
		FROM MessageIDMigration
		WHERE NewID IS NULL AND Retries <= ?
		ORDER BY UpdatedAt ASC, Retries ASC
		LIMIT 1`,
		ceiling).Scan(&oldID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("next pending: %w", err)
	}
	return oldID, true, nil
}

// GetLedgerEntry returns the entry for oldID, or nil if none exists.
func (db *DB) GetLedgerEntry(oldID int64) (*LedgerEntry, error) {
	row := db.QueryRow(`
		SELECT OldID, NewID, Retries, UpdatedAt
		FROM MessageIDMigration
		WHERE OldID = ?`,
		oldID)
	e, err := scanLedgerEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry %d: %w", oldID, err)
	}
	return e, nil
}

// PermanentFailures lists entries past the retry ceiling, oldest first.
func (db *DB) PermanentFailures(ceiling int) ([]LedgerEntry, error) {
	rows, err := db.Query(`
		SELECT OldID, NewID, Retries, UpdatedAt
		FROM MessageIDMigration
		WHERE NewID IS NULL AND Retries > ?
		ORDER BY UpdatedAt ASC`,
		ceiling)
	if err != nil {
		return nil, fmt.Errorf("permanent failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanLedgerEntry(scan func(...any) error) (*LedgerEntry, error) {
	var (
		e         LedgerEntry
		newID     sql.NullInt64
		updatedAt sql.NullInt64
	)
	if err := scan(&e.OldID, &newID, &e.Retries, &updatedAt); err != nil {
		return nil, err
	}
	if newID.Valid {
		e.NewID = &newID.Int64
	}
	e.UpdatedAt = updatedAt.Int64
	return &e, nil
}
