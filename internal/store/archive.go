package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// FetchMessage hydrates the archived message with the given id: text, author,
// timestamp, reply target and optional media row, in one read. Returns
// ErrNotFound if the archive has no such id, which normally means the caller
// and the archive disagree about what exists and should abort the run.
func (db *DB) FetchMessage(id int64) (*Message, error) {
	row := db.QueryRow(`
		SELECT m.ID, u.FirstName, m.FromID, m.ReplyMessageID, m.Date, m.Message,
		       p.ID, p.Type, p.MimeType, p.Name, p.Extra
		FROM Message AS m
		LEFT JOIN User  AS u ON m.FromID  = u.ID
		LEFT JOIN Media AS p ON m.MediaID = p.ID
		WHERE m.ID = ?`,
		id)

	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch message %d: %w", id, err)
	}
	return msg, nil
}

// NextVacantID returns the oldest archived message (by original timestamp)
// that has no ledger entry at all. Service rows (joins, pins, etc.) carry no
// user content and are skipped.
func (db *DB) NextVacantID() (int64, bool, error) {
	var id int64
	err := db.QueryRow(`
		SELECT ID
		FROM Message
		WHERE ID NOT IN (SELECT OldID FROM MessageIDMigration)
		AND ServiceAction IS NULL
		ORDER BY Date ASC
		LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("next vacant: %w", err)
	}
	return id, true, nil
}

// CountEligible returns how many archived messages are candidates for
// re-publishing at all. Used for progress context only.
func (db *DB) CountEligible() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM Message WHERE ServiceAction IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count eligible: %w", err)
	}
	return n, nil
}

// scanMessage is the single place archive columns are mapped onto structs.
// The export schema's nullable columns (unjoined author, absent media) all
// land here.
func scanMessage(row *sql.Row) (*Message, error) {
	var (
		m          Message
		authorName sql.NullString
		authorID   sql.NullInt64
		replyTo    sql.NullInt64
		date       int64
		text       sql.NullString
		mediaID    sql.NullInt64
		mediaKind  sql.NullString
		mimeType   sql.NullString
		mediaName  sql.NullString
		mediaExtra sql.NullString
	)

	err := row.Scan(
		&m.ID, &authorName, &authorID, &replyTo, &date, &text,
		&mediaID, &mediaKind, &mimeType, &mediaName, &mediaExtra,
	)
	if err != nil {
		return nil, err
	}

	m.AuthorName = authorName.String
	m.AuthorID = authorID.Int64
	m.ReplyTo = replyTo.Int64
	m.Date = time.Unix(date, 0)
	m.Text = text.String

	if mediaID.Valid {
		kind, err := ParseMediaKind(mediaKind.String)
		if err != nil {
			return nil, fmt.Errorf("media %d: %w", mediaID.Int64, err)
		}
		m.Media = &Media{
			ID:       mediaID.Int64,
			Kind:     kind,
			MimeType: mimeType.String,
			Name:     mediaName.String,
			Extra:    mediaExtra.String,
		}
	}

	return &m, nil
}
