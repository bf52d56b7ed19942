package store

import (
	"fmt"
	"time"
)

// MediaKind is the closed set of attachment kinds a telegram-export archive
// records. Anything else in the Media table is a hydration error.
type MediaKind string

const (
	MediaPhoto    MediaKind = "photo"
	MediaDocument MediaKind = "document"
	MediaWebpage  MediaKind = "webpage"
	MediaGeo      MediaKind = "geo"
	MediaGeoLive  MediaKind = "geolive"
	MediaContact  MediaKind = "contact"
	MediaVenue    MediaKind = "venue"
)

// MediaKinds returns all known kinds, in archive spelling.
func MediaKinds() []MediaKind {
	return []MediaKind{
		MediaPhoto, MediaDocument, MediaWebpage,
		MediaGeo, MediaGeoLive, MediaContact, MediaVenue,
	}
}

// ParseMediaKind maps an archive Type column value onto the enum.
func ParseMediaKind(s string) (MediaKind, error) {
	for _, k := range MediaKinds() {
		if s == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// Media is the attachment metadata row joined onto an archived message.
type Media struct {
	ID       int64
	Kind     MediaKind
	MimeType string
	Name     string
	Extra    string
}

// Message is a fully hydrated archived message. Read-only: the archive is an
// immutable snapshot and nothing here is ever written back.
type Message struct {
	ID         int64
	AuthorName string
	AuthorID   int64
	Date       time.Time
	ReplyTo    int64 // old id of the replied-to message, 0 = not a reply
	Text       string
	Media      *Media
}

// LedgerEntry is one row of the MessageIDMigration table: the durable record
// of what happened to a single archived message.
type LedgerEntry struct {
	OldID     int64
	NewID     *int64 // nil while pending or permanently failed
	Retries   int
	UpdatedAt int64 // unix millis of the last transition
}
