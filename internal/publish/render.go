package publish

import (
	"time"

	"github.com/shouya/telegram-undelete/internal/store"
)

// textBody renders a plain text message: author prefix (unless the author is
// one of our own bot identities), original text, and the original timestamp
// on its own line. Empty text becomes an attribution-only body.
func (a *Adapter) textBody(msg *store.Message) string {
	content := "(from " + msg.AuthorName + ")"
	if msg.Text != "" {
		content = a.authorPrefix(msg) + msg.Text
	}
	return content + "\n" + formatDate(msg.Date)
}

func (a *Adapter) authorPrefix(msg *store.Message) string {
	if _, ok := a.botIDs[msg.AuthorID]; ok {
		return ""
	}
	return msg.AuthorName + ":\n"
}

// caption renders the media description: a "(kind)" marker for kinds whose
// meaning isn't carried by the file itself, plus the display name if any.
func caption(m *store.Media) string {
	var prefix string
	switch m.Kind {
	case store.MediaGeo, store.MediaGeoLive, store.MediaContact, store.MediaVenue:
		prefix = "(" + string(m.Kind) + ")"
	}
	if m.Name != "" {
		return prefix + "\n" + m.Name
	}
	return prefix
}

// timestampedCaption appends the original timestamp. Photos carry only the
// timestamp; their content speaks for itself.
func timestampedCaption(m *store.Media, t time.Time) string {
	if m.Kind == store.MediaPhoto {
		return formatDate(t)
	}
	return caption(m) + "\n" + formatDate(t)
}

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}
