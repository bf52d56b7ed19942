// Package publish turns hydrated archived messages into outbound publish
// calls. It decides payload shape per media kind; the actual network transport
// lives behind the Sender interface.
package publish

import (
	"context"
	"fmt"

	"github.com/shouya/telegram-undelete/internal/media"
	"github.com/shouya/telegram-undelete/internal/store"
)

// Documents at or above this size cannot be uploaded through the Bot API;
// they degrade to a text note instead.
const oversizeLimit = 50 * 1024 * 1024

// PayloadKind selects the publish call shape.
type PayloadKind int

const (
	PayloadText PayloadKind = iota
	PayloadPhoto
	PayloadDocument
)

// Payload is one rendered outbound publish request.
type Payload struct {
	Kind     PayloadKind
	Body     string // message text for PayloadText, caption otherwise
	FilePath string // attachment on disk, empty for PayloadText
	FileName string // cleaned upload name
	AuthorID int64  // archived author, lets the sender pick a bot identity
	ReplyTo  int64  // translated reply target, 0 = send unlinked
}

// Sender publishes one rendered payload and returns the id the channel
// assigned to the new message.
type Sender interface {
	Publish(ctx context.Context, p Payload) (int64, error)
}

// Resolver locates the local file backing a media record.
type Resolver interface {
	Resolve(m *store.Media) (*media.File, error)
}

// Adapter renders archived messages and dispatches them through a Sender.
type Adapter struct {
	sender   Sender
	resolver Resolver
	botIDs   map[int64]struct{}
}

// NewAdapter creates an adapter. botUserIDs are authors whose messages are
// re-published under their own bot identity, without an author prefix.
func NewAdapter(sender Sender, resolver Resolver, botUserIDs []int64) *Adapter {
	ids := make(map[int64]struct{}, len(botUserIDs))
	for _, id := range botUserIDs {
		ids[id] = struct{}{}
	}
	return &Adapter{sender: sender, resolver: resolver, botIDs: ids}
}

// Dispatch renders msg into one publish call and returns the new message id.
// replyTo is the already-translated reply target (0 = none); it is forwarded
// as-is, so an untranslatable ancestor degrades to an unlinked message rather
// than blocking. Every failure mode (missing file, transport, API) comes back
// as a plain error for the caller's retry bookkeeping.
func (a *Adapter) Dispatch(ctx context.Context, msg *store.Message, replyTo int64) (int64, error) {
	p, err := a.render(msg)
	if err != nil {
		return 0, err
	}
	p.AuthorID = msg.AuthorID
	p.ReplyTo = replyTo
	return a.sender.Publish(ctx, *p)
}

func (a *Adapter) render(msg *store.Message) (*Payload, error) {
	if msg.Media == nil {
		return &Payload{Kind: PayloadText, Body: a.textBody(msg)}, nil
	}

	m := msg.Media
	switch m.Kind {
	case store.MediaPhoto:
		return a.renderPhoto(msg, m)
	case store.MediaDocument:
		return a.renderDocument(msg, m)
	case store.MediaWebpage:
		// Link-preview metadata only, nothing attachable.
		body := msg.Text + "\n" + timestampedCaption(m, msg.Date)
		return &Payload{Kind: PayloadText, Body: body}, nil
	case store.MediaGeo, store.MediaGeoLive, store.MediaContact, store.MediaVenue:
		return &Payload{Kind: PayloadText, Body: timestampedCaption(m, msg.Date)}, nil
	default:
		return nil, fmt.Errorf("unhandled media kind %q", m.Kind)
	}
}

func (a *Adapter) renderPhoto(msg *store.Message, m *store.Media) (*Payload, error) {
	file, err := a.resolver.Resolve(m)
	if err != nil {
		return nil, fmt.Errorf("message %d: %w", msg.ID, err)
	}
	return &Payload{
		Kind:     PayloadPhoto,
		Body:     timestampedCaption(m, msg.Date),
		FilePath: file.Path,
		FileName: media.CleanFilename(file.Path),
	}, nil
}

func (a *Adapter) renderDocument(msg *store.Message, m *store.Media) (*Payload, error) {
	file, err := a.resolver.Resolve(m)
	if err != nil {
		return nil, fmt.Errorf("message %d: %w", msg.ID, err)
	}

	if file.Size >= oversizeLimit {
		body := fmt.Sprintf("(oversized file: %d bytes)\n%s\n%s",
			file.Size, media.CleanFilename(file.Path), timestampedCaption(m, msg.Date))
		return &Payload{Kind: PayloadText, Body: body}, nil
	}

	return &Payload{
		Kind:     PayloadDocument,
		Body:     timestampedCaption(m, msg.Date),
		FilePath: file.Path,
		FileName: media.CleanFilename(file.Path),
	}, nil
}
