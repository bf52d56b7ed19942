// Package media locates exported attachment files on disk and normalizes
// their names. telegram-export writes attachments under one subdirectory per
// chat as "<kind>-<stem>.<mediaID>.<ext>".
package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouya/telegram-undelete/internal/store"
)

// ErrNotFound is returned when no file on disk matches a media record.
// Callers treat this as a publish failure, not as permission to send the
// message without its attachment.
var ErrNotFound = errors.New("media file not found")

// File is a resolved attachment on disk.
type File struct {
	Path string
	Size int64
}

// Resolver finds the local file backing a media record.
type Resolver struct {
	dir string
}

// NewResolver creates a resolver rooted at the export's media directory.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve globs for the file backing the given media record and stats it.
func (r *Resolver) Resolve(m *store.Media) (*File, error) {
	pattern := filepath.Join(r.dir, "*", fmt.Sprintf("%s-*.%d.*", m.Kind, m.ID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("media %d (%s): %w", m.ID, m.Kind, ErrNotFound)
	}

	// Multiple matches can occur when the same media id appears in several
	// chat subdirectories; any copy is the same bytes, take the last.
	path := matches[len(matches)-1]
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	return &File{Path: path, Size: info.Size()}, nil
}

// CleanFilename strips the export's kind marker and embedded media id from a
// stored attachment path: "document-myfile.934.pdf" becomes "myfile.pdf".
func CleanFilename(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// Drop the numeric media id segment before the real extension.
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	for _, kind := range store.MediaKinds() {
		if after, ok := strings.CutPrefix(stem, string(kind)+"-"); ok {
			stem = after
			break
		}
	}
	return stem + ext
}
