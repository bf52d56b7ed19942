package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shouya/telegram-undelete/internal/store"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveFindsFileInChatSubdir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "somechat", "document-report.934.pdf"), 128)

	r := NewResolver(dir)
	f, err := r.Resolve(&store.Media{ID: 934, Kind: store.MediaDocument})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if filepath.Base(f.Path) != "document-report.934.pdf" {
		t.Errorf("path = %q", f.Path)
	}
	if f.Size != 128 {
		t.Errorf("size = %d, want 128", f.Size)
	}
}

func TestResolveMatchesKindAndID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "chat", "photo-cat.12.jpg"), 1)
	writeFile(t, filepath.Join(dir, "chat", "document-cat.12.pdf"), 2)
	writeFile(t, filepath.Join(dir, "chat", "photo-dog.13.jpg"), 3)

	r := NewResolver(dir)
	f, err := r.Resolve(&store.Media{ID: 12, Kind: store.MediaPhoto})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if filepath.Base(f.Path) != "photo-cat.12.jpg" {
		t.Errorf("path = %q, want photo-cat.12.jpg", f.Path)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Resolve(&store.Media{ID: 1, Kind: store.MediaPhoto})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCleanFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"document-myfile.934.pdf", "myfile.pdf"},
		{"photo-vacation.12.jpg", "vacation.jpg"},
		{"/media/chat/document-report v2.1001.docx", "report v2.docx"},
		{"geolive-spot.55.dat", "spot.dat"},
	}
	for _, c := range cases {
		if got := CleanFilename(c.in); got != c.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
