package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/storage"
)

func TestPutDeleteRoundTrip(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := New(root, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	key := "/movies/images/poster-abc.png"
	if err := store.Put(ctx, key, strings.NewReader("png-bytes"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "movies", "images", "poster-abc.png"))
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("unexpected file contents %q err=%v", data, err)
	}

	if got := store.URL(key); got != "http://localhost:8080/static/movies/images/poster-abc.png" {
		t.Fatalf("unexpected url %q", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestResolveStaysInsideRoot(t *testing.T) {
	t.Parallel()

	store, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "/"} {
		if _, err := store.resolve(key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
	full, err := store.resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(full, store.Root()+string(filepath.Separator)) {
		t.Fatalf("key escaped root: %q", full)
	}
}
