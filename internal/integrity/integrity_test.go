package integrity

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

type stubFinder struct {
	existing map[uint]bool
	calls    []any
	err      error
}

func (s *stubFinder) Exists(_ context.Context, table string, id any) (bool, error) {
	s.calls = append(s.calls, id)
	if table != "movies" {
		return false, errors.New("unexpected table " + table)
	}
	if s.err != nil {
		return false, s.err
	}
	return s.existing[id.(uint)], nil
}

func TestEnsureExistStopsAtFirstMissing(t *testing.T) {
	finder := &stubFinder{existing: map[uint]bool{1: true, 3: true}}

	err := EnsureExist(context.Background(), finder, enums.EntityTypeMovie, []uint{1, 7, 3, 9})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if msg := pkgerrors.As(err).Message(); msg != "movie with id 7 not found" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(finder.calls) != 2 {
		t.Fatalf("expected sequential short circuit after 2 lookups, got %d", len(finder.calls))
	}
}

func TestEnsureExistAllPresent(t *testing.T) {
	finder := &stubFinder{existing: map[uint]bool{1: true, 2: true}}
	if err := EnsureExist(context.Background(), finder, enums.EntityTypeMovie, []uint{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := EnsureExist(context.Background(), finder, enums.EntityTypeMovie, nil); err != nil {
		t.Fatalf("empty list should pass: %v", err)
	}
}

func TestEnsureExistWrapsStoreFailure(t *testing.T) {
	finder := &stubFinder{err: errors.New("connection reset")}
	err := EnsureExist(context.Background(), finder, enums.EntityTypeMovie, []uint{1})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
