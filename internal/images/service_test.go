package images

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/dbtest"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/storage/storagetest"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestService(t *testing.T, maxBytes int64) (Service, *storagetest.Memory) {
	t.Helper()
	client := dbtest.New(t)
	repo := NewRepository(client.DB())
	store := storagetest.NewMemory()
	gov, err := NewGovernance(GovernanceParams{Repo: repo, Store: store})
	if err != nil {
		t.Fatalf("NewGovernance: %v", err)
	}
	svc, err := NewService(ServiceParams{Repo: repo, Governance: gov, Store: store, MaxUploadBytes: maxBytes})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestUploadStoresUnusedTypedImage(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := context.Background()

	res, err := svc.Upload(ctx, enums.EntityTypeMovie, Upload{FileName: "Toy Story.png", Body: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(res.URL, "http://cdn.test/movies/images/Toy_Story-") || !strings.HasSuffix(res.URL, ".png") {
		t.Fatalf("unexpected url %q", res.URL)
	}

	got, err := svc.Get(ctx, res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Used {
		t.Fatalf("expected fresh upload to be unused")
	}
	if got.EntityType == nil || *got.EntityType != enums.EntityTypeMovie {
		t.Fatalf("expected movie entity type, got %v", got.EntityType)
	}
	key := strings.TrimPrefix(res.URL, "http://cdn.test")
	if !store.Has(key) || store.ContentType(key) != "image/png" {
		t.Fatalf("expected object %s stored as png", key)
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	svc, store := newTestService(t, 0)

	_, err := svc.Upload(context.Background(), enums.EntityTypeGenre, Upload{FileName: "notes.txt", Body: strings.NewReader("plain text")})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.Keys()) != 0 {
		t.Fatalf("expected nothing stored")
	}

	_, err = svc.Upload(context.Background(), enums.EntityTypeGenre, Upload{FileName: "empty.png"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing body, got %v", err)
	}
}

func TestUploadEnforcesSizeLimit(t *testing.T) {
	svc, _ := newTestService(t, 16)

	_, err := svc.Upload(context.Background(), enums.EntityTypeCharacter, Upload{FileName: "big.png", Body: bytes.NewReader(pngBytes)})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadSurfacesStorageFailure(t *testing.T) {
	svc, store := newTestService(t, 0)
	store.PutErr = errors.New("bucket down")

	_, err := svc.Upload(context.Background(), enums.EntityTypeMovie, Upload{FileName: "x.png", Body: bytes.NewReader(pngBytes)})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestReplaceSwapsObject(t *testing.T) {
	svc, store := newTestService(t, 0)
	ctx := context.Background()

	first, err := svc.Upload(ctx, enums.EntityTypeMovie, Upload{FileName: "a.png", Body: bytes.NewReader(pngBytes)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")
	res, err := svc.Replace(ctx, first.ID, Upload{FileName: "b.gif", Body: bytes.NewReader(gif)})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !strings.HasPrefix(res.URL, "http://cdn.test/movies/images/b-") || !strings.HasSuffix(res.URL, ".gif") {
		t.Fatalf("unexpected url %q", res.URL)
	}
	if store.Has(strings.TrimPrefix(first.URL, "http://cdn.test")) {
		t.Fatalf("expected previous object removed")
	}
	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.URL != res.URL {
		t.Fatalf("expected record url %q, got %q", res.URL, got.URL)
	}
}

func TestReplaceAndDeleteMissingImage(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	if _, err := svc.Replace(ctx, uuid.New(), Upload{FileName: "a.png", Body: bytes.NewReader(pngBytes)}); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected not found on replace, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
}

func TestBuildFileName(t *testing.T) {
	name := buildFileName(`C:\uploads\My Poster (final).jpeg`, ".jpg")
	if !strings.HasPrefix(name, "My_Poster_final-") || !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("unexpected name %q", name)
	}
	if got := buildFileName("", ".png"); !strings.HasPrefix(got, "image-") {
		t.Fatalf("expected fallback name, got %q", got)
	}
}
