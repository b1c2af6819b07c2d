package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/storage"
)

const defaultMaxUploadBytes = 3 * 1024 * 1024

var allowedMimeTypes = []string{"image/gif", "image/jpeg", "image/png"}

// Upload is a single file received from a multipart form.
type Upload struct {
	FileName string
	Body     io.Reader
}

// UploadResult is returned after a new image has been stored.
type UploadResult struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// ReplaceResult is returned after an image file has been swapped.
type ReplaceResult struct {
	URL string `json:"url"`
}

// ImageDTO is the public view of an image record.
type ImageDTO struct {
	ID         uuid.UUID         `json:"id"`
	URL        string            `json:"url"`
	Used       bool              `json:"used"`
	EntityType *enums.EntityType `json:"entityType"`
}

// Service exposes image upload semantics.
type Service interface {
	Upload(ctx context.Context, entityType enums.EntityType, file Upload) (*UploadResult, error)
	Replace(ctx context.Context, id uuid.UUID, file Upload) (*ReplaceResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ImageDTO, error)
}

// ServiceParams wires the upload service.
type ServiceParams struct {
	Repo           imageRepository
	Governance     *Governance
	Store          storage.Store
	Logger         *logger.Logger
	MaxUploadBytes int64
}

type service struct {
	repo       imageRepository
	governance *Governance
	store      storage.Store
	logg       *logger.Logger
	maxBytes   int64
}

// NewService constructs an image service backed by the provided repository and store.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if params.Governance == nil {
		return nil, fmt.Errorf("image governance required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	maxBytes := params.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:       params.Repo,
		governance: params.Governance,
		store:      params.Store,
		logg:       logg,
		maxBytes:   maxBytes,
	}, nil
}

func (s *service) Upload(ctx context.Context, entityType enums.EntityType, file Upload) (*UploadResult, error) {
	if !entityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid image type")
	}
	folder := entityType.Folder()
	fileName, err := s.put(ctx, folder, file)
	if err != nil {
		return nil, err
	}
	key := path.Join(folder, fileName)

	et := entityType
	image := &models.Image{
		URL:         s.store.URL(key),
		LocalFolder: folder,
		FileName:    fileName,
		EntityType:  &et,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", key), fmt.Sprintf("orphaned upload: %v", delErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert image")
	}
	return &UploadResult{ID: image.ID, URL: image.URL}, nil
}

func (s *service) Replace(ctx context.Context, id uuid.UUID, file Upload) (*ReplaceResult, error) {
	current, err := s.governance.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	fileName, err := s.put(ctx, current.LocalFolder, file)
	if err != nil {
		return nil, err
	}
	key := path.Join(current.LocalFolder, fileName)
	url := s.store.URL(key)
	if err := s.repo.UpdateFile(ctx, id, url, current.LocalFolder, fileName); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "key", key), fmt.Sprintf("orphaned upload: %v", delErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update image")
	}
	s.governance.RemoveObject(ctx, current)
	return &ReplaceResult{URL: url}, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.governance.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ImageDTO, error) {
	image, err := s.governance.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ImageDTO{
		ID:         image.ID,
		URL:        image.URL,
		Used:       image.Used,
		EntityType: image.EntityType,
	}, nil
}

// put validates the upload and writes it under folder, returning the stored file name.
func (s *service) put(ctx context.Context, folder string, file Upload) (string, error) {
	if file.Body == nil {
		return "", errNoImage()
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxBytes+1))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no image uploaded")
	}
	if len(data) == 0 {
		return "", errNoImage()
	}
	if int64(len(data)) > s.maxBytes {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "image exceeds the %d bytes limit", s.maxBytes)
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedMimeTypes...) {
		return "", errNoImage()
	}

	fileName := buildFileName(file.FileName, mtype.Extension())
	key := path.Join(folder, fileName)
	if err := s.store.Put(ctx, key, bytes.NewReader(data), mtype.String()); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storage: put image")
	}
	return fileName, nil
}

func errNoImage() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "no image uploaded")
}

// buildFileName turns "My Poster.png" into "My_Poster-<random>.png".
func buildFileName(original, ext string) string {
	base := path.Base(strings.TrimSpace(strings.ReplaceAll(original, "\\", "/")))
	base = strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "-_.")
	if name == "" || name == "." {
		name = "image"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return name + "-" + suffix + ext
}
