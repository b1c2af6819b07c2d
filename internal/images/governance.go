package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/storage"
)

var (
	ErrImageNotFound     = errors.New("image not found")
	ErrImageAlreadyUsed  = errors.New("image already used")
	ErrImageTypeMismatch = errors.New("image type mismatch")
)

type imageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	SetUsed(ctx context.Context, id uuid.UUID, used bool) (int64, error)
	ClaimUnused(ctx context.Context, id uuid.UUID, entityType enums.EntityType) (int64, error)
	UpdateFile(ctx context.Context, id uuid.UUID, url, folder, fileName string) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// GovernanceParams wires the collaborators image governance needs.
type GovernanceParams struct {
	Repo    imageRepository
	Store   storage.Store
	Metrics *metrics.ImageMetrics
	Logger  *logger.Logger
}

// Governance enforces that an image is owned by at most one entity of the
// type it was uploaded for.
type Governance struct {
	repo    imageRepository
	store   storage.Store
	metrics *metrics.ImageMetrics
	logg    *logger.Logger
}

func NewGovernance(params GovernanceParams) (*Governance, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("image repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Governance{
		repo:    params.Repo,
		store:   params.Store,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

func (g *Governance) find(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	image, err := g.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: find image")
	}
	return image, nil
}

// Find returns the image record or a NotFound error.
func (g *Governance) Find(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	return g.find(ctx, id)
}

func (g *Governance) IsUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	image, err := g.find(ctx, id)
	if err != nil {
		return false, err
	}
	return image.Used, nil
}

func (g *Governance) MatchesType(ctx context.Context, id uuid.UUID, expected enums.EntityType) (bool, error) {
	image, err := g.find(ctx, id)
	if err != nil {
		return false, err
	}
	return image.EntityType != nil && *image.EntityType == expected, nil
}

func (g *Governance) MarkUsed(ctx context.Context, id uuid.UUID, used bool) error {
	affected, err := g.repo.SetUsed(ctx, id, used)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: mark image used")
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

// CheckEligible runs the checks an image must pass before an entity may
// claim it: it exists, it is unused and its type matches.
func (g *Governance) CheckEligible(ctx context.Context, id uuid.UUID, expected enums.EntityType) error {
	image, err := g.find(ctx, id)
	if err != nil {
		return err
	}
	return eligibility(image, expected)
}

// Claim marks the image used for an entity of the expected type. The update
// is conditional so only one of two racing claims succeeds.
func (g *Governance) Claim(ctx context.Context, id uuid.UUID, expected enums.EntityType) error {
	affected, err := g.repo.ClaimUnused(ctx, id, expected)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: claim image")
	}
	if affected == 1 {
		g.metrics.IncClaim(expected.String(), "claimed")
		return nil
	}
	g.metrics.IncClaim(expected.String(), "conflict")
	if err := g.CheckEligible(ctx, id, expected); err != nil {
		return err
	}
	return alreadyUsed(id)
}

// Reconcile moves an entity from current to next inside the caller's
// transaction. next is claimed, the previous record is removed and returned
// so its object can be dropped after commit.
func (g *Governance) Reconcile(ctx context.Context, current, next *uuid.UUID, expected enums.EntityType) (*models.Image, error) {
	if SameImage(current, next) {
		return nil, nil
	}
	if next != nil {
		if err := g.Claim(ctx, *next, expected); err != nil {
			return nil, err
		}
	}
	if current == nil {
		return nil, nil
	}
	previous, err := g.DeleteRecord(ctx, *current)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return previous, nil
}

// SameImage reports whether two optional image ids point at the same image.
func SameImage(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Delete removes the record and then its backing object. A failed object
// removal is logged and counted but does not fail the call.
func (g *Governance) Delete(ctx context.Context, id uuid.UUID) error {
	image, err := g.DeleteRecord(ctx, id)
	if err != nil {
		return err
	}
	g.RemoveObject(ctx, image)
	return nil
}

// DeleteRecord removes only the row and returns what it held so the caller
// can drop the object once its own transaction commits.
func (g *Governance) DeleteRecord(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	image, err := g.find(ctx, id)
	if err != nil {
		return nil, err
	}
	affected, err := g.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete image")
	}
	if affected == 0 {
		return nil, notFound(id)
	}
	return image, nil
}

func (g *Governance) RemoveObject(ctx context.Context, image *models.Image) {
	if image == nil {
		return
	}
	if err := g.store.Delete(ctx, image.Key()); err != nil {
		entityType := "unknown"
		if image.EntityType != nil {
			entityType = image.EntityType.String()
		}
		g.metrics.IncDeleteFailure(entityType)
		logCtx := g.logg.WithFields(ctx, map[string]any{
			"image_id": image.ID.String(),
			"key":      image.Key(),
		})
		g.logg.Warn(logCtx, fmt.Sprintf("image object removal skipped: %v", err))
	}
}

func eligibility(image *models.Image, expected enums.EntityType) error {
	if image.Used {
		return alreadyUsed(image.ID)
	}
	if image.EntityType == nil || *image.EntityType != expected {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrImageTypeMismatch,
			fmt.Sprintf("image with id %s is not a %s image", image.ID, expected))
	}
	return nil
}

func notFound(id uuid.UUID) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrImageNotFound, fmt.Sprintf("image with id %s not found", id))
}

func alreadyUsed(id uuid.UUID) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrImageAlreadyUsed, fmt.Sprintf("image with id %s is already in use", id))
}
