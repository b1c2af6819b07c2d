package characters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/internal/integrity"
	"github.com/angelmondragon/catalog-backend/pkg/db"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// Service exposes the character lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Patch(ctx context.Context, id uint, input PatchInput) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]ListItem, error)
	Get(ctx context.Context, id uint) (*Detail, error)
}

type characterRepository interface {
	Create(ctx context.Context, character *models.Character) error
	FindByID(ctx context.Context, id uint) (*models.Character, error)
	FindDetail(ctx context.Context, id uint) (*models.Character, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]models.Character, error)
}

type imageGovernor interface {
	CheckEligible(ctx context.Context, id uuid.UUID, expected enums.EntityType) error
	Claim(ctx context.Context, id uuid.UUID, expected enums.EntityType) error
	Reconcile(ctx context.Context, current, next *uuid.UUID, expected enums.EntityType) (*models.Image, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) (*models.Image, error)
	RemoveObject(ctx context.Context, image *models.Image)
}

type associationApplier interface {
	Apply(ctx context.Context, rel associations.Relation, ownerID uint, action enums.AssociationAction, ids associations.IDList) error
}

type txRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ServiceParams wires the character service.
type ServiceParams struct {
	Repo         characterRepository
	Tx           txRunner
	Finder       integrity.Finder
	Images       imageGovernor
	Associations associationApplier
	Logger       *logger.Logger
}

type service struct {
	repo   characterRepository
	tx     txRunner
	finder integrity.Finder
	images imageGovernor
	links  associationApplier
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("character repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Finder == nil {
		return nil, fmt.Errorf("integrity finder required")
	}
	if params.Images == nil {
		return nil, fmt.Errorf("image governance required")
	}
	if params.Associations == nil {
		return nil, fmt.Errorf("association manager required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		finder: params.Finder,
		images: params.Images,
		links:  params.Associations,
		logg:   logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	movies := input.Movies.Unique()
	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeMovie, movies); err != nil {
		return nil, err
	}
	if input.ImageID != nil {
		if err := s.images.CheckEligible(ctx, *input.ImageID, enums.EntityTypeCharacter); err != nil {
			return nil, err
		}
	}

	character := &models.Character{
		Name:    input.Name,
		Age:     input.Age,
		Weight:  input.Weight,
		Story:   input.Story,
		ImageID: input.ImageID,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, character); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "image is already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert character")
		}
		if input.ImageID != nil {
			if err := s.images.Claim(ctx, *input.ImageID, enums.EntityTypeCharacter); err != nil {
				return err
			}
		}
		return s.links.Apply(ctx, associations.CharacterMovies, character.ID, enums.AssociationAdd, movies)
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{ID: character.ID}, nil
}

func (s *service) Patch(ctx context.Context, id uint, input PatchInput) error {
	if input.Movies != nil && input.MoviesAction == "" {
		return associations.MissingAction(associations.CharacterMovies)
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if input.Name != nil {
		fields["name"] = *input.Name
	}
	if input.Age.Set {
		fields["age"] = input.Age.Value
	}
	if input.Weight.Set {
		fields["weight"] = input.Weight.Value
	}
	if input.Story.Set {
		fields["story"] = input.Story.Value
	}
	imageChanged := input.ImageID.Set && !images.SameImage(current.ImageID, input.ImageID.Value)
	if imageChanged {
		fields["image_id"] = input.ImageID.Value
	}
	if len(fields) == 0 && input.Movies == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "no data to update provided")
	}

	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeMovie, input.Movies.Unique()); err != nil {
		return err
	}
	if imageChanged && input.ImageID.Value != nil {
		if err := s.images.CheckEligible(ctx, *input.ImageID.Value, enums.EntityTypeCharacter); err != nil {
			return err
		}
	}

	var previous *models.Image
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "image is already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update character")
		}
		if imageChanged {
			var err error
			previous, err = s.images.Reconcile(ctx, current.ImageID, input.ImageID.Value, enums.EntityTypeCharacter)
			if err != nil {
				return err
			}
		}
		return s.links.Apply(ctx, associations.CharacterMovies, id, input.MoviesAction, input.Movies)
	})
	if err != nil {
		return err
	}
	s.images.RemoveObject(ctx, previous)
	return nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	var owned *models.Image
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if current.ImageID != nil {
			var err error
			owned, err = s.images.DeleteRecord(ctx, *current.ImageID)
			if err != nil && !errors.Is(err, images.ErrImageNotFound) {
				return err
			}
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete character")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.images.RemoveObject(ctx, owned)
	s.logg.Info(s.logg.WithField(ctx, "character_id", id), "character deleted")
	return nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ListItem, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list characters")
	}
	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ListItem{ID: row.ID, Name: row.Name, Image: images.ThumbnailOf(row.Image)})
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Detail, error) {
	character, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return detailFromModel(character), nil
}

func (s *service) find(ctx context.Context, id uint) (*models.Character, error) {
	character, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return character, nil
}

func (s *service) lookupError(id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "character with id %d not found", id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: find character")
}
