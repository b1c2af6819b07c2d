package movies

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

// Service exposes the movie lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Patch(ctx context.Context, id uint, input PatchInput) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]ListItem, error)
	Get(ctx context.Context, id uint) (*Detail, error)
}

type movieRepository interface {
	Create(ctx context.Context, movie *models.Movie) error
	FindByID(ctx context.Context, id uint) (*models.Movie, error)
	FindDetail(ctx context.Context, id uint) (*models.Movie, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter ListFilter) ([]models.Movie, error)
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

// ServiceParams wires the movie service.
type ServiceParams struct {
	Repo         movieRepository
	Tx           txRunner
	Finder       integrity.Finder
	Images       imageGovernor
	Associations associationApplier
	Logger       *logger.Logger
}

type service struct {
	repo   movieRepository
	tx     txRunner
	finder integrity.Finder
	images imageGovernor
	links  associationApplier
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("movie repository required")
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
	characters := input.Characters.Unique()
	genres := input.Genres.Unique()
	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeCharacter, characters); err != nil {
		return nil, err
	}
	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeGenre, genres); err != nil {
		return nil, err
	}
	if input.ImageID != nil {
		if err := s.images.CheckEligible(ctx, *input.ImageID, enums.EntityTypeMovie); err != nil {
			return nil, err
		}
	}

	movie := &models.Movie{
		Title:       input.Title,
		ReleaseDate: input.ReleaseDate,
		Rating:      input.Rating,
		ImageID:     input.ImageID,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, movie); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "image is already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert movie")
		}
		if input.ImageID != nil {
			if err := s.images.Claim(ctx, *input.ImageID, enums.EntityTypeMovie); err != nil {
				return err
			}
		}
		if err := s.links.Apply(ctx, associations.MovieCharacters, movie.ID, enums.AssociationAdd, characters); err != nil {
			return err
		}
		return s.links.Apply(ctx, associations.MovieGenres, movie.ID, enums.AssociationAdd, genres)
	})
	if err != nil {
		return nil, err
	}
	return &CreateResult{ID: movie.ID}, nil
}

func (s *service) Patch(ctx context.Context, id uint, input PatchInput) error {
	if input.Characters != nil && input.CharactersAction == "" {
		return associations.MissingAction(associations.MovieCharacters)
	}
	if input.Genres != nil && input.GenresAction == "" {
		return associations.MissingAction(associations.MovieGenres)
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.ReleaseDate.Set {
		fields["release_date"] = input.ReleaseDate.Value
	}
	if input.Rating.Set {
		fields["rating"] = input.Rating.Value
	}
	imageChanged := input.ImageID.Set && !images.SameImage(current.ImageID, input.ImageID.Value)
	if imageChanged {
		fields["image_id"] = input.ImageID.Value
	}
	if len(fields) == 0 && input.Characters == nil && input.Genres == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "no data to update provided")
	}

	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeCharacter, input.Characters.Unique()); err != nil {
		return err
	}
	if err := integrity.EnsureExist(ctx, s.finder, enums.EntityTypeGenre, input.Genres.Unique()); err != nil {
		return err
	}
	if imageChanged && input.ImageID.Value != nil {
		if err := s.images.CheckEligible(ctx, *input.ImageID.Value, enums.EntityTypeMovie); err != nil {
			return err
		}
	}

	var previous *models.Image
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "image is already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update movie")
		}
		if imageChanged {
			var err error
			previous, err = s.images.Reconcile(ctx, current.ImageID, input.ImageID.Value, enums.EntityTypeMovie)
			if err != nil {
				return err
			}
		}
		if err := s.links.Apply(ctx, associations.MovieCharacters, id, input.CharactersAction, input.Characters); err != nil {
			return err
		}
		return s.links.Apply(ctx, associations.MovieGenres, id, input.GenresAction, input.Genres)
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
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete movie")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.images.RemoveObject(ctx, owned)
	s.logg.Info(s.logg.WithField(ctx, "movie_id", id), "movie deleted")
	return nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ListItem, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list movies")
	}
	items := make([]ListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, listItemFromModel(row))
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Detail, error) {
	movie, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return detailFromModel(movie), nil
}

func (s *service) find(ctx context.Context, id uint) (*models.Movie, error) {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(id, err)
	}
	return movie, nil
}

func (s *service) lookupError(id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "movie with id %d not found", id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: find movie")
}
