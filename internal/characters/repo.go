package characters

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// Repository persists characters.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, character *models.Character) error {
	return r.DB(ctx).Create(character).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Character, error) {
	var character models.Character
	if err := r.DB(ctx).First(&character, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

// FindDetail loads the character with its image and movies.
func (r *Repository) FindDetail(ctx context.Context, id uint) (*models.Character, error) {
	var character models.Character
	err := r.DB(ctx).
		Preload("Image").
		Preload("Movies", func(tx *gorm.DB) *gorm.DB { return tx.Order("movies.id") }).
		Preload("Movies.Image").
		First(&character, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Character{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Character{}, id).Error
}

// List searches by name, or else applies the age, weight and movie filters together.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Character, error) {
	q := r.DB(ctx).Model(&models.Character{}).Preload("Image")
	if filter.Name != "" {
		q = q.Where("LOWER(characters.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	} else {
		if filter.Age != nil {
			q = q.Where("characters.age = ?", *filter.Age)
		}
		if filter.Weight != nil {
			q = q.Where("characters.weight = ?", *filter.Weight)
		}
		if filter.MovieID != nil {
			q = q.Joins("JOIN character_movies ON character_movies.character_id = characters.id").
				Where("character_movies.movie_id = ?", *filter.MovieID)
		}
	}

	var characters []models.Character
	if err := q.Order("characters.id").Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}
