package genres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// Repository persists genres.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, genre *models.Genre) error {
	return r.DB(ctx).Create(genre).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Genre, error) {
	var genre models.Genre
	if err := r.DB(ctx).First(&genre, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) FindDetail(ctx context.Context, id uint) (*models.Genre, error) {
	var genre models.Genre
	err := r.DB(ctx).
		Preload("Image").
		Preload("Movies", func(tx *gorm.DB) *gorm.DB { return tx.Order("movies.id") }).
		Preload("Movies.Image").
		First(&genre, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Genre{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Genre{}, id).Error
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Genre, error) {
	q := r.DB(ctx).Model(&models.Genre{}).Preload("Image")
	if filter.Name != "" {
		q = q.Where("LOWER(genres.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	var genres []models.Genre
	if err := q.Order("genres.id").Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}
