package movies

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Repository persists movies.
type Repository struct {
	repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func (r *Repository) Create(ctx context.Context, movie *models.Movie) error {
	return r.DB(ctx).Create(movie).Error
}

// FindByID loads the movie row without relations.
func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Movie, error) {
	var movie models.Movie
	if err := r.DB(ctx).First(&movie, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindDetail loads the movie with its image and related entities.
func (r *Repository) FindDetail(ctx context.Context, id uint) (*models.Movie, error) {
	var movie models.Movie
	err := r.DB(ctx).
		Preload("Image").
		Preload("Characters", func(tx *gorm.DB) *gorm.DB { return tx.Order("characters.id") }).
		Preload("Characters.Image").
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("genres.id") }).
		Preload("Genres.Image").
		First(&movie, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Update writes the given columns. Keys are column names.
func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&models.Movie{}).Where("id = ?", id).Updates(fields).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Movie{}, id).Error
}

// List applies the filter. A title search wins over the genre filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Movie, error) {
	q := r.DB(ctx).Model(&models.Movie{}).Preload("Image")
	switch {
	case filter.Name != "":
		q = q.Where("LOWER(movies.title) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	case filter.GenreID != nil:
		q = q.Joins("JOIN genre_movies ON genre_movies.movie_id = movies.id").
			Where("genre_movies.genre_id = ?", *filter.GenreID)
	}
	switch filter.Order {
	case enums.SortAsc:
		q = q.Order("movies.release_date ASC").Order("movies.id")
	case enums.SortDesc:
		q = q.Order("movies.release_date DESC").Order("movies.id")
	default:
		q = q.Order("movies.id")
	}

	var movies []models.Movie
	if err := q.Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}
