package images

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/internal/repo"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Repository exposes image metadata persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an image repository bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create persists an image record.
func (r *Repository) Create(ctx context.Context, image *models.Image) error {
	return r.DB(ctx).Create(image).Error
}

// FindByID retrieves an image record by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var image models.Image
	if err := r.DB(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// SetUsed flips the used flag and reports how many rows changed.
func (r *Repository) SetUsed(ctx context.Context, id uuid.UUID, used bool) (int64, error) {
	res := r.DB(ctx).Model(&models.Image{}).Where("id = ?", id).Update("used", used)
	return res.RowsAffected, res.Error
}

// ClaimUnused marks the image used only while it is still unused and of the
// expected type. Zero affected rows means another request won or the image
// never qualified.
func (r *Repository) ClaimUnused(ctx context.Context, id uuid.UUID, entityType enums.EntityType) (int64, error) {
	res := r.DB(ctx).Model(&models.Image{}).
		Where("id = ? AND used = ? AND entity_type = ?", id, false, entityType).
		Update("used", true)
	return res.RowsAffected, res.Error
}

// UpdateFile points the record at a new backing object.
func (r *Repository) UpdateFile(ctx context.Context, id uuid.UUID, url, folder, fileName string) error {
	return r.DB(ctx).Model(&models.Image{}).Where("id = ?", id).Updates(map[string]any{
		"url":          url,
		"local_folder": folder,
		"file_name":    fileName,
	}).Error
}

// Delete removes an image record and reports how many rows went.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Image{})
	return res.RowsAffected, res.Error
}
