package models

import (
	"path"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Image is an uploaded picture that at most one catalog entity may own.
type Image struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	URL         string            `gorm:"column:url;not null"`
	LocalFolder string            `gorm:"column:local_folder;not null"`
	FileName    string            `gorm:"column:file_name;not null"`
	Used        bool              `gorm:"column:used;not null;default:false"`
	EntityType  *enums.EntityType `gorm:"column:entity_type"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (Image) TableName() string { return "images" }

// BeforeCreate assigns a v4 id so sqlite and postgres behave the same.
func (i *Image) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Key is the storage locator of the backing object.
func (i Image) Key() string {
	return path.Join(i.LocalFolder, i.FileName)
}
