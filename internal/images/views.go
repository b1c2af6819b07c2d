package images

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// Thumbnail is how related entities expose their picture.
type Thumbnail struct {
	URL string `json:"url"`
}

// Owned is the picture of the entity being viewed.
type Owned struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

func ThumbnailOf(image *models.Image) *Thumbnail {
	if image == nil {
		return nil
	}
	return &Thumbnail{URL: image.URL}
}

func OwnedOf(image *models.Image) *Owned {
	if image == nil {
		return nil
	}
	return &Owned{ID: image.ID, URL: image.URL}
}
