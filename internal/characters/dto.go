package characters

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type CreateInput struct {
	Name    string
	Age     *int
	Weight  *float64
	Story   *string
	ImageID *uuid.UUID
	Movies  associations.IDList
}

type PatchInput struct {
	Name         *string
	Age          types.Nullable[int]
	Weight       types.Nullable[float64]
	Story        types.Nullable[string]
	ImageID      types.Nullable[uuid.UUID]
	Movies       associations.IDList
	MoviesAction enums.AssociationAction
}

// ListFilter narrows List. Name, when set, replaces the other filters.
type ListFilter struct {
	Name    string
	Age     *int
	Weight  *float64
	MovieID *uint
}

type CreateResult struct {
	ID uint `json:"id"`
}

type ListItem struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Image *images.Thumbnail `json:"image"`
}

type MovieRef struct {
	ID    uint              `json:"id"`
	Title string            `json:"title"`
	Image *images.Thumbnail `json:"image"`
}

type Detail struct {
	ID     uint          `json:"id"`
	Name   string        `json:"name"`
	Age    *int          `json:"age"`
	Weight *float64      `json:"weight"`
	Story  *string       `json:"story"`
	Image  *images.Owned `json:"image"`
	Movies []MovieRef    `json:"movies"`
}

func detailFromModel(m *models.Character) *Detail {
	detail := &Detail{
		ID:     m.ID,
		Name:   m.Name,
		Age:    m.Age,
		Weight: m.Weight,
		Story:  m.Story,
		Image:  images.OwnedOf(m.Image),
		Movies: make([]MovieRef, 0, len(m.Movies)),
	}
	for _, movie := range m.Movies {
		detail.Movies = append(detail.Movies, MovieRef{ID: movie.ID, Title: movie.Title, Image: images.ThumbnailOf(movie.Image)})
	}
	return detail
}
