package movies

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

// CreateInput holds a validated movie payload.
type CreateInput struct {
	Title       string
	ReleaseDate *string
	Rating      *float64
	ImageID     *uuid.UUID
	Characters  associations.IDList
	Genres      associations.IDList
}

// PatchInput carries only the fields the caller sent.
type PatchInput struct {
	Title            *string
	ReleaseDate      types.Nullable[string]
	Rating           types.Nullable[float64]
	ImageID          types.Nullable[uuid.UUID]
	Characters       associations.IDList
	CharactersAction enums.AssociationAction
	Genres           associations.IDList
	GenresAction     enums.AssociationAction
}

// ListFilter narrows List. Name takes precedence over GenreID.
type ListFilter struct {
	Name    string
	GenreID *uint
	Order   enums.SortOrder
}

type CreateResult struct {
	ID uint `json:"id"`
}

type ListItem struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	ReleaseDate *string           `json:"releaseDate"`
	Image       *images.Thumbnail `json:"image"`
}

type CharacterRef struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Image *images.Thumbnail `json:"image"`
}

type GenreRef struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Image *images.Thumbnail `json:"image"`
}

// Detail is the expanded movie view.
type Detail struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	ReleaseDate *string        `json:"releaseDate"`
	Rating      *float64       `json:"rating"`
	Image       *images.Owned  `json:"image"`
	Characters  []CharacterRef `json:"characters"`
	Genres      []GenreRef     `json:"genres"`
}

func listItemFromModel(m models.Movie) ListItem {
	return ListItem{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		Image:       images.ThumbnailOf(m.Image),
	}
}

func detailFromModel(m *models.Movie) *Detail {
	detail := &Detail{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseDate: m.ReleaseDate,
		Rating:      m.Rating,
		Image:       images.OwnedOf(m.Image),
		Characters:  make([]CharacterRef, 0, len(m.Characters)),
		Genres:      make([]GenreRef, 0, len(m.Genres)),
	}
	for _, c := range m.Characters {
		detail.Characters = append(detail.Characters, CharacterRef{ID: c.ID, Name: c.Name, Image: images.ThumbnailOf(c.Image)})
	}
	for _, g := range m.Genres {
		detail.Genres = append(detail.Genres, GenreRef{ID: g.ID, Name: g.Name, Image: images.ThumbnailOf(g.Image)})
	}
	return detail
}
