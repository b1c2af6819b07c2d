package genres

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type CreateInput struct {
	Name    string
	ImageID *uuid.UUID
	Movies  associations.IDList
}

type PatchInput struct {
	Name         *string
	ImageID      types.Nullable[uuid.UUID]
	Movies       associations.IDList
	MoviesAction enums.AssociationAction
}

type ListFilter struct {
	Name string
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
	Image  *images.Owned `json:"image"`
	Movies []MovieRef    `json:"movies"`
}
