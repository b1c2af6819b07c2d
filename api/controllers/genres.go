package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/genres"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type createGenreRequest struct {
	validators.TokenField
	Name    string              `json:"name" validate:"required,min=1,max=150"`
	ImageID *string             `json:"imageId" validate:"omitempty,uuid4"`
	Movies  associations.IDList `json:"movies" validate:"omitempty,dive,gte=1"`
}

type patchGenreRequest struct {
	validators.TokenField
	Name         *string                 `json:"name" validate:"omitempty,min=1,max=150"`
	ImageID      types.Nullable[string]  `json:"imageId" validate:"omitempty,uuid4"`
	Movies       associations.IDList     `json:"movies" validate:"omitempty,dive,gte=1"`
	MoviesAction enums.AssociationAction `json:"moviesAction"`
}

func GenresList(svc genres.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), genres.ListFilter{
			Name: validators.SanitizeString(r.URL.Query().Get("name"), maxNameFilterLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func GenreGet(svc genres.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func GenreCreate(svc genres.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createGenreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := optionalUUID(body.ImageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), genres.CreateInput{
			Name:    body.Name,
			ImageID: imageID,
			Movies:  body.Movies,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func GenrePatch(svc genres.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body patchGenreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := nullableUUID(body.ImageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.Patch(r.Context(), id, genres.PatchInput{
			Name:         body.Name,
			ImageID:      imageID,
			Movies:       body.Movies,
			MoviesAction: body.MoviesAction,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func GenreDelete(svc genres.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
