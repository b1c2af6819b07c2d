package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/movies"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

const maxNameFilterLength = 150

type createMovieRequest struct {
	validators.TokenField
	Title       string              `json:"title" validate:"required,min=1,max=150"`
	ReleaseDate *string             `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Rating      *float64            `json:"rating" validate:"omitempty,gte=1,lte=5"`
	ImageID     *string             `json:"imageId" validate:"omitempty,uuid4"`
	Characters  associations.IDList `json:"characters" validate:"omitempty,dive,gte=1"`
	Genres      associations.IDList `json:"genres" validate:"omitempty,dive,gte=1"`
}

func (r createMovieRequest) toCreateInput() (movies.CreateInput, error) {
	imageID, err := optionalUUID(r.ImageID)
	if err != nil {
		return movies.CreateInput{}, err
	}
	return movies.CreateInput{
		Title:       r.Title,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.Rating,
		ImageID:     imageID,
		Characters:  r.Characters,
		Genres:      r.Genres,
	}, nil
}

type patchMovieRequest struct {
	validators.TokenField
	Title            *string                 `json:"title" validate:"omitempty,min=1,max=150"`
	ReleaseDate      types.Nullable[string]  `json:"releaseDate" validate:"omitempty,datetime=2006-01-02"`
	Rating           types.Nullable[float64] `json:"rating" validate:"omitempty,gte=1,lte=5"`
	ImageID          types.Nullable[string]  `json:"imageId" validate:"omitempty,uuid4"`
	Characters       associations.IDList     `json:"characters" validate:"omitempty,dive,gte=1"`
	CharactersAction enums.AssociationAction `json:"charactersAction"`
	Genres           associations.IDList     `json:"genres" validate:"omitempty,dive,gte=1"`
	GenresAction     enums.AssociationAction `json:"genresAction"`
}

func (r patchMovieRequest) toPatchInput() (movies.PatchInput, error) {
	imageID, err := nullableUUID(r.ImageID)
	if err != nil {
		return movies.PatchInput{}, err
	}
	return movies.PatchInput{
		Title:            r.Title,
		ReleaseDate:      r.ReleaseDate,
		Rating:           r.Rating,
		ImageID:          imageID,
		Characters:       r.Characters,
		CharactersAction: r.CharactersAction,
		Genres:           r.Genres,
		GenresAction:     r.GenresAction,
	}, nil
}

// MoviesList handles GET /movies?name=&genre=&order=.
func MoviesList(svc movies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		genreID, err := validators.OptionalQueryID(r, "genre")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := enums.ParseSortOrder(r.URL.Query().Get("order"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order must be one of ASC, DESC"))
			return
		}

		items, err := svc.List(r.Context(), movies.ListFilter{
			Name:    validators.SanitizeString(r.URL.Query().Get("name"), maxNameFilterLength),
			GenreID: genreID,
			Order:   order,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func MovieGet(svc movies.Service, logg *logger.Logger) http.HandlerFunc {
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

func MovieCreate(svc movies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createMovieRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func MoviePatch(svc movies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body patchMovieRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toPatchInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Patch(r.Context(), id, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func MovieDelete(svc movies.Service, logg *logger.Logger) http.HandlerFunc {
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
