package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/associations"
	"github.com/angelmondragon/catalog-backend/internal/characters"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type createCharacterRequest struct {
	validators.TokenField
	Name    string              `json:"name" validate:"required,min=1,max=100"`
	Age     *int                `json:"age" validate:"omitempty,gte=0"`
	Weight  *float64            `json:"weight" validate:"omitempty,gte=0"`
	Story   *string             `json:"story"`
	ImageID *string             `json:"imageId" validate:"omitempty,uuid4"`
	Movies  associations.IDList `json:"movies" validate:"omitempty,dive,gte=1"`
}

func (r createCharacterRequest) toCreateInput() (characters.CreateInput, error) {
	imageID, err := optionalUUID(r.ImageID)
	if err != nil {
		return characters.CreateInput{}, err
	}
	return characters.CreateInput{
		Name:    r.Name,
		Age:     r.Age,
		Weight:  r.Weight,
		Story:   r.Story,
		ImageID: imageID,
		Movies:  r.Movies,
	}, nil
}

type patchCharacterRequest struct {
	validators.TokenField
	Name         *string                 `json:"name" validate:"omitempty,min=1,max=100"`
	Age          types.Nullable[int]     `json:"age" validate:"omitempty,gte=0"`
	Weight       types.Nullable[float64] `json:"weight" validate:"omitempty,gte=0"`
	Story        types.Nullable[string]  `json:"story"`
	ImageID      types.Nullable[string]  `json:"imageId" validate:"omitempty,uuid4"`
	Movies       associations.IDList     `json:"movies" validate:"omitempty,dive,gte=1"`
	MoviesAction enums.AssociationAction `json:"moviesAction"`
}

func (r patchCharacterRequest) toPatchInput() (characters.PatchInput, error) {
	imageID, err := nullableUUID(r.ImageID)
	if err != nil {
		return characters.PatchInput{}, err
	}
	return characters.PatchInput{
		Name:         r.Name,
		Age:          r.Age,
		Weight:       r.Weight,
		Story:        r.Story,
		ImageID:      imageID,
		Movies:       r.Movies,
		MoviesAction: r.MoviesAction,
	}, nil
}

// CharactersList handles GET /characters?name=&age=&weight=&movies=.
func CharactersList(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		age, err := validators.OptionalQueryInt(r, "age", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		weight, err := validators.OptionalQueryFloat(r, "weight", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		movieID, err := validators.OptionalQueryID(r, "movies")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), characters.ListFilter{
			Name:    validators.SanitizeString(r.URL.Query().Get("name"), maxNameFilterLength),
			Age:     age,
			Weight:  weight,
			MovieID: movieID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func CharacterGet(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
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

func CharacterCreate(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createCharacterRequest
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

func CharacterPatch(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body patchCharacterRequest
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

func CharacterDelete(svc characters.Service, logg *logger.Logger) http.HandlerFunc {
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
