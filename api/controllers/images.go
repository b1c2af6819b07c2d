package controllers

import (
	"errors"
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/images"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	imageFormField = "image"
	// room for multipart boundaries and headers around the file
	multipartOverheadBytes = 1 << 20
	multipartMemoryBytes   = 8 << 20
)

// ImageUpload handles POST /images/<collection> with a single "image" file.
func ImageUpload(svc images.Service, entityType enums.EntityType, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, cleanup, err := readImageUpload(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		result, err := svc.Upload(r.Context(), entityType, upload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ImageReplace handles PUT /images/{id}.
func ImageReplace(svc images.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		upload, cleanup, err := readImageUpload(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		result, err := svc.Replace(r.Context(), id, upload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ImageGet(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		image, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, image)
	}
}

func ImageDelete(svc images.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "id")
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

func readImageUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (images.Upload, func(), error) {
	noop := func() {}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverheadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return images.Upload{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image is too large")
		}
		return images.Upload{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no image uploaded")
	}
	cleanup := func() {
		_ = r.MultipartForm.RemoveAll()
	}

	headers := r.MultipartForm.File[imageFormField]
	switch {
	case len(headers) == 0:
		cleanup()
		return images.Upload{}, noop, pkgerrors.New(pkgerrors.CodeValidation, "no image uploaded")
	case len(headers) > 1:
		cleanup()
		return images.Upload{}, noop, pkgerrors.New(pkgerrors.CodeValidation, "only one image can be uploaded")
	}

	file, err := headers[0].Open()
	if err != nil {
		cleanup()
		return images.Upload{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no image uploaded")
	}
	return images.Upload{FileName: headers[0].Filename, Body: file}, func() {
		_ = file.Close()
		cleanup()
	}, nil
}
