package middleware

import (
	"mime"
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
)

// OnlyAccepts rejects requests whose Content-Type media type is not
// contentType with 406.
func OnlyAccepts(contentType string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != contentType {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeUnsupportedMediaType, "this route only accepts content-type: %s", contentType))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
