package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/angelmondragon/catalog-backend/api/responses"
	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	accessTokenHeader = "x-access-token"
	tokenHeader       = "token"
	// bodies larger than this are not inspected for a token field
	maxTokenBodyBytes = 1 << 20
)

// TokenVerifier validates an access token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*pkgAuth.AccessTokenClaims, error)
}

// Auth requires an access token and seeds the request context with its claims.
// The token is read from the x-access-token header, then the token header,
// then the "token" field of a JSON body.
func Auth(verifier TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, err := tokenFromRequest(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "auth required"))
				return
			}

			claims, err := verifier.VerifyToken(ctx, token)
			if err != nil {
				if pkgerrors.As(err) == nil {
					err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithUser(ctx, claims.UserID, claims.Email)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	if token := strings.TrimSpace(r.Header.Get(accessTokenHeader)); token != "" {
		return token, nil
	}
	if token := strings.TrimSpace(r.Header.Get(tokenHeader)); token != "" {
		return token, nil
	}
	if r.Body == nil || !isJSON(r) {
		return "", nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes+1))
	if err != nil {
		return "", err
	}
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), rest), rest}
	if len(body) > maxTokenBodyBytes {
		return "", nil
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		// the controller reports malformed bodies
		return "", nil
	}
	return strings.TrimSpace(payload.Token), nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
