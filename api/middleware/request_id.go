package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// RequestIDHeader carries the catalog request id in both directions.
const RequestIDHeader = "X-Catalog-Request-Id"

// upstreamRequestIDHeader is what a fronting proxy usually sets.
const upstreamRequestIDHeader = "X-Request-Id"

const maxRequestIDLen = 64

const ctxRequestID contextKey = "request_id"

// RequestID tags every request with an id. A well formed id from the client
// or an upstream proxy is reused, anything else is replaced by a fresh uuid.
// The id is echoed back, stored in the context and attached to every log line
// of the request.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			incoming := r.Header.Get(RequestIDHeader)
			if incoming == "" {
				incoming = r.Header.Get(upstreamRequestIDHeader)
			}
			reqID, source := incoming, "client"
			if !validRequestID(incoming) {
				reqID, source = uuid.NewString(), "generated"
			}

			w.Header().Set(RequestIDHeader, reqID)
			ctx := context.WithValue(r.Context(), ctxRequestID, reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
				if incoming != "" && source == "generated" {
					logg.Debug(logg.WithField(ctx, "rejected_request_id_len", len(incoming)), "request_id.replaced")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// validRequestID keeps ids short and free of anything that could break a log
// line or a header: letters, digits, '-', '_' and '.'.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
