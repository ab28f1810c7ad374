package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader is the header a request id is read from and echoed on.
const RequestIDHeader = "X-Request-Id"

// Inbound ids longer than this are discarded and replaced.
const maxRequestIDLen = 64

type ctxKeyRequestID struct{}

// RequestIDFromContext returns the request id set by RequestIDMiddleware,
// or the empty string outside of a request.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

// RequestIDMiddleware honors a caller-supplied id when it looks sane and
// generates one otherwise. The id is echoed back on the response so the
// operator can correlate logs with curl output.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
