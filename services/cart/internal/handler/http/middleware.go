package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/pzron/ecom-sub002/pkg/httputil"
	"github.com/pzron/ecom-sub002/pkg/logger"
	"github.com/pzron/ecom-sub002/pkg/middleware"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionIDFromHeader reads X-Session-ID into the request context and
// rejects requests without it.
func SessionIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(middleware.HeaderSessionID))
		if sid == "" {
			httputil.WriteErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "X-Session-ID header is required")
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		ctx = logger.WithSessionID(ctx, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON rejects bodies that declare a non-JSON content type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteErrorCode(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
