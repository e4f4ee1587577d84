package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/poiesic/lostfound/core"
)

// UserIDHeader carries the caller's user id.
const UserIDHeader = "X-User-ID"

type userKey struct{}

// AuthMiddleware requires "Authorization: Bearer <token>" when token is non-empty.
// An empty token lets every request through.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser parses the X-User-ID header and stores the id in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody("missing "+UserIDHeader+" header"))
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid "+UserIDHeader+" header"))
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, core.ID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(ctx context.Context) core.ID {
	id, _ := ctx.Value(userKey{}).(core.ID)
	return id
}
