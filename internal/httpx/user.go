package httpx

import (
	"context"
	"net/http"
	"strconv"
)

// HeaderUserID is set by the gateway after it authenticated the caller.
const HeaderUserID = "X-User-Id"

type ctxKey int

const userKey ctxKey = iota

// RequireUser rejects requests without a positive numeric X-User-Id.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, id)))
	})
}

func userID(ctx context.Context) int64 {
	id, _ := ctx.Value(userKey).(int64)
	return id
}
