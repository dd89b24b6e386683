package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chris/academy-booking-core/pkg/api"
)

// UserIDHeader is set by the authorizer in front of the API.
const UserIDHeader = "X-User-ID"

type contextKey struct{}

// Identity rejects requests without a caller and stores the caller's ID in the context.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.Error{Code: "UNAUTHENTICATED", Message: "Missing caller identity"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the caller set by Identity, or "" outside of it.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
