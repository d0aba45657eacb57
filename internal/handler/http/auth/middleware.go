package auth

import (
	"context"
	"net/http"
	"strings"

	"healthquiz/internal/handler/http/respond"
)

type ctxKey string

const ctxUser ctxKey = "user"

// RequireAdmin rejects requests without a valid admin bearer token with 401
// (missing or bad token) or 403 (wrong role).
func RequireAdmin(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, prefix) {
				recordDenied("missing_token")
				respond.Message(w, http.StatusUnauthorized, "unauthorized: missing bearer token")
				return
			}
			claims, err := issuer.Parse(strings.TrimPrefix(header, prefix))
			if err != nil {
				recordDenied("invalid_token")
				respond.Message(w, http.StatusUnauthorized, "unauthorized: "+err.Error())
				return
			}
			if claims.Role != RoleAdmin {
				recordDenied("wrong_role")
				respond.Message(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, claims.Subject)))
		})
	}
}

// UserFromContext returns the authenticated admin, or "".
func UserFromContext(ctx context.Context) string {
	u, _ := ctx.Value(ctxUser).(string)
	return u
}
