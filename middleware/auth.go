package middleware

import (
	"context"
	"net/http"
	"strings"

	"assethub/utils"
)

// AuthMiddleware validates the Bearer token and stashes the caller's
// identity in the request context for the handlers. Every request
// under /api goes through it; the websocket endpoint lives on the root
// router and never reaches here, so upgrade requests get no special
// treatment.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), "email", utils.NormalizeEmail(claims.Email))
		ctx = context.WithValue(ctx, "name", claims.Name)
		ctx = context.WithValue(ctx, "role", claims.Role)
		ctx = context.WithValue(ctx, "companyName", claims.CompanyName)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole wraps a handler and refuses callers whose token carries a
// different role.
func RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerRole, _ := r.Context().Value("role").(string)
		if callerRole != role {
			utils.RespondWithError(w, http.StatusForbidden, "Insufficient role")
			return
		}
		next(w, r)
	}
}
