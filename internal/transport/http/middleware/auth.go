package middleware

import (
	"context"
	"net/http"
	"strings"

	"timekeeper/internal/domain/auth"
	"timekeeper/internal/requestctx"
)

// Auth attaches the bearer token's actor to the context. Requests without a
// valid token pass through anonymously; RequirePermission rejects them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithActor(r.Context(), requestctx.Actor{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				Role:     claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetActor(ctx context.Context) (requestctx.Actor, bool) {
	return requestctx.GetActor(ctx)
}
