package middleware

import (
	"net/http"

	"github.com/daap14/teamhub/internal/api/response"
)

// RequireSuperuser returns middleware that rejects non-superuser identities with 403.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			if !identity.IsSuperuser {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Superuser access required", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
