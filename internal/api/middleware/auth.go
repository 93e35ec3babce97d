package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/auth"
)

const identityKey contextKey = "identity"

// Authenticator resolves request credentials to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, rawKey string) (*auth.Identity, error)
	AuthenticateToken(ctx context.Context, raw string) (*auth.Identity, error)
}

// Auth is middleware that resolves the caller from either the X-API-Key
// header or an "Authorization: Bearer" token. Missing or invalid
// credentials return 401.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			var (
				identity *auth.Identity
				err      error
			)
			if rawKey := r.Header.Get("X-API-Key"); rawKey != "" {
				identity, err = authenticator.Authenticate(r.Context(), rawKey)
			} else if token, ok := bearerToken(r); ok {
				identity, err = authenticator.AuthenticateToken(r.Context(), token)
			} else {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			if err != nil {
				switch {
				case errors.Is(err, auth.ErrInvalidKey):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or revoked API key", requestID)
				case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokensDisabled):
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", requestID)
				default:
					slog.Error("authentication failed", "error", err, "requestId", requestID)
					response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithIdentity stores identity in ctx.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
