package auth

import (
	"context"
	"net/http"
	"strings"

	"n5-drill-service/internal/domain"
)

// Authenticator resolves the caller's user id from a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// Authenticate accepts "Authorization: Bearer <jwt>" or the access_token query
// parameter, which browsers need for WebSocket upgrades.
func (s *TokenService) Authenticate(r *http.Request) (string, error) {
	raw := bearerToken(r)
	if raw == "" {
		return "", domain.ErrUnauthenticated
	}
	return s.Parse(raw)
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

// HeaderAuthenticator trusts X-User-ID or the userId query parameter.
// Development only: it is used when no token secret is configured.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("userId"))
	}
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// Middleware rejects unauthenticated requests and stores the user id in the context.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

type ctxKey string

const ctxKeyUserID ctxKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
