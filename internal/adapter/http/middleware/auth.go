package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/service/auth"
	wrap "github.com/Temutjin2k/auth-service/pkg/logger/wrapper"
)

var errBadAuthHeader = errors.New("invalid Authorization header format")

// RequireIdentity resolves the bearer token and injects the caller identity
// into the request context. Missing, malformed, invalid and expired tokens
// and tokens of deleted users all get 401 with a Bearer challenge.
func (m *Middleware) RequireIdentity(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wrap.WithAction(r.Context(), "require_identity")

		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorizedResponse(w, "not authenticated")
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			unauthorizedResponse(w, err.Error())
			return
		}

		identity, err := m.auth.Resolve(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				m.log.Debug(wrap.ErrorCtx(ctx, err), "rejected bearer token")
				unauthorizedResponse(w, "could not validate credentials")
				return
			}
			m.log.Error(wrap.ErrorCtx(ctx, err), "failed to resolve identity", err)
			errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
			return
		}

		ctx = wrap.WithUsername(r.Context(), identity.Username)
		next.ServeHTTP(w, r.WithContext(models.WithIdentity(ctx, identity)))
	})
}

func extractBearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadAuthHeader
	}
	return token, nil
}
