package middleware

import (
	"context"
	"net/http"
	"strings"

	"cms-backend/internal/model"
	"cms-backend/internal/service"
)

type accessVerifier interface {
	VerifyAccess(ctx context.Context, tokenString string) (model.User, *model.SessionClaims, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

// AuthMiddleware authenticates requests with a Bearer access token. A token
// must carry a valid signature, be unexpired and still be live in the
// session store; a revoked token is rejected even before its expiry.
type AuthMiddleware struct {
	verifier accessVerifier
	policy   *service.AccessControlPolicy
}

func NewAuthMiddleware(verifier accessVerifier, policy *service.AccessControlPolicy) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, policy: policy}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		token := strings.TrimSpace(header[7:])
		user, claims, err := m.verifier.VerifyAccess(r.Context(), token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		principal := model.Principal{User: user, Claims: claims}
		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a route on the access control policy. It must sit
// behind RequireAuth.
func (m *AuthMiddleware) RequirePermission(op service.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if !m.policy.Allowed(principal.User.Roles, op) {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(model.Principal)
	return principal, ok
}
