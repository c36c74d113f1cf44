package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cms-backend/internal/model"
)

type auditRecorder interface {
	Record(ctx context.Context, actor model.AuditActor, action string, target string, opErr error)
}

// Audit records every mutating request after it completes: who, which
// operation, which target and whether it succeeded. Reads are not recorded.
func Audit(recorder auditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			actor := model.AuditActor{IP: extractClientIP(r)}
			if principal, ok := PrincipalFromContext(r.Context()); ok {
				actor.UserID = principal.User.ID
				actor.Username = principal.User.Username
				actor.Roles = principal.User.Roles
			}

			action := r.Method + " " + routePattern(r)
			var opErr error
			if sw.code >= 400 {
				opErr = fmt.Errorf("http %d", sw.code)
			}

			// r.Context() may already be cancelled once the handler
			// returned, so the write uses a detached context.
			recorder.Record(context.WithoutCancel(r.Context()), actor, action, r.URL.Path, opErr)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
