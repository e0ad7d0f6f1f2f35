package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/phase1912/contacts-auth/internal/auth/domain"
	"github.com/phase1912/contacts-auth/internal/auth/service"
	"github.com/phase1912/contacts-auth/pkg/authapi"
	"github.com/phase1912/contacts-auth/pkg/httpx"
	"github.com/phase1912/contacts-auth/pkg/slogx"
)

// requireRole authenticates the bearer token and enforces a minimum role.
// On success the user id, role, and claims are injected into the request
// context for downstream handlers.
func requireRole(svc *service.AuthService, required domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := svc.Authorize(ctx, raw, required)
			if err != nil {
				if err == service.ErrForbidden {
					authapi.ErrAccessDenied.WriteError(w)
					return
				}
				log.Warn("token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, httpx.CtxKeyRole, claims.Role)
			ctx = context.WithValue(ctx, httpx.CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	authapi.ErrInvalidToken.WithDescription(desc).WriteError(w)
}
