package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

// TenantParam is the route parameter carrying the tenant id.
const TenantParam = "tenant"

// RequireTenant rejects requests whose {tenant} path segment differs from
// the tenant in the caller's token.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.IdentityFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if chi.URLParam(r, TenantParam) != id.TenantID {
			response.Forbidden(w, "Tenant mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}
