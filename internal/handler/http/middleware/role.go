package middleware

import (
	"fmt"
	"net/http"

	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/domain/user"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
)

// Authorize admits the request when the caller's role may perform op.
func Authorize(op user.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.IdentityFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !user.IsAllowed(id.Role, op) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: '%s' is not allowed for role '%s'", op, id.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
