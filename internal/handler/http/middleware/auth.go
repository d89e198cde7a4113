package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrlite/hr-backend-go/internal/domain/auth"
	"github.com/hrlite/hr-backend-go/internal/handler/http/response"
	"github.com/hrlite/hr-backend-go/internal/pkg/jwt"
)

// Authenticate runs after jwtauth.Verifier and attaches the caller identity to
// the request context. Refresh and SSE tokens carry the same signature, they
// are turned away by IdentityFromClaims on their type claim.
func Authenticate(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, jwt.ClassifyError(err))
			return
		}
		if token == nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		id, err := jwt.IdentityFromClaims(claims)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), id)))
	}
	return http.HandlerFunc(hfn)
}
