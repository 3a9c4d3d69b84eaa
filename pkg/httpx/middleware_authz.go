package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/customers/pkg/errx"
)

// RequireAnyRole lets the request through when the token carries at least one
// of roles, either as a realm role or as a role on clientID.
func RequireAnyRole(clientID string, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.HasAnyRole(clientID, roles...) {
				writeInsufficientRole(w, r, roles...)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeInsufficientRole(w http.ResponseWriter, r *http.Request, roles ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", error_description="requires one of: `+strings.Join(roles, " ")+`"`)
	WriteError(w, r, errx.Forbidden("Requires one of roles: %s", strings.Join(roles, ", ")))
}
