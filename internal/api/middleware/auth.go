package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/domain"
)

// AdminAuth requires a Bearer token matching the configured admin token.
// An empty configured token disables the admin surface entirely.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				api.HandleError(w, domain.ErrInvalidAdminToken)
				return
			}

			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				api.HandleError(w, domain.ErrInvalidAdminToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
