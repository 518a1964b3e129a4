package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/qanooni-ai/qanooni/internal/api"
	"github.com/qanooni-ai/qanooni/internal/domain"
)

// RateLimit rejects requests beyond perMinute sustained requests per
// minute, with a burst of the same size. The limiter is shared across
// all clients of the wrapped handler.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				api.HandleError(w, domain.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
