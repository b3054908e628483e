package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/good-yellow-bee/anfrage/internal/metrics"
	"github.com/good-yellow-bee/anfrage/internal/ratelimit"
)

// Response messages shared by the middleware.
const (
	MsgRateLimited = "Zu viele Anfragen. Versuche es gleich noch einmal."
	MsgInternal    = "Unbekannter Fehler. Versuche es später erneut."
)

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

// RateLimit returns middleware that rate limits by client key. Limiter
// errors let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), ratelimit.ClientKey(r))
			if err != nil {
				log.Printf("rate limiter %s: %v", scope, err)
				allowed = true
			}
			if !allowed {
				metrics.RateLimitRejections.WithLabelValues(scope).Inc()
				writeMessage(w, http.StatusTooManyRequests, MsgRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
