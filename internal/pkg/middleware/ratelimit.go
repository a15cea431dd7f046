package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"financetracker/internal/api/response"
	"financetracker/internal/domain"
	"financetracker/internal/pkg/cache"
	"financetracker/internal/pkg/logger"
)

// RateLimiter aplica uma janela fixa por IP usando contadores no cache.
// Se o cache falhar, a requisição segue (fail-open) e o erro é logado.
func RateLimiter(client cache.Client, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rate-limit:" + clientIP(r)
			ctx := r.Context()

			count, err := client.Incr(ctx, key)
			if err != nil {
				log.Warn("Rate limiter indisponível, liberando requisição.", map[string]interface{}{"error": err.Error()})
				next.ServeHTTP(w, r)
				return
			}
			// Sem TTL (primeira requisição da janela ou Expire anterior falhou) a chave é rearmada.
			ttl, err := client.TTL(ctx, key)
			if err != nil || ttl <= 0 {
				if err := client.Expire(ctx, key, window); err != nil {
					log.Warn("Falha ao definir expiração do rate limit.", map[string]interface{}{"error": err.Error()})
				}
				ttl = window
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(count) > limit {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(ttl)))
				response.JSON(w, log, http.StatusTooManyRequests, domain.ErrorResponse{
					Code:     http.StatusTooManyRequests,
					Category: "RATE_LIMITED",
					Message:  "Limite de requisições excedido.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(ttl time.Duration) int {
	secs := int(ttl.Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
