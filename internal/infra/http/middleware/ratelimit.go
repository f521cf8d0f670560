package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/xavierca1/leaddesk/internal/usecase"
)

// CaptureRateLimit limita a captura por IP. O limite vem das configurações
// salvas (rateLimitPerHour) a cada requisição; fallback vale quando não há valor.
// Com trustProxy a chave é o IP do visitante informado pelo proxy
// (True-Client-IP, X-Real-IP ou X-Forwarded-For); sem ele, o peer TCP.
func CaptureRateLimit(settings usecase.SettingsProvider, fallback int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	keyFunc := httprate.KeyByIP
	if trustProxy {
		keyFunc = httprate.KeyByRealIP
	}

	limiter := httprate.Limit(
		fallback,
		window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if settings != nil {
				if n := settings.Resolve(r.Context()).RateLimitPerHour; n > 0 {
					r = r.WithContext(httprate.WithRequestLimit(r.Context(), n))
				}
			}
			limited.ServeHTTP(w, r)
		})
	}
}
