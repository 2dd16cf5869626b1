package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает частоту дорогих запросов (генерация изображений)
// отдельно для каждого пользователя.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*userLimiter
	rate     rate.Limit
	burst    int
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter создаёт лимитер: r запросов в секунду с бёрстом burst.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*userLimiter),
		rate:     r,
		burst:    burst,
	}
}

// Middleware возвращает middleware, отдающее 429 при превышении лимита.
// Анонимные запросы считаются по одному общему ключу.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _ := GetUserIDFromContext(r.Context())

			if !rl.get(key).Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if ul, ok := rl.limiters[key]; ok {
		ul.lastAccess = now
		return ul.limiter
	}

	// заодно выбрасываем давно не использованные ключи
	for k, ul := range rl.limiters {
		if now.Sub(ul.lastAccess) > 10*time.Minute {
			delete(rl.limiters, k)
		}
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &userLimiter{limiter: limiter, lastAccess: now}
	return limiter
}
