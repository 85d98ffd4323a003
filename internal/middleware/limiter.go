package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"greencare-be/internal/transport"
	"greencare-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// login, register, refresh, disease detection
	limitStrict = rate.Limit(2)
	burstStrict = 5

	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	limitFrontend = rate.Limit(20)
	burstFrontend = 40

	// trusted services presenting the internal secret
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const (
	visitorIdleTTL  = 3 * time.Minute
	cleanupInterval = time.Minute
)

var strictPrefixes = []string{"/api/auth/", "/api/predict/predict"}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies token-bucket limits per caller and tier.
type Limiter struct {
	internalSecret string

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewLimiter(internalSecret string) *Limiter {
	return &Limiter{
		internalSecret: internalSecret,
		visitors:       make(map[string]*visitor),
		now:            time.Now,
	}
}

// Run evicts idle visitors until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *Limiter) get(key string, limit rate.Limit, burst int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(limit, burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := l.tier(r)
		if tier == "internal" {
			r = r.WithContext(utils.WithInternalRequest(r.Context()))
		}

		key := fmt.Sprintf("%s:%s", identity(r), tier)
		if !l.get(key, limit, burst).Allow() {
			transport.WriteError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity prefers the authenticated user, then a client device id, then the remote IP.
func identity(r *http.Request) string {
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func (l *Limiter) tier(r *http.Request) (rate.Limit, int, string) {
	if l.internalSecret != "" && r.Header.Get("X-Service-Auth") == l.internalSecret {
		return limitInternal, burstInternal, "internal"
	}

	for _, p := range strictPrefixes {
		if strings.HasPrefix(r.URL.Path, p) {
			return limitStrict, burstStrict, "strict"
		}
	}

	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return limitFrontend, burstFrontend, "frontend"
	}

	return limitGeneral, burstGeneral, "general"
}
