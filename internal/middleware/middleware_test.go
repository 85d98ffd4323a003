package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"greencare-be/internal/auth"
	"greencare-be/internal/logger"
	"greencare-be/internal/metrics"
	"greencare-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	handler := CORS("http://localhost:3000")(okHandler())

	t.Run("Preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/plants", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("Simple", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	mw := Authenticate(tokens)

	t.Run("NoToken", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid or expired token"}`, w.Body.String())
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		pair, err := tokens.IssuePair(auth.Identity{UserID: 1, Role: auth.RoleFarmer})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Refresh)
		w := httptest.NewRecorder()
		mw(http.NotFoundHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ValidToken", func(t *testing.T) {
		access, err := tokens.IssueAccess(auth.Identity{UserID: 1, Email: "a@b.c", Role: auth.RoleSeller})
		require.NoError(t, err)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, uint(1), userID)
			assert.Equal(t, auth.RoleSeller, utils.GetUserRoleFromContext(r.Context()))
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("CookieToken", func(t *testing.T) {
		access, err := tokens.IssueAccess(auth.Identity{UserID: 5, Role: auth.RoleFarmer})
		require.NoError(t, err)

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := utils.GetUserIDFromContext(r.Context())
			assert.Equal(t, uint(5), userID)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: access})
		mw(next).ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("NonBearerHeader", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := utils.GetUserIDFromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLimiter(t *testing.T) {
	t.Run("StrictTierForAuthRoutes", func(t *testing.T) {
		l := NewLimiter("")
		handler := l.Middleware(okHandler())

		codes := make([]int, 0, burstStrict+1)
		for i := 0; i < burstStrict+1; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:5555"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		for _, c := range codes[:burstStrict] {
			assert.Equal(t, http.StatusOK, c)
		}
		assert.Equal(t, http.StatusTooManyRequests, codes[burstStrict])
	})

	t.Run("SeparateBucketsPerIdentity", func(t *testing.T) {
		l := NewLimiter("")
		handler := l.Middleware(okHandler())

		for i := 0; i < burstStrict; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.Header.Set("X-Device-ID", "phone-a")
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Device-ID", "phone-b")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Tiers", func(t *testing.T) {
		l := NewLimiter("s3cret")

		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		_, _, tier := l.tier(req)
		assert.Equal(t, "general", tier)

		req = httptest.NewRequest(http.MethodPost, "/api/predict/predict", nil)
		_, _, tier = l.tier(req)
		assert.Equal(t, "strict", tier)

		req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("X-Client-Type", "frontend-heavy")
		_, _, tier = l.tier(req)
		assert.Equal(t, "frontend", tier)

		req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Service-Auth", "s3cret")
		_, _, tier = l.tier(req)
		assert.Equal(t, "internal", tier)
	})

	t.Run("InternalRequestMarked", func(t *testing.T) {
		l := NewLimiter("s3cret")
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, utils.IsInternalRequest(r.Context()))
		})
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set("X-Service-Auth", "s3cret")
		l.Middleware(next).ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("AuthenticatedIdentity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 12, "", auth.RoleFarmer))
		assert.Equal(t, "user:12", identity(req))

		req = httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.RemoteAddr = "192.168.1.9:4000"
		assert.Equal(t, "ip:192.168.1.9", identity(req))
	})

	t.Run("CleanupEvictsIdleVisitors", func(t *testing.T) {
		l := NewLimiter("")
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return base }
		l.get("ip:1:general", limitGeneral, burstGeneral)

		l.now = func() time.Time { return base.Add(visitorIdleTTL + time.Second) }
		l.get("ip:2:general", limitGeneral, burstGeneral)
		l.cleanup()

		assert.Len(t, l.visitors, 1)
		assert.Contains(t, l.visitors, "ip:2:general")
	})

	t.Run("RunStopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			NewLimiter("").Run(ctx)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("limiter cleanup loop did not stop")
		}
	})
}

func TestAccessLogAndMetrics(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer logger.Replace(zap.New(core))()

	reg := metrics.NewRegistry()
	r := chi.NewRouter()
	r.Use(AccessLog, Metrics(reg))
	r.Get("/api/plants/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants/7", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	logs := observed.FilterMessage("http request").All()
	require.Len(t, logs, 1)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	fields := logs[0].ContextMap()
	assert.Equal(t, "/api/plants/{id}", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(),
		`greencare_http_requests_total{method="GET",route="/api/plants/{id}",status="404"} 1`)
}
