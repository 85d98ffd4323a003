package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"greencare-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	t.Run("Production", func(t *testing.T) {
		Init("production")
		assert.NotNil(t, log)
	})

	t.Run("Development", func(t *testing.T) {
		Init("development")
		assert.NotNil(t, log)
	})
}

func TestL_LazyInit(t *testing.T) {
	originalLog := log
	defer func() { log = originalLog }()

	log = nil
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, log)
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	originalLog := log
	log = zap.New(core)
	defer func() { log = originalLog }()

	t.Run("WithRequestAndUser", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-abc")
		ctx = utils.SetUserContext(ctx, 7, "grower@example.com", "farmer")

		FromCtx(ctx).Info("watering scheduled")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, "req-abc", fields["request_id"])
		assert.Equal(t, uint64(7), fields["user_id"])
	})

	t.Run("Anonymous", func(t *testing.T) {
		FromCtx(context.Background()).Info("public read")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		_, hasReq := logs[0].ContextMap()["request_id"]
		_, hasUser := logs[0].ContextMap()["user_id"]
		assert.False(t, hasReq)
		assert.False(t, hasUser)
	})

	t.Run("Internal", func(t *testing.T) {
		FromCtx(utils.WithInternalRequest(context.Background())).Info("scheduler sync")

		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, true, logs[0].ContextMap()["internal"])
	})
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, Sync)
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFrom(r.Context()))
	}))

	t.Run("GeneratesID", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/plants", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	})

	t.Run("PreservesID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/plants", nil)
		req.Header.Set(RequestIDHeader, "client-id-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "client-id-1", w.Header().Get(RequestIDHeader))
	})
}
