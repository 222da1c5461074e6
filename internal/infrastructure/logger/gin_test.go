package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	engine.Use(GinMiddleware(zap.New(core)))
	return engine, logs
}

func doRequest(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestGinMiddleware(t *testing.T) {
	t.Run("successful request logs at info with request fields", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.POST("/api/v1/sync/orders/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		w := doRequest(engine, http.MethodPost, "/api/v1/sync/orders/10?force=1")
		assert.Equal(t, http.StatusOK, w.Code)

		entries := logs.FilterMessage("Request served").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "POST", fields["method"])
		assert.Equal(t, "/api/v1/sync/orders/10", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "force=1", fields["query"])
	})

	t.Run("client error logs at warn", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/api/v1/sync/logs", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
		})

		doRequest(engine, http.MethodGet, "/api/v1/sync/logs")

		entries := logs.FilterMessage("Request rejected").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("server error logs at error", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/api/v1/connection", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false})
		})

		doRequest(engine, http.MethodGet, "/api/v1/connection")

		entries := logs.FilterMessage("Request failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("handlers see the request-scoped logger", func(t *testing.T) {
		engine, logs := newObservedEngine(t)
		engine.GET("/api/v1/ping", func(c *gin.Context) {
			GetGinLogger(c).Info("Handler reached")
			c.Status(http.StatusOK)
		})

		doRequest(engine, http.MethodGet, "/api/v1/ping")

		entries := logs.FilterMessage("Handler reached").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.GET("/api/v1/sync/batch", func(c *gin.Context) {
		panic("batch dispatch broke")
	})

	w := doRequest(engine, http.MethodGet, "/api/v1/sync/batch")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entries := logs.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "batch dispatch broke", fields["panic"])
	assert.Equal(t, "/api/v1/sync/batch", fields["path"])
}

func TestGetGinLogger_OutsideMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	log := GetGinLogger(c)

	require.NotNil(t, log)
	assert.NotPanics(t, func() { log.Info("no-op") })
}
