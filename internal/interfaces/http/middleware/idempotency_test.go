package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIdempotencyRouter(t *testing.T, cfg shared.IdempotencyConfig) (*gin.Engine, *cache.InMemoryIdempotencyStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	router.Use(Idempotency(store, cfg, zap.NewNop()))
	router.POST("/orders", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	router.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router, store
}

func doRequest(router *gin.Engine, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware(t *testing.T) {
	enabled := shared.IdempotencyConfig{Enabled: true, TTL: time.Minute}

	t.Run("passes first request and rejects replay", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t, enabled)

		first := doRequest(router, http.MethodPost, "/orders", "key-1")
		require.Equal(t, http.StatusCreated, first.Code)

		replay := doRequest(router, http.MethodPost, "/orders", "key-1")
		assert.Equal(t, http.StatusConflict, replay.Code)
		assert.Contains(t, replay.Body.String(), "DUPLICATE_REQUEST")
	})

	t.Run("ignores requests without a key", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t, enabled)

		first := doRequest(router, http.MethodPost, "/orders", "")
		second := doRequest(router, http.MethodPost, "/orders", "")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
	})

	t.Run("ignores read requests", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t, enabled)

		first := doRequest(router, http.MethodGet, "/orders", "key-1")
		second := doRequest(router, http.MethodGet, "/orders", "key-1")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
	})

	t.Run("does nothing when disabled", func(t *testing.T) {
		router, _ := newIdempotencyRouter(t, shared.IdempotencyConfig{Enabled: false, TTL: time.Minute})

		first := doRequest(router, http.MethodPost, "/orders", "key-1")
		second := doRequest(router, http.MethodPost, "/orders", "key-1")

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
	})
}
