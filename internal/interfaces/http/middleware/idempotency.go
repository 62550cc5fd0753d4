package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/minimart/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the caller-chosen key that guards retried mutations
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects replayed mutations carrying an already-seen
// Idempotency-Key. Requests without the header pass through untouched; the
// header is only consulted on mutating methods.
func Idempotency(store shared.IdempotencyStore, cfg shared.IdempotencyConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		// Scope the key by method and path so the same key can be reused
		// across different endpoints
		scopedKey := c.Request.Method + ":" + c.FullPath() + ":" + key

		newlyMarked, err := store.MarkProcessed(c.Request.Context(), scopedKey, cfg.TTL)
		if err != nil {
			// Degrade open: a broken store should not block writes
			logger.Warn("idempotency store unavailable",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !newlyMarked {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"Request with this idempotency key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
