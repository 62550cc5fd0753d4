package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLowStockHandlerEventTypes(t *testing.T) {
	handler := NewLowStockHandler(zap.NewNop())
	assert.Equal(t, []string{inventory.EventTypeLowStockDetected}, handler.EventTypes())
}

func TestLowStockHandlerHandlesEvent(t *testing.T) {
	handler := NewLowStockHandler(zap.NewNop())
	event := inventory.NewLowStockDetectedEvent(uuid.New(), "WIDGET-1", 3, 10)
	assert.NoError(t, handler.Handle(context.Background(), event))
}
