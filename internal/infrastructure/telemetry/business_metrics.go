package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LowStockCounter reports the number of products currently below their
// minimum stock threshold.
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for BusinessMetrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	LowStock        LowStockCounter // optional, enables the low-stock gauge
	CollectInterval time.Duration   // default 60s
}

// BusinessMetrics records purchase order lifecycle and stock ledger metrics.
// Counters are fed by the event bus; the low-stock gauge is sampled
// periodically from the catalog.
type BusinessMetrics struct {
	logger          *zap.Logger
	lowStock        LowStockCounter
	collectInterval time.Duration

	orderCreated   *Counter
	orderReceived  *Counter
	orderPaid      *Counter
	orderCancelled *Counter
	stockMovements *Counter
	lowStockGauge  *Gauge

	stopChan chan struct{}
	stopOnce sync.Once
}

// ErrMeterNil is returned when BusinessMetrics is created without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// NewBusinessMetrics creates a BusinessMetrics instance with all instruments
// registered on the given meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CollectInterval == 0 {
		cfg.CollectInterval = 60 * time.Second
	}

	bm := &BusinessMetrics{
		logger:          cfg.Logger,
		lowStock:        cfg.LowStock,
		collectInterval: cfg.CollectInterval,
		stopChan:        make(chan struct{}),
	}

	var err error
	if bm.orderCreated, err = NewCounter(cfg.Meter,
		"minimart_purchase_order_created_total",
		"Total number of purchase orders created", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderReceived, err = NewCounter(cfg.Meter,
		"minimart_purchase_order_received_total",
		"Total number of goods receipts against purchase orders", "{receipts}"); err != nil {
		return nil, err
	}
	if bm.orderPaid, err = NewCounter(cfg.Meter,
		"minimart_purchase_order_paid_total",
		"Total number of purchase orders paid", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderCancelled, err = NewCounter(cfg.Meter,
		"minimart_purchase_order_cancelled_total",
		"Total number of purchase orders cancelled", "{orders}"); err != nil {
		return nil, err
	}
	if bm.stockMovements, err = NewCounter(cfg.Meter,
		"minimart_stock_movements_total",
		"Total number of stock ledger movements appended", "{movements}"); err != nil {
		return nil, err
	}
	if bm.lowStockGauge, err = NewGauge(cfg.Meter,
		"minimart_low_stock_products",
		"Number of products currently below their minimum stock", "{products}"); err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderCreated increments the order-created counter.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context) {
	bm.orderCreated.Inc(ctx)
}

// RecordOrderReceived increments the receipt counter with the resulting
// order status as an attribute.
func (bm *BusinessMetrics) RecordOrderReceived(ctx context.Context, status string) {
	bm.orderReceived.Inc(ctx, AttrOrderStatus.String(status))
}

// RecordOrderPaid increments the paid counter with the payment method.
func (bm *BusinessMetrics) RecordOrderPaid(ctx context.Context, paymentMethod string) {
	bm.orderPaid.Inc(ctx, AttrPaymentMethod.String(paymentMethod))
}

// RecordOrderCancelled increments the cancelled counter.
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context) {
	bm.orderCancelled.Inc(ctx)
}

// RecordStockMovement increments the movement counter with the movement type.
func (bm *BusinessMetrics) RecordStockMovement(ctx context.Context, movementType string) {
	bm.stockMovements.Inc(ctx, AttrMovementType.String(movementType))
}

// RecordLowStockCount records the current low-stock product count.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockGauge.Record(ctx, count)
}

// CollectLowStock samples the low-stock count once and records it.
func (bm *BusinessMetrics) CollectLowStock(ctx context.Context) error {
	if bm.lowStock == nil {
		return nil
	}
	count, err := bm.lowStock.CountLowStock(ctx)
	if err != nil {
		return err
	}
	bm.RecordLowStockCount(ctx, count)
	return nil
}

// StartPeriodicCollection samples the low-stock gauge on the configured
// interval until Stop is called. No-op without a LowStockCounter.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context) {
	if bm.lowStock == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(bm.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := bm.CollectLowStock(ctx); err != nil {
					bm.logger.Warn("Failed to collect low-stock count", zap.Error(err))
				}
			case <-bm.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
