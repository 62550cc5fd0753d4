package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/inventory"
	"github.com/minimart/backend/internal/domain/shared"
)

// maxStockRetries bounds the compare-and-swap retry loop for adjustments
const maxStockRetries = 3

// LedgerService coordinates writes to the append-only stock ledger. Every
// stock change goes through here or the purchase order receive flow, so the
// product's cached stock and the ledger always move together.
type LedgerService struct {
	scope          TransactionScope
	movementRepo   inventory.StockMovementRepository
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope, movementRepo inventory.StockMovementRepository) *LedgerService {
	return &LedgerService{
		scope:        scope,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AppendAdjustment records a manual stock correction. The adjustment is valued
// at the product's current average cost so the average is unchanged; only the
// quantity moves. Retries on concurrent stock writers.
func (s *LedgerService) AppendAdjustment(ctx context.Context, req *AdjustStockRequest) (*MovementResponse, error) {
	if req.Reason == "" {
		return nil, shared.NewValidationError("INVALID_REASON", "Adjustment reason cannot be empty")
	}

	adjustmentID := uuid.New().String()

	var response *MovementResponse
	var events []shared.DomainEvent

	var lastErr error
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		events = events[:0]
		lastErr = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			product, err := repos.ProductRepo().FindByID(ctx, req.ProductID)
			if err != nil {
				return fmt.Errorf("failed to find product: %w", err)
			}

			previousStock := product.Stock
			movement, err := inventory.NewStockMovement(
				product.ID,
				inventory.MovementTypeAdjustment,
				req.Quantity,
				product.AverageCost,
				previousStock,
				inventory.ReferenceTypeManualAdjustment,
				adjustmentID,
			)
			if err != nil {
				return err
			}
			movement.WithReason(req.Reason).WithNotes(req.Notes)

			if err := product.ApplyStock(previousStock, movement.NewStock, product.AverageCost, product.LastCost); err != nil {
				return err
			}

			if err := repos.MovementRepo().Append(ctx, movement); err != nil {
				return fmt.Errorf("failed to append movement: %w", err)
			}
			if err := repos.ProductRepo().UpdateStockAndCost(ctx, product, previousStock); err != nil {
				return err
			}

			events = append(events, inventory.NewStockMovementAppendedEvent(movement))
			if product.IsLowStock() {
				events = append(events, inventory.NewLowStockDetectedEvent(product.ID, product.SKU, product.Stock, product.MinStock))
			}

			resp := ToMovementResponse(movement)
			response = &resp
			return nil
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, shared.ErrStockConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.publishEvents(ctx, events)
	return response, nil
}

// ReverseMovement appends an offsetting adjustment that undoes a previous
// movement. The original row is never touched. A movement can only be
// reversed once.
func (s *LedgerService) ReverseMovement(ctx context.Context, movementID uuid.UUID, req *ReverseMovementRequest) (*MovementResponse, error) {
	existing, err := s.movementRepo.FindByReference(ctx, inventory.ReferenceTypeMovementReversal, movementID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing reversal: %w", err)
	}
	if len(existing) > 0 {
		return nil, shared.NewStateError("ALREADY_REVERSED", "Movement has already been reversed", "REVERSED")
	}

	var response *MovementResponse
	var events []shared.DomainEvent

	var lastErr error
	for attempt := 0; attempt < maxStockRetries; attempt++ {
		events = events[:0]
		lastErr = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			original, err := repos.MovementRepo().FindByID(ctx, movementID)
			if err != nil {
				return fmt.Errorf("failed to find movement: %w", err)
			}

			product, err := repos.ProductRepo().FindByID(ctx, original.ProductID)
			if err != nil {
				return fmt.Errorf("failed to find product: %w", err)
			}

			previousStock := product.Stock
			reversal, err := original.Reversal(previousStock, req.Reason)
			if err != nil {
				return err
			}

			if err := product.ApplyStock(previousStock, reversal.NewStock, product.AverageCost, product.LastCost); err != nil {
				return err
			}

			if err := repos.MovementRepo().Append(ctx, reversal); err != nil {
				return fmt.Errorf("failed to append reversal: %w", err)
			}
			if err := repos.ProductRepo().UpdateStockAndCost(ctx, product, previousStock); err != nil {
				return err
			}

			events = append(events, inventory.NewStockMovementAppendedEvent(reversal))
			if product.IsLowStock() {
				events = append(events, inventory.NewLowStockDetectedEvent(product.ID, product.SKU, product.Stock, product.MinStock))
			}

			resp := ToMovementResponse(reversal)
			response = &resp
			return nil
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, shared.ErrStockConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.publishEvents(ctx, events)
	return response, nil
}

// GetMovement returns a single movement by ID
func (s *LedgerService) GetMovement(ctx context.Context, id uuid.UUID) (*MovementResponse, error) {
	movement, err := s.movementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find movement: %w", err)
	}
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// ListMovements returns a product's movement history, oldest first
func (s *LedgerService) ListMovements(ctx context.Context, productID uuid.UUID, query *MovementListQuery) (*shared.Paginated[MovementResponse], error) {
	filter := inventory.DefaultMovementFilter()
	if query != nil {
		for _, t := range query.Types {
			movementType := inventory.MovementType(t)
			if !movementType.IsValid() {
				return nil, shared.NewValidationError("INVALID_MOVEMENT_TYPE", fmt.Sprintf("Invalid movement type: %s", t))
			}
			filter.Types = append(filter.Types, movementType)
		}
		filter.From = query.From
		filter.To = query.To
		if query.Page > 0 {
			filter.Page = query.Page
		}
		if query.PageSize > 0 {
			filter.PageSize = query.PageSize
		}
	}

	movements, err := s.movementRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	total, err := s.movementRepo.CountByProduct(ctx, productID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	page := shared.NewPaginated(ToMovementResponses(movements), total, filter.Page, filter.PageSize)
	return &page, nil
}

// CheckConsistency reconciles a product's cached stock against the sum of its
// ledger movements
func (s *LedgerService) CheckConsistency(ctx context.Context, productID uuid.UUID) (*StockConsistencyResponse, error) {
	var response *StockConsistencyResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to find product: %w", err)
		}
		sum, err := repos.MovementRepo().SumQuantityByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to sum movements: %w", err)
		}
		response = &StockConsistencyResponse{
			ProductID:    product.ID,
			ProductStock: product.Stock,
			LedgerSum:    sum,
			Consistent:   product.Stock == sum,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *LedgerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Events are published after commit; a publish failure must not undo
	// the stock change.
	_ = s.eventPublisher.Publish(ctx, events...)
}
