package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/minimart/backend/internal/domain/partner"
	"github.com/minimart/backend/internal/domain/shared"
)

// SupplierService implements supplier lifecycle operations. Deactivation is
// soft: existing purchase orders keep referencing the supplier, only new
// orders are blocked.
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	eventPublisher shared.EventPublisher
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// SetEventPublisher sets the event publisher for domain events
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new supplier with a unique code
func (s *SupplierService) Create(ctx context.Context, req *CreateSupplierRequest) (*SupplierResponse, error) {
	exists, err := s.supplierRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check supplier code: %w", err)
	}
	if exists {
		return nil, shared.NewConflictError("SUPPLIER_CODE_EXISTS",
			fmt.Sprintf("Supplier code %s is already in use", req.Code))
	}

	supplier, err := partner.NewSupplier(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := supplier.SetAddress(req.Address); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		supplier.SetNotes(req.Notes)
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	s.publishAndClear(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update updates a supplier's basic and contact information
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req *UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}

	if err := supplier.Update(req.Name); err != nil {
		return nil, err
	}
	if err := supplier.SetContact(req.ContactName, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := supplier.SetAddress(req.Address); err != nil {
		return nil, err
	}
	supplier.SetNotes(req.Notes)

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	s.publishAndClear(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID returns a supplier by its ID
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByCode returns a supplier by its code
func (s *SupplierService) GetByCode(ctx context.Context, code string) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List returns suppliers matching the query
func (s *SupplierService) List(ctx context.Context, query *SupplierListQuery) (*shared.Paginated[SupplierResponse], error) {
	filter := shared.DefaultFilter()
	if query != nil {
		filter.Search = query.Search
		if query.Status != "" {
			filter.Filters["status"] = query.Status
		}
		if query.Page > 0 {
			filter.Page = query.Page
		}
		if query.PageSize > 0 {
			filter.PageSize = query.PageSize
		}
	}

	var suppliers []partner.Supplier
	var err error
	if query != nil && query.ActiveOnly {
		suppliers, err = s.supplierRepo.FindActive(ctx, filter)
		filter.Filters["status"] = string(partner.SupplierStatusActive)
	} else {
		suppliers, err = s.supplierRepo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	total, err := s.supplierRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	page := shared.NewPaginated(ToSupplierResponses(suppliers), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Deactivate soft-deactivates a supplier. New orders can no longer reference
// it; existing orders are unaffected.
func (s *SupplierService) Deactivate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, supplierID, (*partner.Supplier).Deactivate)
}

// Activate reactivates a previously deactivated supplier
func (s *SupplierService) Activate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, supplierID, (*partner.Supplier).Activate)
}

func (s *SupplierService) changeStatus(ctx context.Context, supplierID uuid.UUID, change func(*partner.Supplier) error) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}

	if err := change(supplier); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to save supplier: %w", err)
	}

	s.publishAndClear(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

func (s *SupplierService) publishAndClear(ctx context.Context, supplier *partner.Supplier) {
	if s.eventPublisher == nil {
		return
	}
	events := supplier.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	supplier.ClearDomainEvents()
}
