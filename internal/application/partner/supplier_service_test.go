package partner

import (
	"context"
	"testing"

	"github.com/minimart/backend/internal/domain/partner"
	"github.com/minimart/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type supplierFixture struct {
	service   *SupplierService
	publisher *MockEventPublisher
	repo      *MockSupplierRepository
}

func newSupplierFixture() *supplierFixture {
	repo := new(MockSupplierRepository)
	service := NewSupplierService(repo)
	publisher := NewMockEventPublisher()
	service.SetEventPublisher(publisher)

	return &supplierFixture{
		service:   service,
		publisher: publisher,
		repo:      repo,
	}
}

func newActiveSupplier(t *testing.T) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier("SUP-001", "Acme Wholesale")
	require.NoError(t, err)
	supplier.ClearDomainEvents()
	return supplier
}

func TestCreateSupplier(t *testing.T) {
	f := newSupplierFixture()

	f.repo.On("ExistsByCode", mock.Anything, "sup-001").Return(false, nil)
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Supplier")).Return(nil)

	resp, err := f.service.Create(context.Background(), &CreateSupplierRequest{
		Code:        "sup-001",
		Name:        "Acme Wholesale",
		ContactName: "Jamie Ortiz",
		Phone:       "+1-555-0101",
		Email:       "jamie@acme.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "SUP-001", resp.Code)
	assert.Equal(t, "Acme Wholesale", resp.Name)
	assert.Equal(t, "Jamie Ortiz", resp.ContactName)
	assert.Equal(t, string(partner.SupplierStatusActive), resp.Status)

	assert.Len(t, f.publisher.GetEventsByType(partner.EventTypeSupplierCreated), 1)
	f.repo.AssertExpectations(t)
}

func TestCreateSupplierRejectsDuplicateCode(t *testing.T) {
	f := newSupplierFixture()

	f.repo.On("ExistsByCode", mock.Anything, "SUP-001").Return(true, nil)

	_, err := f.service.Create(context.Background(), &CreateSupplierRequest{
		Code: "SUP-001",
		Name: "Acme Wholesale",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SUPPLIER_CODE_EXISTS", domainErr.Code)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGetSupplierByID(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

	resp, err := f.service.GetByID(context.Background(), supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, resp.ID)
	assert.Equal(t, "SUP-001", resp.Code)
}

func TestGetSupplierByIDNotFound(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetByID(context.Background(), supplier.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListSuppliers(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]partner.Supplier{*supplier}, nil)
	f.repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)

	page, err := f.service.List(context.Background(), &SupplierListQuery{Search: "acme"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "SUP-001", page.Items[0].Code)
}

func TestListActiveSuppliersOnly(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindActive", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]partner.Supplier{*supplier}, nil)
	f.repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)

	page, err := f.service.List(context.Background(), &SupplierListQuery{ActiveOnly: true})
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Total)
	f.repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestDeactivateSupplier(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.repo.On("Save", mock.Anything, supplier).Return(nil)

	resp, err := f.service.Deactivate(context.Background(), supplier.ID)
	require.NoError(t, err)

	assert.Equal(t, string(partner.SupplierStatusInactive), resp.Status)
	assert.Len(t, f.publisher.GetEventsByType(partner.EventTypeSupplierStatusChanged), 1)
}

func TestDeactivateAlreadyInactiveSupplierFails(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	require.NoError(t, supplier.Deactivate())
	supplier.ClearDomainEvents()
	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)

	_, err := f.service.Deactivate(context.Background(), supplier.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_INACTIVE", domainErr.Code)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestActivateSupplier(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	require.NoError(t, supplier.Deactivate())
	supplier.ClearDomainEvents()

	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.repo.On("Save", mock.Anything, supplier).Return(nil)

	resp, err := f.service.Activate(context.Background(), supplier.ID)
	require.NoError(t, err)

	assert.Equal(t, string(partner.SupplierStatusActive), resp.Status)
	assert.Len(t, f.publisher.GetEventsByType(partner.EventTypeSupplierStatusChanged), 1)
}

func TestUpdateSupplier(t *testing.T) {
	f := newSupplierFixture()

	supplier := newActiveSupplier(t)
	f.repo.On("FindByID", mock.Anything, supplier.ID).Return(supplier, nil)
	f.repo.On("Save", mock.Anything, supplier).Return(nil)

	resp, err := f.service.Update(context.Background(), supplier.ID, &UpdateSupplierRequest{
		Name:  "Acme Wholesale North",
		Phone: "+1-555-0199",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Wholesale North", resp.Name)
	assert.Equal(t, "+1-555-0199", resp.Phone)
	assert.Len(t, f.publisher.GetEventsByType(partner.EventTypeSupplierUpdated), 1)
}
