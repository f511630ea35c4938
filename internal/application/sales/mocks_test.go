package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockConfirmationRepository is a mock implementation of sales.ConfirmationRepository
type MockConfirmationRepository struct {
	mock.Mock
}

func (m *MockConfirmationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesConfirmation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) FindByReference(ctx context.Context, reference string) (*sales.SalesConfirmation, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SalesConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesConfirmation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]sales.SalesConfirmation, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) FindActiveExhausted(ctx context.Context) ([]sales.SalesConfirmation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.SalesConfirmation), args.Error(1)
}

func (m *MockConfirmationRepository) SumAllocatedTonnage(ctx context.Context, confirmationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, confirmationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockConfirmationRepository) CountActiveOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, confirmationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConfirmationRepository) CountLinkedOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, confirmationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConfirmationRepository) Save(ctx context.Context, cv *sales.SalesConfirmation) error {
	args := m.Called(ctx, cv)
	return args.Error(0)
}

func (m *MockConfirmationRepository) SaveWithLock(ctx context.Context, cv *sales.SalesConfirmation) error {
	args := m.Called(ctx, cv)
	return args.Error(0)
}

func (m *MockConfirmationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCustomerOrderRepository is a mock implementation of sales.CustomerOrderRepository
type MockCustomerOrderRepository struct {
	mock.Mock
}

func (m *MockCustomerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.CustomerOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindByReference(ctx context.Context, reference string) (*sales.CustomerOrder, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.CustomerOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]sales.CustomerOrder, error) {
	args := m.Called(ctx, confirmationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.CustomerOrder), args.Error(1)
}

func (m *MockCustomerOrderRepository) Save(ctx context.Context, order *sales.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) SaveWithLock(ctx context.Context, order *sales.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockCustomerOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTransitOrderRepository is a mock implementation of potting.TransitOrderRepository
type MockTransitOrderRepository struct {
	mock.Mock
}

func (m *MockTransitOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.TransitOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) FindByName(ctx context.Context, name string) (*potting.TransitOrder, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.TransitOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) FindByCampaign(ctx context.Context, campaignID uuid.UUID) ([]potting.TransitOrder, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) FindByCustomerOrder(ctx context.Context, orderID uuid.UUID) ([]potting.TransitOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) FindActiveByFormula(ctx context.Context, formulaID, excludeID uuid.UUID) ([]potting.TransitOrder, error) {
	args := m.Called(ctx, formulaID, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.TransitOrder), args.Error(1)
}

func (m *MockTransitOrderRepository) CountUnfinishedByCustomerOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransitOrderRepository) Save(ctx context.Context, ot *potting.TransitOrder) error {
	args := m.Called(ctx, ot)
	return args.Error(0)
}

func (m *MockTransitOrderRepository) SaveWithLock(ctx context.Context, ot *potting.TransitOrder) error {
	args := m.Called(ctx, ot)
	return args.Error(0)
}

func (m *MockTransitOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLotRepository is a mock implementation of potting.LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByName(ctx context.Context, name string) (*potting.Lot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.Lot), args.Error(1)
}

func (m *MockLotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.Lot, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) ([]potting.Lot, error) {
	args := m.Called(ctx, transitOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.Lot), args.Error(1)
}

func (m *MockLotRepository) FindByContainer(ctx context.Context, containerID uuid.UUID) ([]potting.Lot, error) {
	args := m.Called(ctx, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.Lot), args.Error(1)
}

func (m *MockLotRepository) StatsByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (potting.LotStats, error) {
	args := m.Called(ctx, transitOrderID)
	return args.Get(0).(potting.LotStats), args.Error(1)
}

func (m *MockLotRepository) CountPottedByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, transitOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLotRepository) Save(ctx context.Context, lot *potting.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) SaveWithLock(ctx context.Context, lot *potting.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) DeleteByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) error {
	args := m.Called(ctx, transitOrderID)
	return args.Error(0)
}

func (m *MockLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}
