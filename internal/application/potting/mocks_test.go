package potting

import (
	"context"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

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

// MockContainerRepository is a mock implementation of potting.ContainerRepository
type MockContainerRepository struct {
	mock.Mock
}

func (m *MockContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.Container, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.Container), args.Error(1)
}

func (m *MockContainerRepository) FindByNumber(ctx context.Context, number string) (*potting.Container, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*potting.Container), args.Error(1)
}

func (m *MockContainerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.Container, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]potting.Container), args.Error(1)
}

func (m *MockContainerRepository) Save(ctx context.Context, c *potting.Container) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContainerRepository) SaveWithLock(ctx context.Context, c *potting.Container) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContainerRepository) Delete(ctx context.Context, id uuid.UUID) error {
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

// MockFormulaRepository is a mock implementation of pricing.FormulaRepository
type MockFormulaRepository struct {
	mock.Mock
}

func (m *MockFormulaRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Formula, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Formula), args.Error(1)
}

func (m *MockFormulaRepository) FindByReference(ctx context.Context, reference string) (*pricing.Formula, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Formula), args.Error(1)
}

func (m *MockFormulaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.Formula, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Formula), args.Error(1)
}

func (m *MockFormulaRepository) FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]pricing.Formula, error) {
	args := m.Called(ctx, confirmationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Formula), args.Error(1)
}

func (m *MockFormulaRepository) SumActiveTonnageByConfirmation(ctx context.Context, confirmationID, excludeID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, confirmationID, excludeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockFormulaRepository) FindUnpaidValidated(ctx context.Context) ([]pricing.Formula, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]pricing.Formula), args.Error(1)
}

func (m *MockFormulaRepository) Save(ctx context.Context, f *pricing.Formula) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFormulaRepository) SaveWithLock(ctx context.Context, f *pricing.Formula) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFormulaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSequenceGenerator is a mock implementation of shared.SequenceGenerator
type MockSequenceGenerator struct {
	mock.Mock
}

func (m *MockSequenceGenerator) NextByCode(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// counterSequence hands out incrementing numbers per code, no expectations
type counterSequence struct {
	counters map[string]int64
}

func newCounterSequence() *counterSequence {
	return &counterSequence{counters: make(map[string]int64)}
}

func (s *counterSequence) NextByCode(_ context.Context, code string) (int64, error) {
	s.counters[code]++
	return s.counters[code], nil
}

// staticParams is a fixed ParameterProvider for tests
type staticParams struct{}

func (staticParams) MaxLotTonnage(product valueobject.ProductType) decimal.Decimal {
	switch product {
	case valueobject.ProductCocoaMass, valueobject.ProductCocoaCake:
		return decimal.NewFromInt(25)
	case valueobject.ProductCocoaButter:
		return decimal.NewFromInt(22)
	case valueobject.ProductCocoaPowder:
		return decimal.NewFromFloat(22.5)
	}
	return decimal.NewFromInt(25)
}

func (staticParams) LotNamePrefix(product valueobject.ProductType) string {
	switch product {
	case valueobject.ProductCocoaMass:
		return "MC"
	case valueobject.ProductCocoaButter:
		return "BC"
	case valueobject.ProductCocoaCake:
		return "TC"
	case valueobject.ProductCocoaPowder:
		return "PC"
	}
	return "LT"
}

func (staticParams) ContainerCapacity(ctype potting.ContainerType) decimal.Decimal {
	return ctype.DefaultCapacity()
}

// capturingPublisher records published events for assertions
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

