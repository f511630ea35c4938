package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	orderRepo   *MockCustomerOrderRepository
	cvRepo      *MockConfirmationRepository
	transitRepo *MockTransitOrderRepository
	lotRepo     *MockLotRepository
	svc         *CustomerOrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:   new(MockCustomerOrderRepository),
		cvRepo:      new(MockConfirmationRepository),
		transitRepo: new(MockTransitOrderRepository),
		lotRepo:     new(MockLotRepository),
	}
	confirmationSvc := NewConfirmationService(f.cvRepo, zap.NewNop())
	f.svc = NewCustomerOrderService(f.orderRepo, f.cvRepo, f.transitRepo, f.lotRepo,
		NewNoOpTransactionScope(f.orderRepo, f.cvRepo), confirmationSvc, zap.NewNop())
	return f
}

// recordingTxScope wraps a NoOpTransactionScope and records each execution
// outcome, so tests can check which writes ran under one scope.
type recordingTxScope struct {
	inner *NoOpTransactionScope
	calls int
	errs  []error
}

func (r *recordingTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	r.calls++
	err := r.inner.Execute(ctx, fn)
	r.errs = append(r.errs, err)
	return err
}

func newTestOrder(t *testing.T, tonnage int64) *sales.CustomerOrder {
	t.Helper()
	order, err := sales.NewCustomerOrder("CT-2025-010", uuid.New(), "Chocolats Riviera",
		valueobject.ProductCocoaMass, decimal.NewFromInt(tonnage), decimal.NewFromInt(1800000))
	require.NoError(t, err)
	return order
}

func TestCustomerOrderService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a draft contract with an export duty rate", func(t *testing.T) {
		fx := newOrderFixture()

		fx.orderRepo.On("FindByReference", ctx, "CT-2025-010").
			Return(nil, shared.NewDomainError("NOT_FOUND", "not found"))
		fx.orderRepo.On("Save", ctx, mock.AnythingOfType("*sales.CustomerOrder")).Return(nil)

		rate := decimal.NewFromFloat(14.6)
		resp, err := fx.svc.Create(ctx, CreateOrderRequest{
			Reference:       "CT-2025-010",
			CustomerID:      uuid.New(),
			CustomerName:    "Chocolats Riviera",
			ProductType:     "cocoa_mass",
			ContractTonnage: decimal.NewFromInt(100),
			UnitPrice:       decimal.NewFromInt(1800000),
			ExportDutyRate:  &rate,
		})
		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		assert.True(t, resp.ExportDutyRate.Equal(rate))
		assert.True(t, resp.ContractAmount.Equal(decimal.NewFromInt(180000000)))
	})

	t.Run("a duplicate reference is rejected", func(t *testing.T) {
		fx := newOrderFixture()

		existing := newTestOrder(t, 100)
		fx.orderRepo.On("FindByReference", ctx, "CT-2025-010").Return(existing, nil)

		_, err := fx.svc.Create(ctx, CreateOrderRequest{
			Reference:       "CT-2025-010",
			CustomerID:      uuid.New(),
			CustomerName:    "Chocolats Riviera",
			ProductType:     "cocoa_mass",
			ContractTonnage: decimal.NewFromInt(100),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestCustomerOrderService_AddAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("draws the envelope and refreshes the confirmation aggregates", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		cv := newActiveTestConfirmation(t, 500)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{}, nil)
		fx.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		fx.cvRepo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.NewFromInt(80), nil)
		fx.cvRepo.On("SaveWithLock", ctx, cv).Return(nil)

		resp, err := fx.svc.AddAllocation(ctx, order.ID, AddAllocationRequest{
			ConfirmationID: cv.ID, Tonnage: decimal.NewFromInt(80),
		})
		require.NoError(t, err)
		require.Len(t, resp.Allocations, 1)
		assert.True(t, resp.AllocatedTonnage.Equal(decimal.NewFromInt(80)))
		assert.True(t, cv.TonnageRestant.Equal(decimal.NewFromInt(420)))
	})

	t.Run("an envelope overrun aborts the whole scoped write", func(t *testing.T) {
		fx := newOrderFixture()
		scope := &recordingTxScope{inner: NewNoOpTransactionScope(fx.orderRepo, fx.cvRepo)}
		confirmationSvc := NewConfirmationService(fx.cvRepo, zap.NewNop())
		svc := NewCustomerOrderService(fx.orderRepo, fx.cvRepo, fx.transitRepo, fx.lotRepo,
			scope, confirmationSvc, zap.NewNop())

		order := newTestOrder(t, 100)
		cv := newActiveTestConfirmation(t, 200)
		// Stored aggregates lag behind the allocation rows.
		require.NoError(t, cv.ApplyUsedTonnage(decimal.NewFromInt(50)))

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{}, nil)
		fx.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		fx.cvRepo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.NewFromInt(250), nil)

		_, err := svc.AddAllocation(ctx, order.ID, AddAllocationRequest{
			ConfirmationID: cv.ID, Tonnage: decimal.NewFromInt(80),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_TONNAGE", domainErr.Code)
		// The overrun surfaced inside the scoped execution, where the contract
		// write also ran.
		assert.Equal(t, 1, scope.calls)
		require.Len(t, scope.errs, 1)
		assert.Error(t, scope.errs[0])
		fx.cvRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects an allocation past the contract tonnage", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		cv := newActiveTestConfirmation(t, 500)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)

		_, err := fx.svc.AddAllocation(ctx, order.ID, AddAllocationRequest{
			ConfirmationID: cv.ID, Tonnage: decimal.NewFromInt(120),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TONNAGE", domainErr.Code)
		fx.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects a second allocation on the same confirmation", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		cv := newActiveTestConfirmation(t, 500)
		_, err := order.AddAllocation(cv, decimal.NewFromInt(30), time.Now())
		require.NoError(t, err)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)

		_, err = fx.svc.AddAllocation(ctx, order.ID, AddAllocationRequest{
			ConfirmationID: cv.ID, Tonnage: decimal.NewFromInt(20),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_ALLOCATION", domainErr.Code)
	})

	t.Run("rejects a product mismatch", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		cv, err := sales.NewSalesConfirmation("CV-2025-003", uuid.New(), valueobject.ProductCocoaButter,
			campaignStart, campaignStart, campaignStart.AddDate(0, 6, 0),
			decimal.NewFromInt(500), decimal.NewFromInt(1500000))
		require.NoError(t, err)
		require.NoError(t, cv.Activate())

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)

		_, err = fx.svc.AddAllocation(ctx, order.ID, AddAllocationRequest{
			ConfirmationID: cv.ID, Tonnage: decimal.NewFromInt(20),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_TYPE_MISMATCH", domainErr.Code)
	})
}

func TestCustomerOrderService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("requires at least one transit order", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{}, nil)

		_, err := fx.svc.Confirm(ctx, order.ID)
		require.Error(t, err)
		assert.Equal(t, sales.OrderStatusDraft, order.Status)
	})

	t.Run("confirms once a transit order exists", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		ot, err := potting.NewTransitOrder("OT-00001", uuid.New(),
			valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
		require.NoError(t, err)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{*ot}, nil)
		fx.orderRepo.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := fx.svc.Confirm(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
	})
}

func TestCustomerOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to running transit orders and releases the envelopes", func(t *testing.T) {
		fx := newOrderFixture()

		cv := newActiveTestConfirmation(t, 500)
		order := newTestOrder(t, 100)
		_, err := order.AddAllocation(cv, decimal.NewFromInt(50), time.Now())
		require.NoError(t, err)

		running, err := potting.NewTransitOrder("OT-00001", uuid.New(),
			valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
		require.NoError(t, err)
		finished, err := potting.NewTransitOrder("OT-00002", uuid.New(),
			valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
		require.NoError(t, err)
		require.NoError(t, finished.Cancel("already cancelled"))

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{*running, *finished}, nil)
		fx.transitRepo.On("SaveWithLock", ctx, mock.MatchedBy(func(ot *potting.TransitOrder) bool {
			return ot.Name == "OT-00001" && ot.Status == potting.TransitOrderStatusCancelled
		})).Return(nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		fx.cvRepo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.Zero, nil)
		fx.cvRepo.On("SaveWithLock", ctx, cv).Return(nil)

		resp, err := fx.svc.Cancel(ctx, order.ID, CancelOrderRequest{Reason: "customer default"})
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		assert.True(t, cv.TonnageRestant.Equal(decimal.NewFromInt(500)))
		fx.transitRepo.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})
}

func TestCustomerOrderService_ResetToDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while potted lots exist", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		ot, err := potting.NewTransitOrder("OT-00001", uuid.New(),
			valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
		require.NoError(t, err)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{*ot}, nil)
		fx.lotRepo.On("CountPottedByTransitOrder", ctx, ot.ID).Return(int64(3), nil)

		_, err = fx.svc.ResetToDraft(ctx, order.ID)
		require.Error(t, err)
		fx.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestCustomerOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while transit orders are attached", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		ot, err := potting.NewTransitOrder("OT-00001", uuid.New(),
			valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
		require.NoError(t, err)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{*ot}, nil)

		err = fx.svc.Delete(ctx, order.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TRANSIT_ORDERS_ATTACHED", domainErr.Code)
		fx.orderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deleting a draft releases its envelopes", func(t *testing.T) {
		fx := newOrderFixture()

		cv := newActiveTestConfirmation(t, 500)
		order := newTestOrder(t, 100)
		_, err := order.AddAllocation(cv, decimal.NewFromInt(40), time.Now())
		require.NoError(t, err)

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("FindByCustomerOrder", ctx, order.ID).
			Return([]potting.TransitOrder{}, nil)
		fx.orderRepo.On("Delete", ctx, order.ID).Return(nil)
		fx.cvRepo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		fx.cvRepo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.Zero, nil)
		fx.cvRepo.On("SaveWithLock", ctx, cv).Return(nil)

		require.NoError(t, fx.svc.Delete(ctx, order.ID))
		fx.cvRepo.AssertExpectations(t)
	})
}

func TestCustomerOrderService_MarkDone(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while transit orders are still running", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		order.Status = sales.OrderStatusInProgress

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("CountUnfinishedByCustomerOrder", ctx, order.ID).Return(int64(1), nil)

		_, err := fx.svc.MarkDone(ctx, order.ID)
		require.Error(t, err)
		assert.Equal(t, sales.OrderStatusInProgress, order.Status)
	})

	t.Run("completes once every transit order is done", func(t *testing.T) {
		fx := newOrderFixture()

		order := newTestOrder(t, 100)
		order.Status = sales.OrderStatusInProgress

		fx.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
		fx.transitRepo.On("CountUnfinishedByCustomerOrder", ctx, order.ID).Return(int64(0), nil)
		fx.orderRepo.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := fx.svc.MarkDone(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "done", resp.Status)
	})
}
