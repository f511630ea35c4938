package potting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type lotFixture struct {
	repo          *MockLotRepository
	transitRepo   *MockTransitOrderRepository
	containerRepo *MockContainerRepository
	svc           *LotService
}

func newLotFixture() *lotFixture {
	f := &lotFixture{
		repo:          new(MockLotRepository),
		transitRepo:   new(MockTransitOrderRepository),
		containerRepo: new(MockContainerRepository),
	}
	f.svc = NewLotService(f.repo, f.transitRepo, f.containerRepo, zap.NewNop())
	return f
}

func newProductionOrder(t *testing.T, lotCount int) *potting.TransitOrder {
	t.Helper()
	ot, err := potting.NewTransitOrder("OT-00050", uuid.New(),
		valueobject.ProductCocoaMass, decimal.NewFromInt(50), decimal.NewFromInt(1800000))
	require.NoError(t, err)
	require.NoError(t, ot.LinkFormule(uuid.New()))
	require.NoError(t, ot.ConfirmTaxesPaid("CHQ-1", time.Now()))
	ot.MarkLotsGenerated(lotCount)
	require.NoError(t, ot.StartProduction())
	ot.ClearDomainEvents()
	return ot
}

func newFilledLot(t *testing.T, transitOrderID uuid.UUID, target, current int64) *potting.Lot {
	t.Helper()
	lot, err := potting.NewLot("MC00010", transitOrderID, valueobject.ProductCocoaMass,
		decimal.NewFromInt(target))
	require.NoError(t, err)
	if current > 0 {
		_, err = lot.AddProduction(decimal.NewFromInt(current), time.Now(), "y.bamba", "")
		require.NoError(t, err)
	}
	return lot
}

func TestLotService_AddProduction(t *testing.T) {
	ctx := context.Background()

	t.Run("records the addition and refreshes the order aggregates", func(t *testing.T) {
		fx := newLotFixture()

		ot := newProductionOrder(t, 2)
		lot := newFilledLot(t, ot.ID, 25, 0)
		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		fx.repo.On("SaveWithLock", ctx, lot).Return(nil)
		fx.transitRepo.On("FindByID", ctx, ot.ID).Return(ot, nil)
		fx.repo.On("StatsByTransitOrder", ctx, ot.ID).Return(potting.LotStats{
			LotCount: 2, PottedLotCount: 0, CurrentTonnage: decimal.NewFromInt(12),
		}, nil)
		fx.transitRepo.On("SaveWithLock", ctx, ot).Return(nil)

		resp, err := fx.svc.AddProduction(ctx, lot.ID, AddProductionRequest{
			Tonnage: decimal.NewFromInt(12), Operator: "y.bamba",
		})
		require.NoError(t, err)
		assert.Equal(t, "in_production", resp.Status)
		assert.True(t, resp.CurrentTonnage.Equal(decimal.NewFromInt(12)))
		assert.True(t, ot.CurrentTonnage.Equal(decimal.NewFromInt(12)))
	})

	t.Run("rejects an addition past the single-addition ceiling", func(t *testing.T) {
		fx := newLotFixture()

		lot := newFilledLot(t, uuid.New(), 20, 19)
		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		_, err := fx.svc.AddProduction(ctx, lot.ID, AddProductionRequest{
			Tonnage: decimal.NewFromInt(4),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ceiling")
		fx.repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestLotService_ConfirmPotting(t *testing.T) {
	ctx := context.Background()

	newReadyLot := func(t *testing.T, transitOrderID uuid.UUID) *potting.Lot {
		t.Helper()
		lot := newFilledLot(t, transitOrderID, 25, 25)
		require.NoError(t, lot.MarkReady())
		return lot
	}

	t.Run("pots the lot and loads the container", func(t *testing.T) {
		fx := newLotFixture()
		publisher := &capturingPublisher{}
		fx.svc.SetEventPublisher(publisher)

		ot := newProductionOrder(t, 2)
		lot := newReadyLot(t, ot.ID)
		container, err := potting.NewContainer("MSCU1234567", potting.ContainerType20, decimal.Zero)
		require.NoError(t, err)

		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		fx.containerRepo.On("FindByID", ctx, container.ID).Return(container, nil)
		fx.repo.On("SaveWithLock", ctx, lot).Return(nil)
		fx.containerRepo.On("SaveWithLock", ctx, container).Return(nil)
		fx.transitRepo.On("FindByID", ctx, ot.ID).Return(ot, nil)
		fx.repo.On("StatsByTransitOrder", ctx, ot.ID).Return(potting.LotStats{
			LotCount: 2, PottedLotCount: 1, CurrentTonnage: decimal.NewFromInt(25),
		}, nil)
		fx.transitRepo.On("SaveWithLock", ctx, ot).Return(nil)

		resp, err := fx.svc.ConfirmPotting(ctx, lot.ID, ConfirmPottingRequest{
			ContainerID: container.ID, PottedBy: "k.kone",
		})
		require.NoError(t, err)
		assert.Equal(t, "potted", resp.Status)
		assert.Equal(t, 1, container.LotCount)
		assert.Equal(t, potting.ContainerStatusLoading, container.Status)
		assert.Equal(t, potting.TransitOrderStatusInProgress, ot.Status)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, potting.EventTypeLotPotted, publisher.events[0].EventType())
	})

	t.Run("potting the last lot readies the transit order", func(t *testing.T) {
		fx := newLotFixture()

		ot := newProductionOrder(t, 2)
		lot := newReadyLot(t, ot.ID)
		container, err := potting.NewContainer("MSCU1234567", potting.ContainerType40, decimal.Zero)
		require.NoError(t, err)

		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		fx.containerRepo.On("FindByID", ctx, container.ID).Return(container, nil)
		fx.repo.On("SaveWithLock", ctx, lot).Return(nil)
		fx.containerRepo.On("SaveWithLock", ctx, container).Return(nil)
		fx.transitRepo.On("FindByID", ctx, ot.ID).Return(ot, nil)
		fx.repo.On("StatsByTransitOrder", ctx, ot.ID).Return(potting.LotStats{
			LotCount: 2, PottedLotCount: 2, CurrentTonnage: decimal.NewFromInt(50),
		}, nil)
		fx.transitRepo.On("SaveWithLock", ctx, ot).Return(nil)

		_, err = fx.svc.ConfirmPotting(ctx, lot.ID, ConfirmPottingRequest{
			ContainerID: container.ID, PottedBy: "k.kone",
		})
		require.NoError(t, err)
		assert.Equal(t, potting.TransitOrderStatusReadyValidation, ot.Status)
	})

	t.Run("a full container refuses the lot", func(t *testing.T) {
		fx := newLotFixture()

		ot := newProductionOrder(t, 2)
		lot := newReadyLot(t, ot.ID)
		container, err := potting.NewContainer("MSCU1234567", potting.ContainerType20, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, container.AcceptLot(decimal.NewFromInt(25)))

		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		fx.containerRepo.On("FindByID", ctx, container.ID).Return(container, nil)

		_, err = fx.svc.ConfirmPotting(ctx, lot.ID, ConfirmPottingRequest{
			ContainerID: container.ID, PottedBy: "k.kone",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "beyond the")
		assert.Equal(t, potting.LotStatusReady, lot.Status)
	})
}

func TestLotService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("a potted lot cannot be deleted", func(t *testing.T) {
		fx := newLotFixture()

		lot := newFilledLot(t, uuid.New(), 25, 25)
		require.NoError(t, lot.MarkReady())
		require.NoError(t, lot.ConfirmPotting(uuid.New(), "k.kone", time.Now()))

		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)

		err := fx.svc.Delete(ctx, lot.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "potted")
		fx.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deleting an unpotted lot refreshes the order aggregates", func(t *testing.T) {
		fx := newLotFixture()

		ot := newProductionOrder(t, 2)
		lot := newFilledLot(t, ot.ID, 25, 10)
		fx.repo.On("FindByID", ctx, lot.ID).Return(lot, nil)
		fx.repo.On("Delete", ctx, lot.ID).Return(nil)
		fx.transitRepo.On("FindByID", ctx, ot.ID).Return(ot, nil)
		fx.repo.On("StatsByTransitOrder", ctx, ot.ID).Return(potting.LotStats{
			LotCount: 1, PottedLotCount: 0, CurrentTonnage: decimal.Zero,
		}, nil)
		fx.transitRepo.On("SaveWithLock", ctx, ot).Return(nil)

		require.NoError(t, fx.svc.Delete(ctx, lot.ID))
		assert.Equal(t, 1, ot.LotCount)
	})
}
