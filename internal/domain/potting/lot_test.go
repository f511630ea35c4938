package potting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLot(t *testing.T, target int64) *Lot {
	t.Helper()
	lot, err := NewLot("MC2025001", uuid.New(), valueobject.ProductCocoaMass, decimal.NewFromInt(target))
	require.NoError(t, err)
	return lot
}

func TestNewLot(t *testing.T) {
	t.Run("creates a draft lot", func(t *testing.T) {
		lot := newTestLot(t, 25)
		assert.Equal(t, LotStatusDraft, lot.Status)
		assert.True(t, lot.CurrentTonnage.IsZero())
		assert.False(t, lot.HasProduction())
	})

	t.Run("rejects a target above the ceiling", func(t *testing.T) {
		_, err := NewLot("MC2025002", uuid.New(), valueobject.ProductCocoaMass, decimal.NewFromInt(51))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 50")
	})

	t.Run("rejects the all product wildcard", func(t *testing.T) {
		_, err := NewLot("MC2025003", uuid.New(), valueobject.ProductAll, decimal.NewFromInt(25))
		require.Error(t, err)
	})
}

func TestAddProduction(t *testing.T) {
	now := time.Now()

	t.Run("accumulates production and moves to in_production", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(8), now, "Kouassi", "")
		require.NoError(t, err)
		assert.Equal(t, LotStatusInProduction, lot.Status)

		_, err = lot.AddProduction(decimal.NewFromInt(11), now, "Kouassi", "shift 2")
		require.NoError(t, err)
		assert.True(t, lot.CurrentTonnage.Equal(decimal.NewFromInt(19)))
		assert.Len(t, lot.ProductionLine, 2)
		assert.True(t, lot.FillPercentage().Equal(decimal.NewFromInt(95)))
		assert.True(t, lot.IsFull())
	})

	t.Run("one addition cannot pass 110 percent of the target", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(19), now, "", "")
		require.NoError(t, err)

		// 19 + 4 = 23 lands past the 22.0 T ceiling
		_, err = lot.AddProduction(decimal.NewFromInt(4), now, "", "")
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "OVERFILL", derr.Code)
		assert.Contains(t, err.Error(), "22 T ceiling")

		// 19 + 2.9 = 21.9 stays under the ceiling
		_, err = lot.AddProduction(decimal.NewFromFloat(2.9), now, "", "")
		require.NoError(t, err)
		assert.True(t, lot.CurrentTonnage.Equal(decimal.NewFromFloat(21.9)))
		assert.True(t, lot.IsOverfilled())
	})

	t.Run("an addition landing exactly on the ceiling is accepted", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(22), now, "", "")
		require.NoError(t, err)
		assert.True(t, lot.FillPercentage().Equal(decimal.NewFromInt(110)))
	})

	t.Run("rejects non-positive tonnage", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.Zero, now, "", "")
		require.Error(t, err)
	})

	t.Run("rejects production on a ready lot", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(20), now, "", "")
		require.NoError(t, err)
		require.NoError(t, lot.MarkReady())

		_, err = lot.AddProduction(decimal.NewFromInt(1), now, "", "")
		require.Error(t, err)
	})
}

func TestMarkReady(t *testing.T) {
	now := time.Now()

	t.Run("requires 95 percent fill", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromFloat(18.9), now, "", "")
		require.NoError(t, err)

		err = lot.MarkReady()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "94.5%")

		_, err = lot.AddProduction(decimal.NewFromFloat(0.1), now, "", "")
		require.NoError(t, err)
		require.NoError(t, lot.MarkReady())
		assert.Equal(t, LotStatusReady, lot.Status)
	})

	t.Run("force ready bypasses the fill gate but not an empty lot", func(t *testing.T) {
		lot := newTestLot(t, 20)
		assert.Error(t, lot.ForceReady()) // still draft

		_, err := lot.AddProduction(decimal.NewFromInt(5), now, "", "")
		require.NoError(t, err)
		require.NoError(t, lot.ForceReady())
		assert.Equal(t, LotStatusReady, lot.Status)
	})
}

func TestConfirmPotting(t *testing.T) {
	now := time.Now()

	readyLot := func(t *testing.T) *Lot {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(20), now, "", "")
		require.NoError(t, err)
		require.NoError(t, lot.MarkReady())
		return lot
	}

	t.Run("pots a ready lot and raises an event", func(t *testing.T) {
		lot := readyLot(t)
		containerID := uuid.New()

		require.NoError(t, lot.ConfirmPotting(containerID, "Diabaté", now))
		assert.Equal(t, LotStatusPotted, lot.Status)
		assert.Equal(t, containerID, *lot.ContainerID)
		assert.NotNil(t, lot.DatePotted)

		events := lot.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, EventTypeLotPotted, events[len(events)-1].EventType())
	})

	t.Run("requires a container", func(t *testing.T) {
		lot := readyLot(t)
		err := lot.ConfirmPotting(uuid.Nil, "", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "container is required")
	})

	t.Run("requires ready state", func(t *testing.T) {
		lot := newTestLot(t, 20)
		err := lot.ConfirmPotting(uuid.New(), "", now)
		require.Error(t, err)
	})

	t.Run("potted is terminal", func(t *testing.T) {
		lot := readyLot(t)
		require.NoError(t, lot.ConfirmPotting(uuid.New(), "", now))
		assert.Error(t, lot.ResetToDraft())
	})
}

func TestLotResetToDraft(t *testing.T) {
	now := time.Now()

	t.Run("a lot with production returns to in_production", func(t *testing.T) {
		lot := newTestLot(t, 20)
		_, err := lot.AddProduction(decimal.NewFromInt(20), now, "", "")
		require.NoError(t, err)
		require.NoError(t, lot.MarkReady())

		require.NoError(t, lot.ResetToDraft())
		assert.Equal(t, LotStatusInProduction, lot.Status)
	})

	t.Run("an empty lot returns to draft", func(t *testing.T) {
		lot := newTestLot(t, 20)
		lot.Status = LotStatusInProduction
		require.NoError(t, lot.ResetToDraft())
		assert.Equal(t, LotStatusDraft, lot.Status)
	})
}
