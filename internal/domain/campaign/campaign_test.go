package campaign

import (
	"testing"
	"time"

	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForYear(t *testing.T) {
	t.Run("covers October 1st to September 30th", func(t *testing.T) {
		c, err := NewForYear(2025)
		require.NoError(t, err)
		require.NotNil(t, c)

		assert.Equal(t, "2025-2026", c.Name)
		assert.Equal(t, "2025", c.Code)
		assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), c.DateStart)
		assert.Equal(t, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), c.DateEnd)
		assert.Equal(t, StatusDraft, c.Status)
	})

	t.Run("fails with an out-of-range year", func(t *testing.T) {
		_, err := NewForYear(1999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid campaign year")
	})
}

func TestNew(t *testing.T) {
	t.Run("fails when end is not after start", func(t *testing.T) {
		start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
		_, err := New(start, start)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "end date must be after start date")
	})
}

func TestCampaignDutyRateAndPrices(t *testing.T) {
	c, err := NewForYear(2025)
	require.NoError(t, err)

	t.Run("sets a duty rate within bounds", func(t *testing.T) {
		err := c.SetExportDutyRate(decimal.NewFromFloat(14.6))
		require.NoError(t, err)
		assert.True(t, c.ExportDutyRate.Equal(decimal.NewFromFloat(14.6)))
	})

	t.Run("rejects a duty rate above 100", func(t *testing.T) {
		err := c.SetExportDutyRate(decimal.NewFromInt(101))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "between 0 and 100")
	})

	t.Run("records official prices per concrete product", func(t *testing.T) {
		err := c.SetOfficialPrice(valueobject.ProductCocoaButter, decimal.NewFromInt(3200000))
		require.NoError(t, err)

		price, ok := c.OfficialPriceFor(valueobject.ProductCocoaButter)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.NewFromInt(3200000)))

		_, ok = c.OfficialPriceFor(valueobject.ProductCocoaPowder)
		assert.False(t, ok)
	})

	t.Run("rejects an official price for the all wildcard", func(t *testing.T) {
		err := c.SetOfficialPrice(valueobject.ProductAll, decimal.NewFromInt(100))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concrete product types")
	})
}

func TestCampaignLifecycle(t *testing.T) {
	t.Run("activates and resets while not closed", func(t *testing.T) {
		c, err := NewForYear(2025)
		require.NoError(t, err)

		require.NoError(t, c.Activate())
		assert.Equal(t, StatusActive, c.Status)

		require.NoError(t, c.ResetToDraft())
		assert.Equal(t, StatusDraft, c.Status)
	})

	t.Run("closed campaign is immutable", func(t *testing.T) {
		c, err := NewForYear(2025)
		require.NoError(t, err)
		c.Close()
		assert.Equal(t, StatusClosed, c.Status)

		assert.Error(t, c.Activate())
		assert.Error(t, c.ResetToDraft())
		assert.Error(t, c.SetExportDutyRate(decimal.NewFromInt(10)))
		assert.Error(t, c.SetOfficialPrice(valueobject.ProductCocoaMass, decimal.NewFromInt(100)))
	})
}

func TestCampaignPeriod(t *testing.T) {
	c, err := NewForYear(2025)
	require.NoError(t, err)

	t.Run("IsCurrent is inclusive of both bounds", func(t *testing.T) {
		assert.True(t, c.IsCurrent(c.DateStart))
		assert.True(t, c.IsCurrent(c.DateEnd))
		assert.True(t, c.IsCurrent(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))
		assert.False(t, c.IsCurrent(c.DateStart.Add(-time.Hour)))
		assert.False(t, c.IsCurrent(c.DateEnd.Add(time.Hour)))
	})

	t.Run("Covers requires the full period inside the campaign", func(t *testing.T) {
		assert.True(t, c.Covers(
			time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, c.Covers(
			time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))
	})
}
