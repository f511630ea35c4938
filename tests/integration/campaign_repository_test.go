package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potting/backend/internal/domain/campaign"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/potting/backend/internal/infrastructure/persistence"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func TestCampaignRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	repo := persistence.NewGormCampaignRepository(tdb.DB)
	ctx := context.Background()

	t.Run("Save and FindByID", func(t *testing.T) {
		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		require.NoError(t, c.SetExportDutyRate(decimal.NewFromFloat(14.6)))
		require.NoError(t, c.SetOfficialPrice(valueobject.ProductCocoaMass, decimal.NewFromInt(2600)))
		require.NoError(t, c.SetOfficialPrice(valueobject.ProductCocoaButter, decimal.NewFromInt(5400)))

		require.NoError(t, repo.Save(ctx, c))

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026", found.Name)
		assert.Equal(t, "2025", found.Code)
		assert.Equal(t, campaign.StatusDraft, found.Status)
		assert.True(t, found.ExportDutyRate.Equal(decimal.NewFromFloat(14.6)))

		price, ok := found.OfficialPriceFor(valueobject.ProductCocoaMass)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.NewFromInt(2600)))

		byCode, err := repo.FindByCode(ctx, "2025")
		require.NoError(t, err)
		assert.Equal(t, c.ID, byCode.ID)
	})

	t.Run("FindCurrent", func(t *testing.T) {
		c, err := campaign.NewForYear(2030)
		require.NoError(t, err)
		require.NoError(t, c.Activate())
		require.NoError(t, repo.Save(ctx, c))

		current, err := repo.FindCurrent(ctx, c.DateStart.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, c.ID, current.ID)

		// Outside the campaign window nothing is current.
		_, err = repo.FindCurrent(ctx, c.DateEnd.Add(24*time.Hour))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Unique code", func(t *testing.T) {
		first, err := campaign.NewForYear(2040)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		second, err := campaign.NewForYear(2040)
		require.NoError(t, err)
		assert.Error(t, repo.Save(ctx, second), "duplicate campaign code must be rejected")
	})

	t.Run("Delete", func(t *testing.T) {
		c, err := campaign.NewForYear(2050)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, c))
		require.NoError(t, repo.Delete(ctx, c.ID))

		_, err = repo.FindByID(ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
