package campaign

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/campaign"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of campaign.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *MockRepository) FindByCode(ctx context.Context, code string) (*campaign.Campaign, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *MockRepository) FindCurrent(ctx context.Context, now time.Time) (*campaign.Campaign, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*campaign.Campaign), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]campaign.Campaign, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]campaign.Campaign), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestService_CreateForYear(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the crop-year campaign with its duty rate", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("FindByCode", ctx, "2025").
			Return(nil, shared.NewDomainError("NOT_FOUND", "not found"))
		repo.On("Save", ctx, mock.AnythingOfType("*campaign.Campaign")).Return(nil)

		rate := decimal.NewFromFloat(14.6)
		resp, err := svc.CreateForYear(ctx, CreateCampaignRequest{
			Year: 2025, ExportDutyRate: &rate, Note: "campagne 2025-2026",
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-2026", resp.Name)
		assert.Equal(t, "2025", resp.Code)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), resp.DateStart)
		assert.Equal(t, time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC), resp.DateEnd)
		assert.True(t, resp.ExportDutyRate.Equal(rate))
	})

	t.Run("a second campaign for the same year is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		existing, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		repo.On("FindByCode", ctx, "2025").Return(existing, nil)

		_, err = svc.CreateForYear(ctx, CreateCampaignRequest{Year: 2025})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("an out-of-range year is rejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("FindByCode", ctx, "1999").
			Return(nil, shared.NewDomainError("NOT_FOUND", "not found"))

		_, err := svc.CreateForYear(ctx, CreateCampaignRequest{Year: 1999})
		require.Error(t, err)
	})
}

func TestService_SetOfficialPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("records one council price per product", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		repo.On("FindByID", ctx, c.ID).Return(c, nil)
		repo.On("Save", ctx, c).Return(nil)

		resp, err := svc.SetOfficialPrice(ctx, c.ID, SetOfficialPriceRequest{
			ProductType: "cocoa_mass", PricePerTon: decimal.NewFromInt(1500000),
		})
		require.NoError(t, err)
		assert.True(t, resp.OfficialPrices["cocoa_mass"].Equal(decimal.NewFromInt(1500000)))
	})

	t.Run("the catch-all product carries no price", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		_, err = svc.SetOfficialPrice(ctx, c.ID, SetOfficialPriceRequest{
			ProductType: "all", PricePerTon: decimal.NewFromInt(1500000),
		})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("a closed campaign cannot be repriced", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		c.Close()
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		_, err = svc.SetOfficialPrice(ctx, c.ID, SetOfficialPriceRequest{
			ProductType: "cocoa_mass", PricePerTon: decimal.NewFromInt(1500000),
		})
		require.Error(t, err)
	})
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("activate then close", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		repo.On("FindByID", ctx, c.ID).Return(c, nil)
		repo.On("Save", ctx, c).Return(nil)

		resp, err := svc.Activate(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)

		resp, err = svc.Close(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "closed", resp.Status)
	})

	t.Run("a closed campaign cannot return to draft", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		c.Close()
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		_, err = svc.ResetToDraft(ctx, c.ID)
		require.Error(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("only a draft campaign can be deleted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		require.NoError(t, c.Activate())
		repo.On("FindByID", ctx, c.ID).Return(c, nil)

		err = svc.Delete(ctx, c.ID)
		require.Error(t, err)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes a draft campaign", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		c, err := campaign.NewForYear(2025)
		require.NoError(t, err)
		repo.On("FindByID", ctx, c.ID).Return(c, nil)
		repo.On("Delete", ctx, c.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, c.ID))
		repo.AssertExpectations(t)
	})
}

func TestService_GetCurrent(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	svc := NewService(repo)

	c, err := campaign.NewForYear(2025)
	require.NoError(t, err)
	require.NoError(t, c.Activate())

	now := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	repo.On("FindCurrent", ctx, now).Return(c, nil)

	resp, err := svc.GetCurrent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", resp.Name)
	assert.True(t, c.IsCurrent(now))
}
