package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// campaignStart anchors fixtures one month in the past so their six-month
// validity window always covers the test run.
var campaignStart = time.Now().UTC().AddDate(0, -1, 0).Truncate(24 * time.Hour)

func newTestConfirmation(t *testing.T, tonnage int64) *sales.SalesConfirmation {
	t.Helper()
	cv, err := sales.NewSalesConfirmation("CV-2025-001", uuid.New(), valueobject.ProductCocoaMass,
		campaignStart, campaignStart, campaignStart.AddDate(0, 6, 0),
		decimal.NewFromInt(tonnage), decimal.NewFromInt(1500000))
	require.NoError(t, err)
	cv.ClearDomainEvents()
	return cv
}

func newActiveTestConfirmation(t *testing.T, tonnage int64) *sales.SalesConfirmation {
	t.Helper()
	cv := newTestConfirmation(t, tonnage)
	require.NoError(t, cv.Activate())
	cv.ClearDomainEvents()
	return cv
}

func TestConfirmationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a draft confirmation", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())
		publisher := &capturingPublisher{}
		svc.SetEventPublisher(publisher)

		repo.On("FindByReference", ctx, "CV-2025-007").
			Return(nil, shared.NewDomainError("NOT_FOUND", "not found"))
		repo.On("Save", ctx, mock.AnythingOfType("*sales.SalesConfirmation")).Return(nil)

		resp, err := svc.Create(ctx, CreateConfirmationRequest{
			Reference:       "CV-2025-007",
			CampaignID:      uuid.New(),
			ProductType:     "cocoa_mass",
			DateEmission:    campaignStart,
			DateStart:       campaignStart,
			DateEnd:         campaignStart.AddDate(0, 6, 0),
			TonnageAutorise: decimal.NewFromInt(500),
			PrixTonnage:     decimal.NewFromInt(1500000),
			Note:            "campagne principale",
		})
		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		assert.True(t, resp.TonnageRestant.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, "campagne principale", resp.Note)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, sales.EventTypeConfirmationCreated, publisher.events[0].EventType())
	})

	t.Run("a duplicate reference is rejected", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		existing := newTestConfirmation(t, 500)
		repo.On("FindByReference", ctx, "CV-2025-001").Return(existing, nil)

		_, err := svc.Create(ctx, CreateConfirmationRequest{
			Reference:       "CV-2025-001",
			CampaignID:      uuid.New(),
			ProductType:     "cocoa_mass",
			DateEmission:    campaignStart,
			DateStart:       campaignStart,
			DateEnd:         campaignStart.AddDate(0, 6, 0),
			TonnageAutorise: decimal.NewFromInt(500),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestConfirmationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while active orders draw on the envelope", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		cv := newActiveTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("CountActiveOrders", ctx, cv.ID).Return(int64(2), nil)

		_, err := svc.Cancel(ctx, cv.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ORDERS_ATTACHED", domainErr.Code)
		assert.Equal(t, sales.ConfirmationStatusActive, cv.Status)
	})

	t.Run("cancels when nothing is attached", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())
		publisher := &capturingPublisher{}
		svc.SetEventPublisher(publisher)

		cv := newActiveTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("CountActiveOrders", ctx, cv.ID).Return(int64(0), nil)
		repo.On("SaveWithLock", ctx, cv).Return(nil)

		resp, err := svc.Cancel(ctx, cv.ID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", resp.Status)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, sales.EventTypeConfirmationCancelled, publisher.events[0].EventType())
	})
}

func TestConfirmationService_ExtendValidity(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes the end date one month past today for an expired confirmation", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		cv := newActiveTestConfirmation(t, 500)
		require.NoError(t, cv.MarkExpired())
		cv.ClearDomainEvents()

		now := cv.DateEnd.AddDate(0, 0, 10)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("SaveWithLock", ctx, cv).Return(nil)

		resp, err := svc.ExtendValidity(ctx, cv.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, now.AddDate(0, 1, 0), resp.DateEnd)
	})

	t.Run("a draft confirmation cannot be extended", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		cv := newTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)

		_, err := svc.ExtendValidity(ctx, cv.ID, campaignStart)
		require.Error(t, err)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestConfirmationService_RefreshEnvelope(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes the aggregates from the allocation rows", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		cv := newActiveTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.NewFromInt(350), nil)
		repo.On("SaveWithLock", ctx, cv).Return(nil)

		require.NoError(t, svc.RefreshEnvelope(ctx, cv.ID))
		assert.True(t, cv.TonnageUtilise.Equal(decimal.NewFromInt(350)))
		assert.True(t, cv.TonnageRestant.Equal(decimal.NewFromInt(150)))
		assert.True(t, cv.TonnageProgress.Equal(decimal.NewFromInt(70)))
		assert.Equal(t, sales.ConfirmationStatusActive, cv.Status)
	})

	t.Run("an exhausted envelope flips the confirmation to consumed", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())
		publisher := &capturingPublisher{}
		svc.SetEventPublisher(publisher)

		cv := newActiveTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.NewFromInt(500), nil)
		repo.On("SaveWithLock", ctx, cv).Return(nil)

		require.NoError(t, svc.RefreshEnvelope(ctx, cv.ID))
		assert.Equal(t, sales.ConfirmationStatusConsumed, cv.Status)
		require.Len(t, publisher.events, 1)
		assert.Equal(t, sales.EventTypeConfirmationConsumed, publisher.events[0].EventType())
	})

	t.Run("an overrun total is rejected before any write", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		cv := newActiveTestConfirmation(t, 500)
		repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
		repo.On("SumAllocatedTonnage", ctx, cv.ID).Return(decimal.NewFromInt(501), nil)

		err := svc.RefreshEnvelope(ctx, cv.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_TONNAGE", domainErr.Code)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestConfirmationService_SweepExpiration(t *testing.T) {
	ctx := context.Background()

	t.Run("expires and consumes in one pass", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		expired := newActiveTestConfirmation(t, 500)
		exhausted := newActiveTestConfirmation(t, 100)
		require.NoError(t, exhausted.ApplyUsedTonnage(decimal.NewFromInt(100)))

		now := campaignStart.AddDate(0, 7, 0)
		repo.On("FindActiveExpiredBefore", ctx, now).Return([]sales.SalesConfirmation{*expired}, nil)
		repo.On("FindActiveExhausted", ctx).Return([]sales.SalesConfirmation{*exhausted}, nil)
		repo.On("SaveWithLock", ctx, mock.AnythingOfType("*sales.SalesConfirmation")).Return(nil)

		result, err := svc.SweepExpiration(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Expired)
		assert.Equal(t, 1, result.Consumed)
		assert.Empty(t, result.Failed)
	})

	t.Run("a failing save never aborts the batch", func(t *testing.T) {
		repo := new(MockConfirmationRepository)
		svc := NewConfirmationService(repo, zap.NewNop())

		first := newActiveTestConfirmation(t, 500)
		second := newActiveTestConfirmation(t, 300)
		second.Reference = "CV-2025-002"

		now := campaignStart.AddDate(0, 7, 0)
		repo.On("FindActiveExpiredBefore", ctx, now).
			Return([]sales.SalesConfirmation{*first, *second}, nil)
		repo.On("SaveWithLock", ctx, mock.MatchedBy(func(cv *sales.SalesConfirmation) bool {
			return cv.Reference == "CV-2025-001"
		})).Return(shared.NewDomainError("VERSION_CONFLICT", "stale version"))
		repo.On("SaveWithLock", ctx, mock.MatchedBy(func(cv *sales.SalesConfirmation) bool {
			return cv.Reference == "CV-2025-002"
		})).Return(nil)
		repo.On("FindActiveExhausted", ctx).Return([]sales.SalesConfirmation{}, nil)

		result, err := svc.SweepExpiration(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Expired)
		assert.Equal(t, []string{"CV-2025-001"}, result.Failed)
	})
}

func TestConfirmationService_Duplicate(t *testing.T) {
	ctx := context.Background()

	repo := new(MockConfirmationRepository)
	svc := NewConfirmationService(repo, zap.NewNop())

	cv := newActiveTestConfirmation(t, 500)
	require.NoError(t, cv.ApplyUsedTonnage(decimal.NewFromInt(200)))

	repo.On("FindByID", ctx, cv.ID).Return(cv, nil)
	repo.On("FindByReference", ctx, "CV-2025-009").
		Return(nil, shared.NewDomainError("NOT_FOUND", "not found"))
	repo.On("Save", ctx, mock.AnythingOfType("*sales.SalesConfirmation")).Return(nil)

	resp, err := svc.Duplicate(ctx, cv.ID, DuplicateConfirmationRequest{NewReference: "CV-2025-009"})
	require.NoError(t, err)
	assert.Equal(t, "CV-2025-009", resp.Reference)
	assert.Equal(t, "draft", resp.Status)
	assert.True(t, resp.TonnageUtilise.IsZero())
	assert.True(t, resp.TonnageRestant.Equal(decimal.NewFromInt(500)))
}
