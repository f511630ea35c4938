package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ConfirmationService handles sales confirmation business operations
type ConfirmationService struct {
	repo           sales.ConfirmationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(repo sales.ConfirmationRepository, logger *zap.Logger) *ConfirmationService {
	return &ConfirmationService{repo: repo, logger: logger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ConfirmationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a council confirmation in draft state
func (s *ConfirmationService) Create(ctx context.Context, req CreateConfirmationRequest) (*ConfirmationResponse, error) {
	if existing, err := s.repo.FindByReference(ctx, req.Reference); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"A confirmation with reference "+req.Reference+" already exists")
	}

	cv, err := sales.NewSalesConfirmation(req.Reference, req.CampaignID,
		valueobject.ProductType(req.ProductType),
		req.DateEmission, req.DateStart, req.DateEnd,
		req.TonnageAutorise, req.PrixTonnage)
	if err != nil {
		return nil, err
	}
	cv.Note = req.Note

	if err := s.repo.Save(ctx, cv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cv)

	resp := ToConfirmationResponse(cv, time.Now())
	return &resp, nil
}

// GetByID retrieves a confirmation by ID
func (s *ConfirmationService) GetByID(ctx context.Context, id uuid.UUID) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToConfirmationResponse(cv, time.Now())
	return &resp, nil
}

// List retrieves confirmations with filtering and pagination
func (s *ConfirmationService) List(ctx context.Context, filter ConfirmationListFilter) ([]ConfirmationResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = filter.Search
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.ProductType != "" {
		f.Filters["product_type"] = filter.ProductType
	}
	if filter.CampaignID != nil {
		f.Filters["campaign_id"] = *filter.CampaignID
	}

	confirmations, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	responses := make([]ConfirmationResponse, 0, len(confirmations))
	for i := range confirmations {
		responses = append(responses, ToConfirmationResponse(&confirmations[i], now))
	}
	return responses, nil
}

// Activate transitions a confirmation from draft to active
func (s *ConfirmationService) Activate(ctx context.Context, id uuid.UUID) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cv.Activate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, cv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cv)

	resp := ToConfirmationResponse(cv, time.Now())
	return &resp, nil
}

// Cancel cancels a confirmation. Blocked while active orders draw on it.
func (s *ConfirmationService) Cancel(ctx context.Context, id uuid.UUID) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	activeOrders, err := s.repo.CountActiveOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cv.Cancel(activeOrders); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, cv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cv)

	resp := ToConfirmationResponse(cv, time.Now())
	return &resp, nil
}

// ExtendValidity pushes the validity end one month past max(date_end, today)
// and reactivates an expired confirmation.
func (s *ConfirmationService) ExtendValidity(ctx context.Context, id uuid.UUID, now time.Time) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cv.ExtendValidity(now); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, cv); err != nil {
		return nil, err
	}
	resp := ToConfirmationResponse(cv, now)
	return &resp, nil
}

// ResetToDraft returns a cancelled confirmation to draft
func (s *ConfirmationService) ResetToDraft(ctx context.Context, id uuid.UUID) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cv.ResetToDraft(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, cv); err != nil {
		return nil, err
	}
	resp := ToConfirmationResponse(cv, time.Now())
	return &resp, nil
}

// Duplicate copies a confirmation under a new reference, draft, untouched envelope
func (s *ConfirmationService) Duplicate(ctx context.Context, id uuid.UUID, req DuplicateConfirmationRequest) (*ConfirmationResponse, error) {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByReference(ctx, req.NewReference); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"A confirmation with reference "+req.NewReference+" already exists")
	}
	dup, err := cv.Duplicate(req.NewReference)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, dup); err != nil {
		return nil, err
	}
	resp := ToConfirmationResponse(dup, time.Now())
	return &resp, nil
}

// Delete removes a draft or cancelled confirmation with no linked orders
func (s *ConfirmationService) Delete(ctx context.Context, id uuid.UUID) error {
	cv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	linked, err := s.repo.CountLinkedOrders(ctx, id)
	if err != nil {
		return err
	}
	if err := cv.CanDelete(linked); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RefreshEnvelope recomputes the stored tonnage aggregates of a confirmation
// from its allocation rows and flags an exhausted envelope as consumed.
// Called by the order side after every allocation write.
func (s *ConfirmationService) RefreshEnvelope(ctx context.Context, id uuid.UUID) error {
	return s.refreshEnvelopeWith(ctx, s.repo, id)
}

// refreshEnvelopeWith is RefreshEnvelope against an explicit repository, so
// the order side can run the refresh on a transaction-scoped repo and have an
// envelope overrun roll the allocation write back.
func (s *ConfirmationService) refreshEnvelopeWith(ctx context.Context, repo sales.ConfirmationRepository, id uuid.UUID) error {
	cv, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	used, err := repo.SumAllocatedTonnage(ctx, id)
	if err != nil {
		return err
	}
	if err := cv.ApplyUsedTonnage(used); err != nil {
		return err
	}
	if cv.Status == sales.ConfirmationStatusActive && cv.IsExhausted() {
		if err := cv.MarkConsumed(); err != nil {
			return err
		}
	}
	if err := repo.SaveWithLock(ctx, cv); err != nil {
		return err
	}
	s.publishEvents(ctx, cv)
	return nil
}

// SweepExpiration expires active confirmations whose validity ended before now
// and marks exhausted active confirmations as consumed. Failures on one record
// never abort the batch.
func (s *ConfirmationService) SweepExpiration(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	expired, err := s.repo.FindActiveExpiredBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		cv := &expired[i]
		if err := cv.MarkExpired(); err != nil {
			result.Failed = append(result.Failed, cv.Reference)
			s.logger.Warn("expiration sweep: skipping confirmation",
				zap.String("reference", cv.Reference), zap.Error(err))
			continue
		}
		if err := s.repo.SaveWithLock(ctx, cv); err != nil {
			result.Failed = append(result.Failed, cv.Reference)
			s.logger.Warn("expiration sweep: save failed",
				zap.String("reference", cv.Reference), zap.Error(err))
			continue
		}
		s.publishEvents(ctx, cv)
		result.Expired++
	}

	exhausted, err := s.repo.FindActiveExhausted(ctx)
	if err != nil {
		return result, err
	}
	for i := range exhausted {
		cv := &exhausted[i]
		if err := cv.MarkConsumed(); err != nil {
			result.Failed = append(result.Failed, cv.Reference)
			continue
		}
		if err := s.repo.SaveWithLock(ctx, cv); err != nil {
			result.Failed = append(result.Failed, cv.Reference)
			s.logger.Warn("expiration sweep: save failed",
				zap.String("reference", cv.Reference), zap.Error(err))
			continue
		}
		s.publishEvents(ctx, cv)
		result.Consumed++
	}

	s.logger.Info("confirmation sweep finished",
		zap.Int("expired", result.Expired),
		zap.Int("consumed", result.Consumed),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *ConfirmationService) publishEvents(ctx context.Context, cv *sales.SalesConfirmation) {
	if s.eventPublisher == nil {
		return
	}
	events := cv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish confirmation events",
			zap.String("reference", cv.Reference), zap.Error(err))
	}
	cv.ClearDomainEvents()
}
