package potting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LotService handles lot business operations. Every write refreshes the lot
// aggregates on the owning transit order, and potting the last lot of an
// order cascades into the order's readiness.
type LotService struct {
	repo           potting.LotRepository
	transitRepo    potting.TransitOrderRepository
	containerRepo  potting.ContainerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewLotService creates a new LotService
func NewLotService(
	repo potting.LotRepository,
	transitRepo potting.TransitOrderRepository,
	containerRepo potting.ContainerRepository,
	logger *zap.Logger,
) *LotService {
	return &LotService{
		repo:          repo,
		transitRepo:   transitRepo,
		containerRepo: containerRepo,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LotService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves a lot by ID
func (s *LotService) GetByID(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// List retrieves lots with filtering and pagination
func (s *LotService) List(ctx context.Context, filter LotListFilter) ([]LotResponse, error) {
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
	if filter.TransitOrderID != nil {
		f.Filters["transit_order_id"] = *filter.TransitOrderID
	}
	if filter.ContainerID != nil {
		f.Filters["container_id"] = *filter.ContainerID
	}

	lots, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]LotResponse, 0, len(lots))
	for i := range lots {
		responses = append(responses, ToLotResponse(&lots[i]))
	}
	return responses, nil
}

// AddProduction records a production addition and refreshes the owning
// transit order's aggregates. An overfilled lot is logged, not rejected.
func (s *LotService) AddProduction(ctx context.Context, id uuid.UUID, req AddProductionRequest) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	if _, err := lot.AddProduction(req.Tonnage, date, req.Operator, req.Remark); err != nil {
		return nil, err
	}
	if lot.IsOverfilled() {
		s.logger.Warn("lot filled past the overfill warning level",
			zap.String("lot", lot.Name),
			zap.String("fill_percentage", lot.FillPercentage().Round(2).String()))
	}
	if err := s.repo.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	if err := s.refreshOrderStats(ctx, lot.TransitOrderID); err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// MarkReady flags a full lot as ready for potting
func (s *LotService) MarkReady(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lot.MarkReady(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ForceReady bypasses the fill gate on manager override
func (s *LotService) ForceReady(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lot.ForceReady(); err != nil {
		return nil, err
	}
	s.logger.Info("lot forced ready below fill tolerance",
		zap.String("lot", lot.Name),
		zap.String("fill_percentage", lot.FillPercentage().Round(2).String()))
	if err := s.repo.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// ConfirmPotting pots a ready lot into a container. The container's capacity
// gate is checked first; potting the last lot of a transit order in
// production moves the order to ready_validation.
func (s *LotService) ConfirmPotting(ctx context.Context, id uuid.UUID, req ConfirmPottingRequest) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	container, err := s.containerRepo.FindByID(ctx, req.ContainerID)
	if err != nil {
		return nil, err
	}
	if err := container.AcceptLot(lot.CurrentTonnage); err != nil {
		return nil, err
	}
	if err := lot.ConfirmPotting(container.ID, req.PottedBy, time.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	if err := s.containerRepo.SaveWithLock(ctx, container); err != nil {
		return nil, err
	}
	s.cascadeOrderReadiness(ctx, lot.TransitOrderID)
	s.publishEvents(ctx, lot)

	resp := ToLotResponse(lot)
	return &resp, nil
}

// ResetToDraft reverses the lot state. Potted lots never reset.
func (s *LotService) ResetToDraft(ctx context.Context, id uuid.UUID) (*LotResponse, error) {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lot.ResetToDraft(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, lot); err != nil {
		return nil, err
	}
	resp := ToLotResponse(lot)
	return &resp, nil
}

// Delete removes an unpotted lot and refreshes the order aggregates
func (s *LotService) Delete(ctx context.Context, id uuid.UUID) error {
	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lot.Status == potting.LotStatusPotted {
		return shared.NewDomainError("INVALID_STATE",
			"Lot "+lot.Name+" is potted and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.refreshOrderStats(ctx, lot.TransitOrderID)
}

// refreshOrderStats pushes the lot aggregates onto the owning transit order
func (s *LotService) refreshOrderStats(ctx context.Context, transitOrderID uuid.UUID) error {
	ot, err := s.transitRepo.FindByID(ctx, transitOrderID)
	if err != nil {
		return err
	}
	stats, err := s.repo.StatsByTransitOrder(ctx, transitOrderID)
	if err != nil {
		return err
	}
	ot.ApplyLotStats(stats.LotCount, stats.PottedLotCount, stats.CurrentTonnage)
	return s.transitRepo.SaveWithLock(ctx, ot)
}

// cascadeOrderReadiness refreshes the order aggregates and, when every lot is
// potted and the order is still in production, marks it ready for validation.
// Failure is logged, the potting itself stands.
func (s *LotService) cascadeOrderReadiness(ctx context.Context, transitOrderID uuid.UUID) {
	ot, err := s.transitRepo.FindByID(ctx, transitOrderID)
	if err != nil {
		s.logger.Warn("could not load transit order for readiness cascade",
			zap.String("transit_order_id", transitOrderID.String()), zap.Error(err))
		return
	}
	stats, err := s.repo.StatsByTransitOrder(ctx, transitOrderID)
	if err != nil {
		s.logger.Warn("could not aggregate lot stats",
			zap.String("transit_order", ot.Name), zap.Error(err))
		return
	}
	ot.ApplyLotStats(stats.LotCount, stats.PottedLotCount, stats.CurrentTonnage)

	if stats.LotCount > 0 && stats.PottedLotCount == stats.LotCount &&
		ot.Status == potting.TransitOrderStatusInProgress {
		if err := ot.MarkReady(); err != nil {
			s.logger.Warn("could not mark transit order ready",
				zap.String("transit_order", ot.Name), zap.Error(err))
		} else {
			s.logger.Info("all lots potted, transit order ready for validation",
				zap.String("transit_order", ot.Name))
		}
	}
	if err := s.transitRepo.SaveWithLock(ctx, ot); err != nil {
		s.logger.Warn("could not save transit order aggregates",
			zap.String("transit_order", ot.Name), zap.Error(err))
	}
}

// publishEvents publishes accumulated domain events
func (s *LotService) publishEvents(ctx context.Context, lot *potting.Lot) {
	if s.eventPublisher == nil {
		lot.ClearDomainEvents()
		return
	}
	for _, event := range lot.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	lot.ClearDomainEvents()
}
