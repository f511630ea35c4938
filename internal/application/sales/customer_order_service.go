package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CustomerOrderService handles customer contract business operations
type CustomerOrderService struct {
	orderRepo       sales.CustomerOrderRepository
	cvRepo          sales.ConfirmationRepository
	transitRepo     potting.TransitOrderRepository
	lotRepo         potting.LotRepository
	txScope         TransactionScope
	confirmationSvc *ConfirmationService
	logger          *zap.Logger
}

// NewCustomerOrderService creates a new CustomerOrderService
func NewCustomerOrderService(
	orderRepo sales.CustomerOrderRepository,
	cvRepo sales.ConfirmationRepository,
	transitRepo potting.TransitOrderRepository,
	lotRepo potting.LotRepository,
	txScope TransactionScope,
	confirmationSvc *ConfirmationService,
	logger *zap.Logger,
) *CustomerOrderService {
	return &CustomerOrderService{
		orderRepo:       orderRepo,
		cvRepo:          cvRepo,
		transitRepo:     transitRepo,
		lotRepo:         lotRepo,
		txScope:         txScope,
		confirmationSvc: confirmationSvc,
		logger:          logger,
	}
}

// Create registers a customer contract in draft state
func (s *CustomerOrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if existing, err := s.orderRepo.FindByReference(ctx, req.Reference); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"A contract with reference "+req.Reference+" already exists")
	}

	order, err := sales.NewCustomerOrder(req.Reference, req.CustomerID, req.CustomerName,
		valueobject.ProductType(req.ProductType), req.ContractTonnage, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if req.ExportDutyRate != nil {
		if err := order.SetExportDutyRate(*req.ExportDutyRate); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetByID retrieves a contract by ID
func (s *CustomerOrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves contracts with filtering and pagination
func (s *CustomerOrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, error) {
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
	if filter.CustomerID != nil {
		f.Filters["customer_id"] = *filter.CustomerID
	}

	orders, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, nil
}

// AddAllocation draws part of a confirmation envelope onto the contract and
// refreshes the confirmation's stored aggregates. The contract write and the
// envelope refresh run in one transaction, so an overrun detected during the
// refresh rolls the allocation back.
func (s *CustomerOrderService) AddAllocation(ctx context.Context, orderID uuid.UUID, req AddAllocationRequest) (*OrderResponse, error) {
	var resp OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		cv, err := repos.ConfirmationRepo().FindByID(ctx, req.ConfirmationID)
		if err != nil {
			return err
		}

		if _, err := order.AddAllocation(cv, req.Tonnage, time.Now()); err != nil {
			return err
		}
		s.applyTransitUsage(ctx, order)
		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := s.confirmationSvc.refreshEnvelopeWith(ctx, repos.ConfirmationRepo(), cv.ID); err != nil {
			return err
		}
		resp = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveAllocation releases a confirmation's envelope share from the contract
func (s *CustomerOrderService) RemoveAllocation(ctx context.Context, orderID, confirmationID uuid.UUID) (*OrderResponse, error) {
	var resp OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.RemoveAllocation(confirmationID); err != nil {
			return err
		}
		s.applyTransitUsage(ctx, order)
		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := s.confirmationSvc.refreshEnvelopeWith(ctx, repos.ConfirmationRepo(), confirmationID); err != nil {
			return err
		}
		resp = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// applyTransitUsage re-derives the drawn tonnage of the contract's allocations
// from its transit orders. A listing failure leaves the stored figures alone.
func (s *CustomerOrderService) applyTransitUsage(ctx context.Context, order *sales.CustomerOrder) {
	ots, err := s.transitRepo.FindByCustomerOrder(ctx, order.ID)
	if err != nil {
		s.logger.Warn("could not list transit orders for usage refresh",
			zap.String("contract", order.Reference), zap.Error(err))
		return
	}
	order.ApplyUsedTonnage(potting.UsedByContract(ots, order.ID))
}

// Confirm transitions the contract to confirmed. Requires at least one transit order.
func (s *CustomerOrderService) Confirm(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	transitOrders, err := s.transitRepo.FindByCustomerOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Confirm(int64(len(transitOrders))); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// MarkDone completes the contract once all its transit orders are done
func (s *CustomerOrderService) MarkDone(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unfinished, err := s.transitRepo.CountUnfinishedByCustomerOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.MarkDone(unfinished); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Cancel cancels the contract, cascades cancellation to its non-cancelled
// transit orders and releases the confirmation envelopes it was drawing on.
func (s *CustomerOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	transitOrders, err := s.transitRepo.FindByCustomerOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range transitOrders {
		ot := &transitOrders[i]
		if ot.Status == potting.TransitOrderStatusCancelled || ot.Status == potting.TransitOrderStatusDone {
			continue
		}
		if err := ot.Cancel("contract " + order.Reference + " cancelled"); err != nil {
			s.logger.Warn("cascade cancel skipped a transit order",
				zap.String("transit_order", ot.Name), zap.Error(err))
			continue
		}
		if err := s.transitRepo.SaveWithLock(ctx, ot); err != nil {
			s.logger.Warn("cascade cancel failed to save a transit order",
				zap.String("transit_order", ot.Name), zap.Error(err))
		}
	}

	for _, alloc := range order.Allocations {
		if err := s.confirmationSvc.RefreshEnvelope(ctx, alloc.ConfirmationID); err != nil {
			s.logger.Warn("failed to refresh a confirmation envelope after cancellation",
				zap.String("confirmation_id", alloc.ConfirmationID.String()), zap.Error(err))
		}
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ResetToDraft returns the contract to draft. Blocked while potted lots exist
// on any of its transit orders.
func (s *CustomerOrderService) ResetToDraft(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pottedLots, err := s.countPottedLots(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.ResetToDraft(pottedLots); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes a draft contract and releases its envelopes
func (s *CustomerOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != sales.OrderStatusDraft && order.Status != sales.OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			"Contract "+order.Reference+" can only be deleted in draft or cancelled state")
	}
	transitOrders, err := s.transitRepo.FindByCustomerOrder(ctx, id)
	if err != nil {
		return err
	}
	if len(transitOrders) > 0 {
		return shared.NewDomainError("TRANSIT_ORDERS_ATTACHED",
			"Contract "+order.Reference+" has transit orders and cannot be deleted")
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	for _, alloc := range order.Allocations {
		if err := s.confirmationSvc.RefreshEnvelope(ctx, alloc.ConfirmationID); err != nil {
			s.logger.Warn("failed to refresh a confirmation envelope after deletion",
				zap.String("confirmation_id", alloc.ConfirmationID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *CustomerOrderService) countPottedLots(ctx context.Context, orderID uuid.UUID) (int64, error) {
	transitOrders, err := s.transitRepo.FindByCustomerOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	var potted int64
	for i := range transitOrders {
		n, err := s.lotRepo.CountPottedByTransitOrder(ctx, transitOrders[i].ID)
		if err != nil {
			return 0, err
		}
		potted += n
	}
	return potted, nil
}
