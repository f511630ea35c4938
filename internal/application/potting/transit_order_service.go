package potting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransitOrderService handles transit order business operations. It owns the
// potting workflow from draft to done and the ripples into the sales context
// (contract progress and completion).
type TransitOrderService struct {
	repo           potting.TransitOrderRepository
	lotRepo        potting.LotRepository
	orderRepo      sales.CustomerOrderRepository
	formulaRepo    pricing.FormulaRepository
	txScope        TransactionScope
	sequences      shared.SequenceGenerator
	params         ParameterProvider
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTransitOrderService creates a new TransitOrderService
func NewTransitOrderService(
	repo potting.TransitOrderRepository,
	lotRepo potting.LotRepository,
	orderRepo sales.CustomerOrderRepository,
	formulaRepo pricing.FormulaRepository,
	txScope TransactionScope,
	sequences shared.SequenceGenerator,
	params ParameterProvider,
	logger *zap.Logger,
) *TransitOrderService {
	return &TransitOrderService{
		repo:        repo,
		lotRepo:     lotRepo,
		orderRepo:   orderRepo,
		formulaRepo: formulaRepo,
		txScope:     txScope,
		sequences:   sequences,
		params:      params,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *TransitOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a transit order in draft state with a generated name.
// When a contract is attached, the unit price and duty rate are taken from it.
func (s *TransitOrderService) Create(ctx context.Context, req CreateTransitOrderRequest) (*TransitOrderResponse, error) {
	seq, err := s.sequences.NextByCode(ctx, "transit_order")
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("OT-%05d", seq)

	product := valueobject.ProductType(req.ProductType)
	var order *sales.CustomerOrder
	if req.CustomerOrderID != nil {
		order, err = s.orderRepo.FindByID(ctx, *req.CustomerOrderID)
		if err != nil {
			return nil, err
		}
	}

	unitPrice := decimal.Zero
	if order != nil {
		unitPrice = order.UnitPrice
	}
	ot, err := potting.NewTransitOrder(name, req.CampaignID, product, req.Tonnage, unitPrice)
	if err != nil {
		return nil, err
	}
	ot.Consignee = req.Consignee
	if order != nil {
		if err := ot.AttachCustomerOrder(order.ID, order.ProductType); err != nil {
			return nil, err
		}
		ot.ExportDutyRate = order.ExportDutyRate
	}

	if err := s.repo.Save(ctx, ot); err != nil {
		return nil, err
	}
	if order != nil {
		s.rippleContractUsage(ctx, ot)
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// GetByID retrieves a transit order by ID
func (s *TransitOrderService) GetByID(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// List retrieves transit orders with filtering and pagination
func (s *TransitOrderService) List(ctx context.Context, filter TransitOrderListFilter) ([]TransitOrderResponse, error) {
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
	if filter.CampaignID != nil {
		f.Filters["campaign_id"] = *filter.CampaignID
	}
	if filter.CustomerOrderID != nil {
		f.Filters["customer_order_id"] = *filter.CustomerOrderID
	}

	orders, err := s.repo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	responses := make([]TransitOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToTransitOrderResponse(&orders[i]))
	}
	return responses, nil
}

// AddContractAllocation splits part of the order tonnage onto a contract
func (s *TransitOrderService) AddContractAllocation(ctx context.Context, id uuid.UUID, req ContractAllocationRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, req.CustomerOrderID)
	if err != nil {
		return nil, err
	}
	if order.ProductType != ot.ProductType {
		return nil, shared.NewDomainError("PRODUCT_TYPE_MISMATCH",
			fmt.Sprintf("Transit order %s product %q does not match contract product %q",
				ot.Name, ot.ProductType, order.ProductType))
	}
	if _, err := ot.AddContractAllocation(order.ID, req.Tonnage); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.rippleContractUsage(ctx, ot)
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// LinkFormule binds a price formula to the order. A formula can drive at most
// one active transit order; linking it to a second one is rejected with the
// name of the order already holding it. The formula and order writes run in
// one transaction.
func (s *TransitOrderService) LinkFormule(ctx context.Context, id uuid.UUID, req LinkFormuleRequest) (*TransitOrderResponse, error) {
	var ot *potting.TransitOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		ot, err = repos.TransitOrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		formula, err := repos.FormulaRepo().FindByID(ctx, req.FormulaID)
		if err != nil {
			return err
		}
		if formula.ProductType != ot.ProductType {
			return shared.NewDomainError("PRODUCT_TYPE_MISMATCH",
				fmt.Sprintf("Transit order %s product %q does not match formula product %q",
					ot.Name, ot.ProductType, formula.ProductType))
		}

		holders, err := repos.TransitOrderRepo().FindActiveByFormula(ctx, formula.ID, ot.ID)
		if err != nil {
			return err
		}
		if len(holders) > 0 {
			return shared.NewDomainError("FORMULA_IN_USE",
				fmt.Sprintf("Formula %s is already linked to transit order %s",
					formula.Reference, holders[0].Name))
		}

		if err := formula.BindTransitOrder(ot.ID); err != nil {
			return err
		}
		if err := ot.LinkFormule(formula.ID); err != nil {
			return err
		}
		// The formula may have been paid before being linked; carry the flag over.
		if formula.AvantVentePaye && !ot.TaxesPaid {
			if err := ot.ConfirmTaxesPaid("", time.Now()); err != nil {
				s.logger.Warn("could not carry pre-sale payment onto the transit order",
					zap.String("transit_order", ot.Name),
					zap.String("formula", formula.Reference),
					zap.Error(err))
			}
		}

		if err := repos.FormulaRepo().SaveWithLock(ctx, formula); err != nil {
			return err
		}
		return repos.TransitOrderRepo().SaveWithLock(ctx, ot)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// ConfirmTaxesPaid flags the council taxes as paid
func (s *TransitOrderService) ConfirmTaxesPaid(ctx context.Context, id uuid.UUID, req ConfirmTaxesRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.ConfirmTaxesPaid(req.CheckRef, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// GenerateLots splits the order tonnage into lots sized by the per-product
// maximum and creates them, each with a generated product-prefixed name.
func (s *TransitOrderService) GenerateLots(ctx context.Context, id uuid.UUID) ([]LotResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := ot.PlanLots(s.params.MaxLotTonnage(ot.ProductType))
	if err != nil {
		return nil, err
	}

	prefix := s.params.LotNamePrefix(ot.ProductType)
	responses := make([]LotResponse, 0, len(plan))
	for _, target := range plan {
		seq, err := s.sequences.NextByCode(ctx, "lot")
		if err != nil {
			return nil, err
		}
		lot, err := potting.NewLot(fmt.Sprintf("%s%05d", prefix, seq), ot.ID, ot.ProductType, target)
		if err != nil {
			return nil, err
		}
		if err := s.lotRepo.Save(ctx, lot); err != nil {
			return nil, err
		}
		responses = append(responses, ToLotResponse(lot))
	}

	ot.MarkLotsGenerated(len(plan))
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)
	return responses, nil
}

// StartProduction moves the order into production. A confirmed contract
// behind it moves to in_progress.
func (s *TransitOrderService) StartProduction(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.StartProduction(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.rippleContractProgress(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// MarkReady flags the order as ready for validation once every lot is potted
func (s *TransitOrderService) MarkReady(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshLotStats(ctx, ot); err != nil {
		return nil, err
	}
	if err := ot.MarkReady(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// CollectExportDuty flags export duties as collected
func (s *TransitOrderService) CollectExportDuty(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ot.CollectExportDuty()
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// Validate closes the potting workflow (ready_validation to done). An unpaid
// DUS does not block the validation but is logged.
func (s *TransitOrderService) Validate(ctx context.Context, id uuid.UUID, req ValidateTransitOrderRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ot.DusPaid {
		s.logger.Warn("transit order validated with unpaid DUS",
			zap.String("transit_order", ot.Name))
	}
	if err := ot.Validate(req.ValidatedBy, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)
	s.rippleContractCompletion(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// MarkSold records the sale of the order
func (s *TransitOrderService) MarkSold(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.MarkSold(time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// ConfirmDusPaid records the DUS payment after the sale
func (s *TransitOrderService) ConfirmDusPaid(ctx context.Context, id uuid.UUID, req ConfirmDusRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.ConfirmDusPaid(req.CheckRef, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// Complete closes a sold order after DUS payment
func (s *TransitOrderService) Complete(ctx context.Context, id uuid.UUID, req ValidateTransitOrderRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.Complete(req.ValidatedBy, time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ot)
	s.rippleContractCompletion(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// SetCertificationPremium sets the per-order certification premium
func (s *TransitOrderService) SetCertificationPremium(ctx context.Context, id uuid.UUID, req SetPremiumRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.SetCertificationPremium(req.Premium); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// RegisterDelivery records tonnage covered by a delivery note on top of what
// was already delivered and re-derives the delivery state.
func (s *TransitOrderService) RegisterDelivery(ctx context.Context, id uuid.UUID, req RegisterDeliveryRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.Tonnage.IsPositive() {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Delivered tonnage must be greater than 0")
	}
	ot.ApplyDeliveredTonnage(ot.DeliveredTonnage.Add(req.Tonnage))
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// RegisterInvoice invoices part of the order tonnage. Nil tonnage invoices
// everything still open; the certification premium is prorated on the share.
func (s *TransitOrderService) RegisterInvoice(ctx context.Context, id uuid.UUID, req RegisterInvoiceRequest) (*InvoiceResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tonnage := ot.RemainingToInvoice()
	if req.Tonnage != nil {
		tonnage = *req.Tonnage
	}
	premium, err := ot.RegisterInvoice(tonnage)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	return &InvoiceResponse{
		TransitOrderID:     ot.ID,
		InvoicedTonnage:    tonnage,
		PremiumShare:       premium,
		RemainingToInvoice: ot.RemainingToInvoice(),
		IsFullyInvoiced:    ot.IsFullyInvoiced(),
	}, nil
}

// Cancel cancels the order and releases the bound formula
func (s *TransitOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelTransitOrderRequest) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ot.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	s.releaseFormula(ctx, ot)
	s.rippleContractUsage(ctx, ot)
	s.publishEvents(ctx, ot)

	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// ResetToDraft returns the order to draft and deletes its unpotted lots
func (s *TransitOrderService) ResetToDraft(ctx context.Context, id uuid.UUID) (*TransitOrderResponse, error) {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refreshLotStats(ctx, ot); err != nil {
		return nil, err
	}
	if err := ot.ResetToDraft(); err != nil {
		return nil, err
	}
	if err := s.lotRepo.DeleteByTransitOrder(ctx, ot.ID); err != nil {
		return nil, err
	}
	ot.ApplyLotStats(0, 0, decimal.Zero)
	if err := s.repo.SaveWithLock(ctx, ot); err != nil {
		return nil, err
	}
	resp := ToTransitOrderResponse(ot)
	return &resp, nil
}

// Delete removes a draft or cancelled transit order with its lots
func (s *TransitOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	ot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ot.Status != potting.TransitOrderStatusDraft && ot.Status != potting.TransitOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s can only be deleted in draft or cancelled state", ot.Name))
	}
	if ot.PottedLotCount > 0 {
		return shared.NewDomainError("POTTED_LOTS",
			fmt.Sprintf("Transit order %s cannot be deleted: %d lot(s) are already potted", ot.Name, ot.PottedLotCount))
	}
	if err := s.lotRepo.DeleteByTransitOrder(ctx, ot.ID); err != nil {
		return err
	}
	s.releaseFormula(ctx, ot)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.rippleContractUsage(ctx, ot)
	return nil
}

// refreshLotStats pulls the lot aggregates onto the order
func (s *TransitOrderService) refreshLotStats(ctx context.Context, ot *potting.TransitOrder) error {
	stats, err := s.lotRepo.StatsByTransitOrder(ctx, ot.ID)
	if err != nil {
		return err
	}
	ot.ApplyLotStats(stats.LotCount, stats.PottedLotCount, stats.CurrentTonnage)
	return nil
}

// releaseFormula unbinds the formula from a cancelled or deleted order so it
// can drive another one. Failure is logged, not raised.
func (s *TransitOrderService) releaseFormula(ctx context.Context, ot *potting.TransitOrder) {
	if ot.FormuleID == nil {
		return
	}
	formula, err := s.formulaRepo.FindByID(ctx, *ot.FormuleID)
	if err != nil {
		s.logger.Warn("could not load formula to release",
			zap.String("transit_order", ot.Name), zap.Error(err))
		return
	}
	formula.UnbindTransitOrder()
	if err := s.formulaRepo.SaveWithLock(ctx, formula); err != nil {
		s.logger.Warn("could not release formula",
			zap.String("transit_order", ot.Name),
			zap.String("formula", formula.Reference),
			zap.Error(err))
	}
}

// rippleContractProgress moves the contracts behind the order to in_progress
func (s *TransitOrderService) rippleContractProgress(ctx context.Context, ot *potting.TransitOrder) {
	for _, orderID := range s.contractIDs(ot) {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			s.logger.Warn("could not load contract for progress ripple",
				zap.String("transit_order", ot.Name), zap.Error(err))
			continue
		}
		if order.Status != sales.OrderStatusConfirmed {
			continue
		}
		if err := order.StartProgress(); err != nil {
			s.logger.Warn("could not move contract to in_progress",
				zap.String("contract", order.Reference), zap.Error(err))
			continue
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			s.logger.Warn("could not save contract progress",
				zap.String("contract", order.Reference), zap.Error(err))
		}
	}
}

// rippleContractCompletion completes the contracts whose transit orders are
// all finished. Failure on one contract never stops the others.
func (s *TransitOrderService) rippleContractCompletion(ctx context.Context, ot *potting.TransitOrder) {
	for _, orderID := range s.contractIDs(ot) {
		unfinished, err := s.repo.CountUnfinishedByCustomerOrder(ctx, orderID)
		if err != nil {
			s.logger.Warn("could not count unfinished transit orders",
				zap.String("transit_order", ot.Name), zap.Error(err))
			continue
		}
		if unfinished > 0 {
			continue
		}
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			s.logger.Warn("could not load contract for completion ripple",
				zap.String("transit_order", ot.Name), zap.Error(err))
			continue
		}
		if err := order.MarkDone(unfinished); err != nil {
			s.logger.Warn("could not complete contract",
				zap.String("contract", order.Reference), zap.Error(err))
			continue
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			s.logger.Warn("could not save completed contract",
				zap.String("contract", order.Reference), zap.Error(err))
		}
	}
}

// rippleContractUsage recomputes how much confirmation tonnage each contract
// behind the order actually draws from its transit orders. Failure on one
// contract never stops the others.
func (s *TransitOrderService) rippleContractUsage(ctx context.Context, ot *potting.TransitOrder) {
	for _, orderID := range s.contractIDs(ot) {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			s.logger.Warn("could not load contract for usage ripple",
				zap.String("transit_order", ot.Name), zap.Error(err))
			continue
		}
		ots, err := s.repo.FindByCustomerOrder(ctx, orderID)
		if err != nil {
			s.logger.Warn("could not list transit orders for usage ripple",
				zap.String("contract", order.Reference), zap.Error(err))
			continue
		}
		order.ApplyUsedTonnage(potting.UsedByContract(ots, orderID))
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			s.logger.Warn("could not save contract usage",
				zap.String("contract", order.Reference), zap.Error(err))
		}
	}
}

// contractIDs lists the contracts behind the order, legacy reference included
func (s *TransitOrderService) contractIDs(ot *potting.TransitOrder) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	if ot.CustomerOrderID != nil {
		seen[*ot.CustomerOrderID] = true
		ids = append(ids, *ot.CustomerOrderID)
	}
	for i := range ot.ContractAllocations {
		orderID := ot.ContractAllocations[i].OrderID
		if !seen[orderID] {
			seen[orderID] = true
			ids = append(ids, orderID)
		}
	}
	return ids
}

// publishEvents publishes accumulated domain events
func (s *TransitOrderService) publishEvents(ctx context.Context, ot *potting.TransitOrder) {
	if s.eventPublisher == nil {
		ot.ClearDomainEvents()
		return
	}
	for _, event := range ot.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	ot.ClearDomainEvents()
}
