package potting

import (
	"context"
	"fmt"
	"time"

	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// FormulaPaidHandler handles FormulaAvantVentePaidEvent and flags council
// taxes as paid on the transit order bound to the formula. Paying the
// pre-sale installment is how the taxes get settled in practice, so the
// potting workflow advances without a manual confirmation.
type FormulaPaidHandler struct {
	repo   potting.TransitOrderRepository
	logger *zap.Logger
}

// NewFormulaPaidHandler creates a new handler for pre-sale installment events
func NewFormulaPaidHandler(repo potting.TransitOrderRepository, logger *zap.Logger) *FormulaPaidHandler {
	return &FormulaPaidHandler{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *FormulaPaidHandler) EventTypes() []string {
	return []string{pricing.EventTypeFormulaAvantVentePaid}
}

// Handle processes a FormulaAvantVentePaidEvent. A formula without a bound
// transit order is a no-op; a transit order past the taxable states keeps its
// state and only the payment flag is carried.
func (h *FormulaPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paidEvent, ok := event.(*pricing.FormulaAvantVentePaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", pricing.EventTypeFormulaAvantVentePaid),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			pricing.EventTypeFormulaAvantVentePaid, event.EventType())
	}

	if paidEvent.TransitOrderID == nil {
		h.logger.Info("pre-sale installment paid on an unbound formula",
			zap.String("formula", paidEvent.Reference))
		return nil
	}

	ot, err := h.repo.FindByID(ctx, *paidEvent.TransitOrderID)
	if err != nil {
		return fmt.Errorf("load transit order for formula %s: %w", paidEvent.Reference, err)
	}
	if ot.TaxesPaid {
		return nil
	}
	if err := ot.ConfirmTaxesPaid("", time.Now()); err != nil {
		h.logger.Warn("transit order past the taxable states, payment flag not carried",
			zap.String("transit_order", ot.Name),
			zap.String("formula", paidEvent.Reference),
			zap.Error(err))
		return nil
	}
	if err := h.repo.SaveWithLock(ctx, ot); err != nil {
		return fmt.Errorf("save transit order %s: %w", ot.Name, err)
	}

	h.logger.Info("council taxes flagged paid from the formula installment",
		zap.String("transit_order", ot.Name),
		zap.String("formula", paidEvent.Reference),
		zap.String("montant", paidEvent.Montant.String()),
	)
	return nil
}
