package pricing

import (
	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeFormula = "Formula"

// Event type constants
const (
	EventTypeFormulaValidated      = "FormulaValidated"
	EventTypeFormulaAvantVentePaid = "FormulaAvantVentePaid"
	EventTypeFormulaPaid           = "FormulaPaid"
)

// FormulaValidatedEvent is raised when a formula is submitted
type FormulaValidatedEvent struct {
	shared.BaseDomainEvent
	Reference  string          `json:"reference"`
	MontantNet decimal.Decimal `json:"montant_net"`
}

// NewFormulaValidatedEvent creates a new FormulaValidatedEvent
func NewFormulaValidatedEvent(f *Formula) *FormulaValidatedEvent {
	return &FormulaValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFormulaValidated, AggregateTypeFormula, f.ID),
		Reference:       f.Reference,
		MontantNet:      f.MontantNet,
	}
}

// EventType returns the event type name
func (e *FormulaValidatedEvent) EventType() string { return EventTypeFormulaValidated }

// FormulaAvantVentePaidEvent is raised when the pre-sale installment is paid.
// The potting context reacts by flagging taxes as paid on the linked transit order.
type FormulaAvantVentePaidEvent struct {
	shared.BaseDomainEvent
	Reference      string          `json:"reference"`
	TransitOrderID *uuid.UUID      `json:"transit_order_id,omitempty"`
	Montant        decimal.Decimal `json:"montant"`
}

// NewFormulaAvantVentePaidEvent creates a new FormulaAvantVentePaidEvent
func NewFormulaAvantVentePaidEvent(f *Formula) *FormulaAvantVentePaidEvent {
	return &FormulaAvantVentePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFormulaAvantVentePaid, AggregateTypeFormula, f.ID),
		Reference:       f.Reference,
		TransitOrderID:  f.TransitOrderID,
		Montant:         f.MontantAvantVente,
	}
}

// EventType returns the event type name
func (e *FormulaAvantVentePaidEvent) EventType() string { return EventTypeFormulaAvantVentePaid }

// FormulaPaidEvent is raised when both installments are paid
type FormulaPaidEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	TotalPaye decimal.Decimal `json:"total_paye"`
}

// NewFormulaPaidEvent creates a new FormulaPaidEvent
func NewFormulaPaidEvent(f *Formula) *FormulaPaidEvent {
	return &FormulaPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFormulaPaid, AggregateTypeFormula, f.ID),
		Reference:       f.Reference,
		TotalPaye:       f.TotalPaye(),
	}
}

// EventType returns the event type name
func (e *FormulaPaidEvent) EventType() string { return EventTypeFormulaPaid }
