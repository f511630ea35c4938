package potting

import (
	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeTransitOrder = "TransitOrder"
	AggregateTypeLot          = "Lot"
)

// Event type constants
const (
	EventTypeTransitOrderFormuleLinked = "TransitOrderFormuleLinked"
	EventTypeTransitOrderTaxesPaid     = "TransitOrderTaxesPaid"
	EventTypeTransitOrderLotsGenerated = "TransitOrderLotsGenerated"
	EventTypeTransitOrderSold          = "TransitOrderSold"
	EventTypeTransitOrderDone          = "TransitOrderDone"
	EventTypeTransitOrderCancelled     = "TransitOrderCancelled"
	EventTypeLotPotted                 = "LotPotted"
)

// TransitOrderFormuleLinkedEvent is raised when a formula is bound to the order
type TransitOrderFormuleLinkedEvent struct {
	shared.BaseDomainEvent
	Name      string     `json:"name"`
	FormuleID *uuid.UUID `json:"formule_id"`
}

// NewTransitOrderFormuleLinkedEvent creates a new TransitOrderFormuleLinkedEvent
func NewTransitOrderFormuleLinkedEvent(t *TransitOrder) *TransitOrderFormuleLinkedEvent {
	return &TransitOrderFormuleLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderFormuleLinked, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
		FormuleID:       t.FormuleID,
	}
}

// EventType returns the event type name
func (e *TransitOrderFormuleLinkedEvent) EventType() string { return EventTypeTransitOrderFormuleLinked }

// TransitOrderTaxesPaidEvent is raised when council taxes are confirmed paid
type TransitOrderTaxesPaidEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	CheckRef string `json:"check_ref"`
}

// NewTransitOrderTaxesPaidEvent creates a new TransitOrderTaxesPaidEvent
func NewTransitOrderTaxesPaidEvent(t *TransitOrder) *TransitOrderTaxesPaidEvent {
	return &TransitOrderTaxesPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderTaxesPaid, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
		CheckRef:        t.TaxesCheckRef,
	}
}

// EventType returns the event type name
func (e *TransitOrderTaxesPaidEvent) EventType() string { return EventTypeTransitOrderTaxesPaid }

// TransitOrderLotsGeneratedEvent is raised when lots are created for the order
type TransitOrderLotsGeneratedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	LotCount int    `json:"lot_count"`
}

// NewTransitOrderLotsGeneratedEvent creates a new TransitOrderLotsGeneratedEvent
func NewTransitOrderLotsGeneratedEvent(t *TransitOrder) *TransitOrderLotsGeneratedEvent {
	return &TransitOrderLotsGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderLotsGenerated, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
		LotCount:        t.LotCount,
	}
}

// EventType returns the event type name
func (e *TransitOrderLotsGeneratedEvent) EventType() string { return EventTypeTransitOrderLotsGenerated }

// TransitOrderSoldEvent is raised when the order is sold
type TransitOrderSoldEvent struct {
	shared.BaseDomainEvent
	Name    string          `json:"name"`
	Tonnage decimal.Decimal `json:"tonnage"`
}

// NewTransitOrderSoldEvent creates a new TransitOrderSoldEvent
func NewTransitOrderSoldEvent(t *TransitOrder) *TransitOrderSoldEvent {
	return &TransitOrderSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderSold, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
		Tonnage:         t.Tonnage,
	}
}

// EventType returns the event type name
func (e *TransitOrderSoldEvent) EventType() string { return EventTypeTransitOrderSold }

// TransitOrderDoneEvent is raised when the order workflow completes
type TransitOrderDoneEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewTransitOrderDoneEvent creates a new TransitOrderDoneEvent
func NewTransitOrderDoneEvent(t *TransitOrder) *TransitOrderDoneEvent {
	return &TransitOrderDoneEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderDone, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
	}
}

// EventType returns the event type name
func (e *TransitOrderDoneEvent) EventType() string { return EventTypeTransitOrderDone }

// TransitOrderCancelledEvent is raised when the order is cancelled
type TransitOrderCancelledEvent struct {
	shared.BaseDomainEvent
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// NewTransitOrderCancelledEvent creates a new TransitOrderCancelledEvent
func NewTransitOrderCancelledEvent(t *TransitOrder) *TransitOrderCancelledEvent {
	return &TransitOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransitOrderCancelled, AggregateTypeTransitOrder, t.ID),
		Name:            t.Name,
		Reason:          t.CancelReason,
	}
}

// EventType returns the event type name
func (e *TransitOrderCancelledEvent) EventType() string { return EventTypeTransitOrderCancelled }

// LotPottedEvent is raised when a lot is potted into a container
type LotPottedEvent struct {
	shared.BaseDomainEvent
	Name           string          `json:"name"`
	TransitOrderID uuid.UUID       `json:"transit_order_id"`
	ContainerID    *uuid.UUID      `json:"container_id"`
	Tonnage        decimal.Decimal `json:"tonnage"`
}

// NewLotPottedEvent creates a new LotPottedEvent
func NewLotPottedEvent(l *Lot) *LotPottedEvent {
	return &LotPottedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLotPotted, AggregateTypeLot, l.ID),
		Name:            l.Name,
		TransitOrderID:  l.TransitOrderID,
		ContainerID:     l.ContainerID,
		Tonnage:         l.CurrentTonnage,
	}
}

// EventType returns the event type name
func (e *LotPottedEvent) EventType() string { return EventTypeLotPotted }
