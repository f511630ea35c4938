package sales

import (
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeConfirmation  = "SalesConfirmation"
	AggregateTypeCustomerOrder = "CustomerOrder"
)

// Event type constants
const (
	EventTypeConfirmationCreated   = "SalesConfirmationCreated"
	EventTypeConfirmationActivated = "SalesConfirmationActivated"
	EventTypeConfirmationConsumed  = "SalesConfirmationConsumed"
	EventTypeConfirmationExpired   = "SalesConfirmationExpired"
	EventTypeConfirmationCancelled = "SalesConfirmationCancelled"
)

// ConfirmationCreatedEvent is raised when a new confirmation is registered
type ConfirmationCreatedEvent struct {
	shared.BaseDomainEvent
	Reference       string          `json:"reference"`
	TonnageAutorise decimal.Decimal `json:"tonnage_autorise"`
	ProductType     string          `json:"product_type"`
}

// NewConfirmationCreatedEvent creates a new ConfirmationCreatedEvent
func NewConfirmationCreatedEvent(cv *SalesConfirmation) *ConfirmationCreatedEvent {
	return &ConfirmationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmationCreated, AggregateTypeConfirmation, cv.ID),
		Reference:       cv.Reference,
		TonnageAutorise: cv.TonnageAutorise,
		ProductType:     cv.ProductType.String(),
	}
}

// EventType returns the event type name
func (e *ConfirmationCreatedEvent) EventType() string { return EventTypeConfirmationCreated }

// ConfirmationActivatedEvent is raised when a confirmation becomes usable
type ConfirmationActivatedEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewConfirmationActivatedEvent creates a new ConfirmationActivatedEvent
func NewConfirmationActivatedEvent(cv *SalesConfirmation) *ConfirmationActivatedEvent {
	return &ConfirmationActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmationActivated, AggregateTypeConfirmation, cv.ID),
		Reference:       cv.Reference,
	}
}

// EventType returns the event type name
func (e *ConfirmationActivatedEvent) EventType() string { return EventTypeConfirmationActivated }

// ConfirmationConsumedEvent is raised when the tonnage envelope is exhausted
type ConfirmationConsumedEvent struct {
	shared.BaseDomainEvent
	Reference      string          `json:"reference"`
	TonnageUtilise decimal.Decimal `json:"tonnage_utilise"`
}

// NewConfirmationConsumedEvent creates a new ConfirmationConsumedEvent
func NewConfirmationConsumedEvent(cv *SalesConfirmation) *ConfirmationConsumedEvent {
	return &ConfirmationConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmationConsumed, AggregateTypeConfirmation, cv.ID),
		Reference:       cv.Reference,
		TonnageUtilise:  cv.TonnageUtilise,
	}
}

// EventType returns the event type name
func (e *ConfirmationConsumedEvent) EventType() string { return EventTypeConfirmationConsumed }

// ConfirmationExpiredEvent is raised when the validity period ends
type ConfirmationExpiredEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewConfirmationExpiredEvent creates a new ConfirmationExpiredEvent
func NewConfirmationExpiredEvent(cv *SalesConfirmation) *ConfirmationExpiredEvent {
	return &ConfirmationExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmationExpired, AggregateTypeConfirmation, cv.ID),
		Reference:       cv.Reference,
	}
}

// EventType returns the event type name
func (e *ConfirmationExpiredEvent) EventType() string { return EventTypeConfirmationExpired }

// ConfirmationCancelledEvent is raised when a confirmation is cancelled
type ConfirmationCancelledEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewConfirmationCancelledEvent creates a new ConfirmationCancelledEvent
func NewConfirmationCancelledEvent(cv *SalesConfirmation) *ConfirmationCancelledEvent {
	return &ConfirmationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfirmationCancelled, AggregateTypeConfirmation, cv.ID),
		Reference:       cv.Reference,
	}
}

// EventType returns the event type name
func (e *ConfirmationCancelledEvent) EventType() string { return EventTypeConfirmationCancelled }
