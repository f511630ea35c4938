package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusInProgress || target == OrderStatusCancelled || target == OrderStatusDraft
	case OrderStatusInProgress:
		return target == OrderStatusDone || target == OrderStatusCancelled || target == OrderStatusDraft
	case OrderStatusDone, OrderStatusCancelled:
		return false // terminal
	}
	return false
}

// CustomerOrder is a commercial export contract drawn against one or more
// sales confirmations. The tonnage it allocates across its confirmations can
// never exceed the contract tonnage, and each linked confirmation must carry
// a compatible product type.
type CustomerOrder struct {
	shared.BaseAggregateRoot
	Reference       string // contract number, unique
	CustomerID      uuid.UUID
	CustomerName    string
	ProductType     valueobject.ProductType
	ContractTonnage decimal.Decimal
	UnitPrice       decimal.Decimal // price per tonne agreed with the customer
	ExportDutyRate  decimal.Decimal // percent
	Status          OrderStatus
	Allocations     []CvAllocation
	CancelReason    string
	ConfirmedAt     *time.Time
	DoneAt          *time.Time
	CancelledAt     *time.Time
}

// NewCustomerOrder creates a contract in draft state
func NewCustomerOrder(reference string, customerID uuid.UUID, customerName string,
	product valueobject.ProductType, contractTonnage, unitPrice decimal.Decimal) (*CustomerOrder, error) {

	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Contract reference cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !product.IsConcrete() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("A contract requires a concrete product type, got %q", product))
	}
	if contractTonnage.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Contract tonnage must be greater than 0")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	order := &CustomerOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		CustomerID:        customerID,
		CustomerName:      customerName,
		ProductType:       product,
		ContractTonnage:   contractTonnage,
		UnitPrice:         unitPrice,
		ExportDutyRate:    decimal.Zero,
		Status:            OrderStatusDraft,
		Allocations:       make([]CvAllocation, 0),
	}
	return order, nil
}

// SetExportDutyRate sets the duty rate applied to this contract
func (o *CustomerOrder) SetExportDutyRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_DUTY_RATE",
			fmt.Sprintf("Export duty rate must be between 0 and 100, got %s", rate))
	}
	o.ExportDutyRate = rate
	o.UpdatedAt = time.Now()
	return nil
}

// AllocatedTonnage returns the sum of tonnage allocated across confirmations
func (o *CustomerOrder) AllocatedTonnage() decimal.Decimal {
	total := decimal.Zero
	for _, a := range o.Allocations {
		total = total.Add(a.TonnageAlloue)
	}
	return total
}

// ApplyUsedTonnage distributes the tonnage actually drawn by the contract's
// transit orders across its confirmation allocations, proportionally to each
// allocation's share of the allocated total. Each share is capped at the
// allocation's own tonnage.
func (o *CustomerOrder) ApplyUsedTonnage(used decimal.Decimal) {
	total := o.AllocatedTonnage()
	if !total.IsPositive() {
		return
	}
	if used.IsNegative() {
		used = decimal.Zero
	}
	for i := range o.Allocations {
		share := used.Mul(o.Allocations[i].TonnageAlloue).Div(total)
		o.Allocations[i].ApplyUsedTonnage(share)
	}
	o.UpdatedAt = time.Now()
}

// AllocationFor returns the allocation against a confirmation, if any
func (o *CustomerOrder) AllocationFor(confirmationID uuid.UUID) *CvAllocation {
	for i := range o.Allocations {
		if o.Allocations[i].ConfirmationID == confirmationID {
			return &o.Allocations[i]
		}
	}
	return nil
}

// AddAllocation links part of a confirmation's envelope to this contract.
// The confirmation is passed in so product-type compatibility and remaining
// tonnage can be validated; envelope-level accounting is re-applied by the
// application layer within the same transaction.
func (o *CustomerOrder) AddAllocation(cv *SalesConfirmation, tonnage decimal.Decimal, now time.Time) (*CvAllocation, error) {
	if o.Status == OrderStatusDone || o.Status == OrderStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot allocate tonnage on a %s contract", o.Status))
	}
	if existing := o.AllocationFor(cv.ID); existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_ALLOCATION",
			fmt.Sprintf("Contract %s already holds an allocation on confirmation %s", o.Reference, cv.Reference))
	}
	if !cv.ProductType.Accepts(o.ProductType) {
		return nil, shared.NewDomainError("PRODUCT_TYPE_MISMATCH",
			fmt.Sprintf("Contract product %q does not match confirmation %s product %q",
				o.ProductType, cv.Reference, cv.ProductType))
	}
	if err := cv.CheckCanUseTonnage(tonnage, now); err != nil {
		return nil, err
	}
	newTotal := o.AllocatedTonnage().Add(tonnage)
	if newTotal.GreaterThan(o.ContractTonnage) {
		return nil, shared.NewDomainError("INVALID_TONNAGE",
			fmt.Sprintf("Allocated tonnage (%s T) exceeds the contract tonnage (%s T)",
				newTotal, o.ContractTonnage))
	}

	alloc, err := NewCvAllocation(cv.ID, o.ID, tonnage)
	if err != nil {
		return nil, err
	}
	o.Allocations = append(o.Allocations, *alloc)
	o.UpdatedAt = time.Now()
	return alloc, nil
}

// RemoveAllocation unlinks a confirmation from the contract
func (o *CustomerOrder) RemoveAllocation(confirmationID uuid.UUID) error {
	if o.Status == OrderStatusDone || o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot remove allocations from a %s contract", o.Status))
	}
	for i := range o.Allocations {
		if o.Allocations[i].ConfirmationID == confirmationID {
			o.Allocations = append(o.Allocations[:i], o.Allocations[i+1:]...)
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "No allocation found for this confirmation")
}

// Confirm transitions the contract from draft to confirmed.
// At least one transit order must exist.
func (o *CustomerOrder) Confirm(transitOrderCount int64) error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm contract %s in %s state", o.Reference, o.Status))
	}
	if transitOrderCount == 0 {
		return shared.NewDomainError("NO_TRANSIT_ORDER",
			fmt.Sprintf("Contract %s needs at least one transit order before confirmation", o.Reference))
	}
	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// StartProgress moves a confirmed contract to in_progress. Triggered when one
// of its transit orders starts production.
func (o *CustomerOrder) StartProgress() error {
	if !o.Status.CanTransitionTo(OrderStatusInProgress) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot start contract %s in %s state", o.Reference, o.Status))
	}
	o.Status = OrderStatusInProgress
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDone completes the contract. All transit orders must be done; the
// caller passes the count of those that are not.
func (o *CustomerOrder) MarkDone(unfinishedTransitOrders int64) error {
	if !o.Status.CanTransitionTo(OrderStatusDone) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete contract %s in %s state", o.Reference, o.Status))
	}
	if unfinishedTransitOrders > 0 {
		return shared.NewDomainError("TRANSIT_ORDERS_PENDING",
			fmt.Sprintf("Contract %s still has %d unfinished transit order(s)", o.Reference, unfinishedTransitOrders))
	}
	now := time.Now()
	o.Status = OrderStatusDone
	o.DoneAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel cancels the contract. The application layer cascades cancellation to
// the contract's non-cancelled transit orders in the same transaction.
func (o *CustomerOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel contract %s in %s state", o.Reference, o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// ResetToDraft returns the contract to draft. Blocked while any of its transit
// orders holds potted lots; the caller passes that count.
func (o *CustomerOrder) ResetToDraft(pottedLotCount int64) error {
	if !o.Status.CanTransitionTo(OrderStatusDraft) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reset contract %s in %s state", o.Reference, o.Status))
	}
	if pottedLotCount > 0 {
		return shared.NewDomainError("POTTED_LOTS",
			fmt.Sprintf("Contract %s cannot return to draft: %d lot(s) are already potted", o.Reference, pottedLotCount))
	}
	o.Status = OrderStatusDraft
	o.ConfirmedAt = nil
	o.UpdatedAt = time.Now()
	return nil
}

// IsActive reports whether the contract consumes confirmation tonnage
// (anything but cancelled).
func (o *CustomerOrder) IsActive() bool {
	return o.Status != OrderStatusCancelled
}

// ContractAmount returns tonnage x unit price
func (o *CustomerOrder) ContractAmount() decimal.Decimal {
	return o.ContractTonnage.Mul(o.UnitPrice)
}
