package potting

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Transit order tonnage bounds in tonnes
var (
	TransitOrderMinTonnage = decimal.NewFromFloat(0.001)
	TransitOrderMaxTonnage = decimal.NewFromInt(1000)
)

// InvoiceTolerance absorbs decimal noise when invoicing the last fraction of an order
var InvoiceTolerance = decimal.NewFromFloat(0.001)

// TransitOrderStatus represents the workflow state of a transit order
type TransitOrderStatus string

const (
	TransitOrderStatusDraft           TransitOrderStatus = "draft"
	TransitOrderStatusFormuleLinked   TransitOrderStatus = "formule_linked"
	TransitOrderStatusTaxesPaid       TransitOrderStatus = "taxes_paid"
	TransitOrderStatusLotsGenerated   TransitOrderStatus = "lots_generated"
	TransitOrderStatusInProgress      TransitOrderStatus = "in_progress"
	TransitOrderStatusReadyValidation TransitOrderStatus = "ready_validation"
	TransitOrderStatusSold            TransitOrderStatus = "sold"
	TransitOrderStatusDusPaid         TransitOrderStatus = "dus_paid"
	TransitOrderStatusDone            TransitOrderStatus = "done"
	TransitOrderStatusCancelled       TransitOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid TransitOrderStatus
func (s TransitOrderStatus) IsValid() bool {
	switch s {
	case TransitOrderStatusDraft, TransitOrderStatusFormuleLinked, TransitOrderStatusTaxesPaid,
		TransitOrderStatusLotsGenerated, TransitOrderStatusInProgress, TransitOrderStatusReadyValidation,
		TransitOrderStatusSold, TransitOrderStatusDusPaid, TransitOrderStatusDone, TransitOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s TransitOrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is done or cancelled
func (s TransitOrderStatus) IsTerminal() bool {
	return s == TransitOrderStatusDone || s == TransitOrderStatusCancelled
}

// DeliveryStatus summarizes delivery-note coverage of the order tonnage
type DeliveryStatus string

const (
	DeliveryNotDelivered   DeliveryStatus = "not_delivered"
	DeliveryPartial        DeliveryStatus = "partial"
	DeliveryFullyDelivered DeliveryStatus = "fully_delivered"
)

// TransitOrder (Ordre de Transit, OT) is the unit of export execution: one
// shipment batch bound to exactly one price formula, owning the lots that are
// filled and potted into containers. Its workflow is a strict linear state
// machine from draft to done, with sale and DUS payment as late-stage
// branches and cancellation possible from any non-done state.
type TransitOrder struct {
	shared.BaseAggregateRoot
	Name            string // generated, unique
	CustomerOrderID *uuid.UUID // legacy single-contract mode
	FormuleID       *uuid.UUID // required from formule_linked on, unique across active OTs
	CampaignID      uuid.UUID
	Consignee       string
	ProductType     valueobject.ProductType
	Tonnage         decimal.Decimal // [0.001, 1000]
	UnitPrice       decimal.Decimal // per tonne, taken from the contract
	ExportDutyRate  decimal.Decimal // percent
	Status          TransitOrderStatus

	// Multi-contract mode: the order tonnage split across several contracts
	ContractAllocations []ContractAllocation

	// Payment flags and metadata
	TaxesPaid     bool
	TaxesCheckRef string
	DateTaxesPaid *time.Time
	DusPaid       bool
	DusCheckRef   string
	DateDusPaid   *time.Time

	ExportDutyCollected bool

	DateSold      *time.Time
	DateValidated *time.Time
	ValidatedBy   string
	CancelReason  string

	// Aggregates maintained from children within the owning transaction
	CurrentTonnage   decimal.Decimal // sum of lot current tonnage
	LotCount         int
	PottedLotCount   int
	DeliveredTonnage decimal.Decimal
	InvoicedTonnage  decimal.Decimal

	CertificationPremium decimal.Decimal // per order, prorated on partial invoices
}

// NewTransitOrder creates a transit order in draft state
func NewTransitOrder(name string, campaignID uuid.UUID, product valueobject.ProductType,
	tonnage, unitPrice decimal.Decimal) (*TransitOrder, error) {

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Transit order name cannot be empty")
	}
	if campaignID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN", "Campaign is required")
	}
	if !product.IsConcrete() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("A transit order requires a concrete product type, got %q", product))
	}
	if tonnage.LessThan(TransitOrderMinTonnage) || tonnage.GreaterThan(TransitOrderMaxTonnage) {
		return nil, shared.NewDomainError("INVALID_TONNAGE",
			fmt.Sprintf("Transit order tonnage must be between %s and %s T, got %s",
				TransitOrderMinTonnage, TransitOrderMaxTonnage, tonnage))
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	ot := &TransitOrder{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Name:                name,
		CampaignID:          campaignID,
		ProductType:         product,
		Tonnage:             tonnage,
		UnitPrice:           unitPrice,
		ExportDutyRate:      decimal.Zero,
		Status:              TransitOrderStatusDraft,
		ContractAllocations: make([]ContractAllocation, 0),
		CurrentTonnage:      decimal.Zero,
		DeliveredTonnage:    decimal.Zero,
		InvoicedTonnage:     decimal.Zero,
	}
	return ot, nil
}

// AttachCustomerOrder binds the legacy single-contract reference.
// The contract's product type must match the order's.
func (t *TransitOrder) AttachCustomerOrder(orderID uuid.UUID, orderProduct valueobject.ProductType) error {
	if t.Status != TransitOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: contract can only be set in draft state", t.Name))
	}
	if orderProduct != t.ProductType {
		return shared.NewDomainError("PRODUCT_TYPE_MISMATCH",
			fmt.Sprintf("Transit order %s product %q does not match contract product %q",
				t.Name, t.ProductType, orderProduct))
	}
	t.CustomerOrderID = &orderID
	t.UpdatedAt = time.Now()
	return nil
}

// AddContractAllocation splits part of the order tonnage onto a contract
// (multi-contract mode). The allocated total cannot exceed the order tonnage.
func (t *TransitOrder) AddContractAllocation(orderID uuid.UUID, tonnage decimal.Decimal) (*ContractAllocation, error) {
	if t.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s is %s", t.Name, t.Status))
	}
	for i := range t.ContractAllocations {
		if t.ContractAllocations[i].OrderID == orderID {
			return nil, shared.NewDomainError("DUPLICATE_ALLOCATION",
				fmt.Sprintf("Transit order %s already carries an allocation for this contract", t.Name))
		}
	}
	alloc, err := NewContractAllocation(t.ID, orderID, tonnage)
	if err != nil {
		return nil, err
	}
	newTotal := t.AllocatedContractTonnage().Add(tonnage)
	if newTotal.GreaterThan(t.Tonnage) {
		return nil, shared.NewDomainError("INVALID_TONNAGE",
			fmt.Sprintf("Allocated contract tonnage (%s T) exceeds the transit order tonnage (%s T)",
				newTotal, t.Tonnage))
	}
	t.ContractAllocations = append(t.ContractAllocations, *alloc)
	t.UpdatedAt = time.Now()
	return alloc, nil
}

// AllocatedContractTonnage sums the multi-contract allocations
func (t *TransitOrder) AllocatedContractTonnage() decimal.Decimal {
	total := decimal.Zero
	for i := range t.ContractAllocations {
		total = total.Add(t.ContractAllocations[i].Tonnage)
	}
	return total
}

// LinkFormule binds the price formula. Requires draft state; the uniqueness
// of the formula across active transit orders is checked by the application
// layer and by the schema.
func (t *TransitOrder) LinkFormule(formulaID uuid.UUID) error {
	if t.Status != TransitOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: formula can only be linked in draft state (state: %s)", t.Name, t.Status))
	}
	if formulaID == uuid.Nil {
		return shared.NewDomainError("INVALID_FORMULA", "Formula ID cannot be empty")
	}
	t.FormuleID = &formulaID
	t.Status = TransitOrderStatusFormuleLinked
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderFormuleLinkedEvent(t))
	return nil
}

// ConfirmTaxesPaid flags council taxes as paid and advances the workflow.
// Reached either manually or as a side effect of the formula's pre-sale
// installment payment.
func (t *TransitOrder) ConfirmTaxesPaid(checkRef string, when time.Time) error {
	if t.Status != TransitOrderStatusDraft && t.Status != TransitOrderStatusFormuleLinked {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: taxes can only be confirmed before lot generation (state: %s)", t.Name, t.Status))
	}
	t.TaxesPaid = true
	t.TaxesCheckRef = checkRef
	t.DateTaxesPaid = &when
	if t.Status == TransitOrderStatusFormuleLinked {
		t.Status = TransitOrderStatusTaxesPaid
	}
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderTaxesPaidEvent(t))
	return nil
}

// PlanLots splits the order tonnage into lot target tonnages, each at most
// maxPerLot. Requires the pre-production phase with no lots yet.
func (t *TransitOrder) PlanLots(maxPerLot decimal.Decimal) ([]decimal.Decimal, error) {
	switch t.Status {
	case TransitOrderStatusDraft, TransitOrderStatusFormuleLinked, TransitOrderStatusTaxesPaid:
	default:
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: lots can only be generated before production (state: %s)", t.Name, t.Status))
	}
	if t.LotCount > 0 {
		return nil, shared.NewDomainError("LOTS_EXIST",
			fmt.Sprintf("Transit order %s already has lots; delete them before regenerating", t.Name))
	}
	if !t.Tonnage.IsPositive() {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Transit order tonnage must be greater than 0")
	}
	if !t.ProductType.IsConcrete() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Transit order product type must be set")
	}
	if maxPerLot.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PARAMETER", "Max tonnage per lot must be greater than 0")
	}

	var plan []decimal.Decimal
	remaining := t.Tonnage
	for remaining.IsPositive() {
		target := remaining
		if target.GreaterThan(maxPerLot) {
			target = maxPerLot
		}
		plan = append(plan, target)
		remaining = remaining.Sub(target)
	}
	return plan, nil
}

// MarkLotsGenerated records that lots now exist and advances the workflow
func (t *TransitOrder) MarkLotsGenerated(lotCount int) {
	t.LotCount = lotCount
	t.Status = TransitOrderStatusLotsGenerated
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderLotsGeneratedEvent(t))
}

// StartProduction moves the order into production
func (t *TransitOrder) StartProduction() error {
	if t.Status != TransitOrderStatusLotsGenerated {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: production requires generated lots (state: %s)", t.Name, t.Status))
	}
	t.Status = TransitOrderStatusInProgress
	t.UpdatedAt = time.Now()
	return nil
}

// MarkReady flags the order as ready for validation. Every lot must be potted.
func (t *TransitOrder) MarkReady() error {
	if t.Status != TransitOrderStatusInProgress {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s must be in production to be marked ready (state: %s)", t.Name, t.Status))
	}
	if t.PottedLotCount < t.LotCount {
		return shared.NewDomainError("LOTS_NOT_POTTED",
			fmt.Sprintf("Transit order %s: %d of %d lot(s) are not potted yet",
				t.Name, t.LotCount-t.PottedLotCount, t.LotCount))
	}
	t.Status = TransitOrderStatusReadyValidation
	t.UpdatedAt = time.Now()
	return nil
}

// Validate completes the potting workflow (ready_validation -> done)
func (t *TransitOrder) Validate(validatedBy string, when time.Time) error {
	if t.Status != TransitOrderStatusReadyValidation {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s must be ready for validation (state: %s)", t.Name, t.Status))
	}
	if !t.ExportDutyCollected {
		return shared.NewDomainError("DUTIES_NOT_COLLECTED",
			fmt.Sprintf("Transit order %s cannot be completed: export duties have not been collected", t.Name))
	}
	t.Status = TransitOrderStatusDone
	t.DateValidated = &when
	t.ValidatedBy = validatedBy
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderDoneEvent(t))
	return nil
}

// MarkSold records the sale. Allowed from any post-tax state; taxes must be paid.
func (t *TransitOrder) MarkSold(when time.Time) error {
	switch t.Status {
	case TransitOrderStatusTaxesPaid, TransitOrderStatusLotsGenerated, TransitOrderStatusInProgress,
		TransitOrderStatusReadyValidation, TransitOrderStatusDone:
	default:
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s cannot be sold in %s state", t.Name, t.Status))
	}
	if !t.TaxesPaid {
		return shared.NewDomainError("TAXES_UNPAID",
			fmt.Sprintf("Transit order %s cannot be sold before council taxes are paid", t.Name))
	}
	t.Status = TransitOrderStatusSold
	t.DateSold = &when
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderSoldEvent(t))
	return nil
}

// ConfirmDusPaid records the DUS (single exit duty) payment after the sale
func (t *TransitOrder) ConfirmDusPaid(checkRef string, when time.Time) error {
	if t.Status != TransitOrderStatusSold {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: DUS can only be confirmed after the sale (state: %s)", t.Name, t.Status))
	}
	t.DusPaid = true
	t.DusCheckRef = checkRef
	t.DateDusPaid = &when
	t.Status = TransitOrderStatusDusPaid
	t.UpdatedAt = time.Now()
	return nil
}

// Complete closes the order after DUS payment (dus_paid -> done)
func (t *TransitOrder) Complete(validatedBy string, when time.Time) error {
	if t.Status != TransitOrderStatusDusPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s: completion requires DUS payment (state: %s)", t.Name, t.Status))
	}
	if !t.ExportDutyCollected {
		return shared.NewDomainError("DUTIES_NOT_COLLECTED",
			fmt.Sprintf("Transit order %s cannot be completed: export duties have not been collected", t.Name))
	}
	t.Status = TransitOrderStatusDone
	t.DateValidated = &when
	t.ValidatedBy = validatedBy
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderDoneEvent(t))
	return nil
}

// CollectExportDuty flags export duties as collected
func (t *TransitOrder) CollectExportDuty() {
	t.ExportDutyCollected = true
	t.UpdatedAt = time.Now()
}

// Cancel cancels the order from any non-done state
func (t *TransitOrder) Cancel(reason string) error {
	if t.Status == TransitOrderStatusDone {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s is done and cannot be cancelled", t.Name))
	}
	if t.Status == TransitOrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s is already cancelled", t.Name))
	}
	t.Status = TransitOrderStatusCancelled
	t.CancelReason = reason
	t.UpdatedAt = time.Now()
	t.AddDomainEvent(NewTransitOrderCancelledEvent(t))
	return nil
}

// ResetToDraft returns the order to draft. Done orders must be cancelled
// instead, and potted lots block the reset entirely.
func (t *TransitOrder) ResetToDraft() error {
	if t.Status == TransitOrderStatusDone {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Transit order %s is done; cancel it instead of resetting", t.Name))
	}
	if t.PottedLotCount > 0 {
		return shared.NewDomainError("POTTED_LOTS",
			fmt.Sprintf("Transit order %s cannot return to draft: %d lot(s) are already potted", t.Name, t.PottedLotCount))
	}
	t.Status = TransitOrderStatusDraft
	t.UpdatedAt = time.Now()
	return nil
}

// ApplyLotStats refreshes the aggregates maintained from the order's lots
func (t *TransitOrder) ApplyLotStats(lotCount, pottedCount int, currentTonnage decimal.Decimal) {
	t.LotCount = lotCount
	t.PottedLotCount = pottedCount
	t.CurrentTonnage = currentTonnage
	t.UpdatedAt = time.Now()
}

// ApplyDeliveredTonnage records tonnage covered by delivery notes
func (t *TransitOrder) ApplyDeliveredTonnage(delivered decimal.Decimal) {
	if delivered.IsNegative() {
		delivered = decimal.Zero
	}
	t.DeliveredTonnage = delivered
	t.UpdatedAt = time.Now()
}

// DeliveryState derives the delivery status from the delivered tonnage
func (t *TransitOrder) DeliveryState() DeliveryStatus {
	switch {
	case !t.DeliveredTonnage.IsPositive():
		return DeliveryNotDelivered
	case t.DeliveredTonnage.GreaterThanOrEqual(t.Tonnage):
		return DeliveryFullyDelivered
	}
	return DeliveryPartial
}

// SetCertificationPremium sets the order-level certification premium
func (t *TransitOrder) SetCertificationPremium(premium decimal.Decimal) error {
	if premium.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Certification premium cannot be negative")
	}
	t.CertificationPremium = premium
	t.UpdatedAt = time.Now()
	return nil
}

// RemainingToInvoice returns the tonnage not yet invoiced
func (t *TransitOrder) RemainingToInvoice() decimal.Decimal {
	return t.Tonnage.Sub(t.InvoicedTonnage)
}

// IsFullyInvoiced reports whether the whole tonnage has been invoiced
func (t *TransitOrder) IsFullyInvoiced() bool {
	return t.RemainingToInvoice().LessThanOrEqual(decimal.Zero)
}

// RegisterInvoice consumes invoiceable tonnage for a partial invoice and
// returns the prorated certification premium for the invoiced fraction.
// Requires collected export duties; the requested tonnage may exceed the
// remainder only within the invoice tolerance.
func (t *TransitOrder) RegisterInvoice(tonnage decimal.Decimal) (decimal.Decimal, error) {
	if !t.ExportDutyCollected {
		return decimal.Zero, shared.NewDomainError("DUTIES_NOT_COLLECTED",
			fmt.Sprintf("Transit order %s cannot be invoiced: export duties have not been collected", t.Name))
	}
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_TONNAGE", "Invoiced tonnage must be greater than 0")
	}
	remaining := t.RemainingToInvoice()
	if tonnage.Sub(remaining).GreaterThan(InvoiceTolerance) {
		return decimal.Zero, shared.NewDomainError("INVALID_TONNAGE",
			fmt.Sprintf("Requested tonnage (%s T) exceeds the remaining tonnage to invoice (%s T) on %s",
				tonnage, remaining, t.Name))
	}
	if tonnage.GreaterThan(remaining) {
		tonnage = remaining
	}
	t.InvoicedTonnage = t.InvoicedTonnage.Add(tonnage)
	t.UpdatedAt = time.Now()

	if t.Tonnage.IsPositive() && t.CertificationPremium.IsPositive() {
		return t.CertificationPremium.Mul(tonnage).Div(t.Tonnage), nil
	}
	return decimal.Zero, nil
}

// TotalAmount returns tonnage x unit price
func (t *TransitOrder) TotalAmount() decimal.Decimal {
	return t.Tonnage.Mul(t.UnitPrice)
}

// ExportDutyAmount returns the export duty computed on the total amount
func (t *TransitOrder) ExportDutyAmount() decimal.Decimal {
	return t.TotalAmount().Mul(t.ExportDutyRate).Div(decimal.NewFromInt(100))
}

// NetAmount returns the total net of export duty
func (t *TransitOrder) NetAmount() decimal.Decimal {
	return t.TotalAmount().Sub(t.ExportDutyAmount())
}

// Progress returns the potting progress as a percentage of the order tonnage
func (t *TransitOrder) Progress() decimal.Decimal {
	if !t.Tonnage.IsPositive() {
		return decimal.Zero
	}
	return t.CurrentTonnage.Div(t.Tonnage).Mul(decimal.NewFromInt(100))
}
