package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConfirmationStatus represents the lifecycle state of a sales confirmation
type ConfirmationStatus string

const (
	ConfirmationStatusDraft     ConfirmationStatus = "draft"
	ConfirmationStatusActive    ConfirmationStatus = "active"
	ConfirmationStatusConsumed  ConfirmationStatus = "consumed"
	ConfirmationStatusExpired   ConfirmationStatus = "expired"
	ConfirmationStatusCancelled ConfirmationStatus = "cancelled"
)

// IsValid checks if the status is a valid ConfirmationStatus
func (s ConfirmationStatus) IsValid() bool {
	switch s {
	case ConfirmationStatusDraft, ConfirmationStatusActive, ConfirmationStatusConsumed,
		ConfirmationStatusExpired, ConfirmationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s ConfirmationStatus) String() string {
	return string(s)
}

// Utilization bands reported by UtilizationStatus
const (
	UtilizationLow    = "low"    // < 50%
	UtilizationMedium = "medium" // 50% - 80%
	UtilizationHigh   = "high"   // 80% - 99.99%
	UtilizationFull   = "full"   // >= 99.99%
)

// Validity bands reported by ValidityStatus
const (
	ValidityValid        = "valid"
	ValidityExpiringSoon = "expiring_soon" // 30 days or less remaining
	ValidityExpired      = "expired"
)

// SalesConfirmation (Confirmation de Vente, CV) is the council-issued
// authorization for an export tonnage envelope. It acts as a tonnage ledger:
// customer contracts consume its authorized tonnage through allocations and a
// confirmation can never be over-consumed.
type SalesConfirmation struct {
	shared.BaseAggregateRoot
	Reference       string // council document number, unique
	CampaignID      uuid.UUID
	ProductType     valueobject.ProductType
	DateEmission    time.Time
	DateStart       time.Time
	DateEnd         time.Time
	TonnageAutorise decimal.Decimal // authorized envelope, > 0
	PrixTonnage     decimal.Decimal // guaranteed price per tonne, >= 0
	Status          ConfirmationStatus
	// Stored aggregates, kept consistent with linked orders on every write
	TonnageUtilise  decimal.Decimal
	TonnageRestant  decimal.Decimal
	TonnageProgress decimal.Decimal // percent of the envelope consumed
	Note            string
}

// NewSalesConfirmation creates a confirmation in draft state
func NewSalesConfirmation(reference string, campaignID uuid.UUID, product valueobject.ProductType,
	dateEmission, dateStart, dateEnd time.Time, tonnageAutorise, prixTonnage decimal.Decimal) (*SalesConfirmation, error) {

	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Confirmation reference cannot be empty")
	}
	if campaignID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN", "Campaign is required")
	}
	if !product.IsValid() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("Unknown product type %q", product))
	}
	if dateStart.Before(dateEmission) {
		return nil, shared.NewDomainError("INVALID_DATES",
			"Validity start date cannot precede the emission date")
	}
	if dateEnd.Before(dateStart) {
		return nil, shared.NewDomainError("INVALID_DATES",
			"Validity end date cannot precede the start date")
	}
	if tonnageAutorise.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE",
			"Authorized tonnage must be greater than 0")
	}
	if prixTonnage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE",
			"Price per tonne cannot be negative")
	}

	cv := &SalesConfirmation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		CampaignID:        campaignID,
		ProductType:       product,
		DateEmission:      dateEmission,
		DateStart:         dateStart,
		DateEnd:           dateEnd,
		TonnageAutorise:   tonnageAutorise,
		PrixTonnage:       prixTonnage,
		Status:            ConfirmationStatusDraft,
		TonnageUtilise:    decimal.Zero,
		TonnageRestant:    tonnageAutorise,
		TonnageProgress:   decimal.Zero,
	}
	cv.AddDomainEvent(NewConfirmationCreatedEvent(cv))
	return cv, nil
}

// CheckCanUseTonnage validates that the requested tonnage can still be drawn
// from this confirmation. Pure validation, no mutation.
func (c *SalesConfirmation) CheckCanUseTonnage(tonnage decimal.Decimal, now time.Time) error {
	if c.Status != ConfirmationStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Confirmation %s is not active (state: %s)", c.Reference, c.Status))
	}
	if now.After(c.DateEnd) {
		return shared.NewDomainError("EXPIRED",
			fmt.Sprintf("Confirmation %s expired on %s", c.Reference, c.DateEnd.Format("2006-01-02")))
	}
	if tonnage.GreaterThan(c.TonnageRestant) {
		return shared.NewDomainError("INSUFFICIENT_TONNAGE",
			fmt.Sprintf("Requested tonnage (%s T) exceeds the remaining tonnage (%s T) on confirmation %s",
				tonnage, c.TonnageRestant, c.Reference))
	}
	return nil
}

// ApplyUsedTonnage records the total tonnage consumed by non-cancelled linked
// orders and recomputes the stored aggregates. The used tonnage is summed by
// the caller from the allocation rows within the same transaction. Rejects
// any total that overruns the authorized envelope.
func (c *SalesConfirmation) ApplyUsedTonnage(used decimal.Decimal) error {
	if used.IsNegative() {
		return shared.NewDomainError("INVALID_TONNAGE", "Used tonnage cannot be negative")
	}
	if used.GreaterThan(c.TonnageAutorise) {
		return shared.NewDomainError("INSUFFICIENT_TONNAGE",
			fmt.Sprintf("Allocated tonnage (%s T) exceeds the authorized tonnage (%s T) on confirmation %s",
				used, c.TonnageAutorise, c.Reference))
	}
	c.TonnageUtilise = used
	c.TonnageRestant = c.TonnageAutorise.Sub(used)
	c.TonnageProgress = used.Div(c.TonnageAutorise).Mul(decimal.NewFromInt(100))
	c.UpdatedAt = time.Now()
	return nil
}

// Activate transitions the confirmation from draft to active
func (c *SalesConfirmation) Activate() error {
	if c.Status != ConfirmationStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only draft confirmations can be activated (state: %s)", c.Status))
	}
	c.Status = ConfirmationStatusActive
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewConfirmationActivatedEvent(c))
	return nil
}

// Cancel cancels the confirmation. The caller passes the number of linked
// orders that are neither cancelled nor draft; cancellation is blocked while
// such orders exist.
func (c *SalesConfirmation) Cancel(activeOrderCount int64) error {
	if activeOrderCount > 0 {
		return shared.NewDomainError("ORDERS_ATTACHED",
			fmt.Sprintf("Confirmation %s cannot be cancelled: %d active order(s) are attached",
				c.Reference, activeOrderCount))
	}
	c.Status = ConfirmationStatusCancelled
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewConfirmationCancelledEvent(c))
	return nil
}

// MarkConsumed flags an active confirmation whose envelope is exhausted
func (c *SalesConfirmation) MarkConsumed() error {
	if c.Status != ConfirmationStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"Only active confirmations can be marked as consumed")
	}
	c.Status = ConfirmationStatusConsumed
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewConfirmationConsumedEvent(c))
	return nil
}

// MarkExpired flags an active confirmation whose validity period has ended
func (c *SalesConfirmation) MarkExpired() error {
	if c.Status != ConfirmationStatusActive {
		return shared.NewDomainError("INVALID_STATE",
			"Only active confirmations can be marked as expired")
	}
	c.Status = ConfirmationStatusExpired
	c.UpdatedAt = time.Now()
	c.AddDomainEvent(NewConfirmationExpiredEvent(c))
	return nil
}

// ExtendValidity pushes the validity end one month past max(date_end, today)
// and reactivates an expired confirmation.
func (c *SalesConfirmation) ExtendValidity(now time.Time) error {
	if c.Status != ConfirmationStatusActive && c.Status != ConfirmationStatusExpired {
		return shared.NewDomainError("INVALID_STATE",
			"Only active or expired confirmations can be extended")
	}
	base := c.DateEnd
	if now.After(base) {
		base = now
	}
	c.DateEnd = base.AddDate(0, 1, 0)
	c.Status = ConfirmationStatusActive
	c.UpdatedAt = time.Now()
	return nil
}

// ResetToDraft returns a cancelled confirmation to draft
func (c *SalesConfirmation) ResetToDraft() error {
	if c.Status != ConfirmationStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			"Only cancelled confirmations can be reset to draft")
	}
	c.Status = ConfirmationStatusDraft
	c.UpdatedAt = time.Now()
	return nil
}

// CanDelete reports whether the confirmation may be deleted. Deletion is only
// allowed in draft or cancelled state with no linked orders.
func (c *SalesConfirmation) CanDelete(linkedOrderCount int64) error {
	if c.Status != ConfirmationStatusDraft && c.Status != ConfirmationStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Confirmation %s can only be deleted in draft or cancelled state", c.Reference))
	}
	if linkedOrderCount > 0 {
		return shared.NewDomainError("ORDERS_ATTACHED",
			fmt.Sprintf("Confirmation %s cannot be deleted: %d order(s) are linked", c.Reference, linkedOrderCount))
	}
	return nil
}

// IsExpired reports whether the validity period has ended
func (c *SalesConfirmation) IsExpired(now time.Time) bool {
	return now.After(c.DateEnd)
}

// IsExhausted reports whether the envelope has no remaining tonnage
func (c *SalesConfirmation) IsExhausted() bool {
	return c.TonnageRestant.LessThanOrEqual(decimal.Zero)
}

// UtilizationStatus returns the consumption band of the envelope
func (c *SalesConfirmation) UtilizationStatus() string {
	switch {
	case c.TonnageProgress.GreaterThanOrEqual(decimal.NewFromFloat(99.99)):
		return UtilizationFull
	case c.TonnageProgress.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return UtilizationHigh
	case c.TonnageProgress.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return UtilizationMedium
	}
	return UtilizationLow
}

// ValidityStatus returns the validity band at the given date
func (c *SalesConfirmation) ValidityStatus(now time.Time) string {
	if now.After(c.DateEnd) {
		return ValidityExpired
	}
	if c.DateEnd.Sub(now) <= 30*24*time.Hour {
		return ValidityExpiringSoon
	}
	return ValidityValid
}

// DaysRemaining returns the number of whole days left before expiry, never negative
func (c *SalesConfirmation) DaysRemaining(now time.Time) int {
	if now.After(c.DateEnd) {
		return 0
	}
	return int(c.DateEnd.Sub(now).Hours() / 24)
}

// Duplicate returns a draft copy of this confirmation under a new reference.
// The copy starts with an untouched envelope.
func (c *SalesConfirmation) Duplicate(newReference string) (*SalesConfirmation, error) {
	return NewSalesConfirmation(newReference, c.CampaignID, c.ProductType,
		c.DateEmission, c.DateStart, c.DateEnd, c.TonnageAutorise, c.PrixTonnage)
}
