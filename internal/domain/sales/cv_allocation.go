package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CvAllocation distributes part of a confirmation's tonnage envelope to one
// customer order. A (confirmation, order) pair is unique.
type CvAllocation struct {
	ID             uuid.UUID
	ConfirmationID uuid.UUID
	OrderID        uuid.UUID
	TonnageAlloue  decimal.Decimal
	// TonnageUtilise is the proportional share of the order's actual transit
	// order tonnage, capped at TonnageAlloue. Recomputed by the application
	// layer whenever transit orders change.
	TonnageUtilise decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCvAllocation creates an allocation of confirmation tonnage to an order
func NewCvAllocation(confirmationID, orderID uuid.UUID, tonnage decimal.Decimal) (*CvAllocation, error) {
	if confirmationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONFIRMATION", "Confirmation is required")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer order is required")
	}
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Allocated tonnage must be greater than 0")
	}
	now := time.Now()
	return &CvAllocation{
		ID:             uuid.New(),
		ConfirmationID: confirmationID,
		OrderID:        orderID,
		TonnageAlloue:  tonnage,
		TonnageUtilise: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyUsedTonnage records the proportional used share, capped at the allocation
func (a *CvAllocation) ApplyUsedTonnage(used decimal.Decimal) {
	if used.IsNegative() {
		used = decimal.Zero
	}
	if used.GreaterThan(a.TonnageAlloue) {
		used = a.TonnageAlloue
	}
	a.TonnageUtilise = used
	a.UpdatedAt = time.Now()
}

// UpdateTonnage changes the allocated tonnage
func (a *CvAllocation) UpdateTonnage(tonnage decimal.Decimal) error {
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_TONNAGE", "Allocated tonnage must be greater than 0")
	}
	a.TonnageAlloue = tonnage
	if a.TonnageUtilise.GreaterThan(tonnage) {
		a.TonnageUtilise = tonnage
	}
	a.UpdatedAt = time.Now()
	return nil
}
