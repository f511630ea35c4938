package potting

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContractAllocation distributes a transit order's tonnage across several
// customer contracts (multi-contract mode). Usage accounting is proportional
// to each contract's share of the order tonnage.
type ContractAllocation struct {
	ID             uuid.UUID
	TransitOrderID uuid.UUID
	OrderID        uuid.UUID
	Tonnage        decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewContractAllocation creates an allocation of transit order tonnage to a contract
func NewContractAllocation(transitOrderID, orderID uuid.UUID, tonnage decimal.Decimal) (*ContractAllocation, error) {
	if transitOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSIT_ORDER", "Transit order is required")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer order is required")
	}
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Allocated tonnage must be greater than 0")
	}
	now := time.Now()
	return &ContractAllocation{
		ID:             uuid.New(),
		TransitOrderID: transitOrderID,
		OrderID:        orderID,
		Tonnage:        tonnage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Share returns this allocation's fraction of the given order tonnage
func (a *ContractAllocation) Share(orderTonnage decimal.Decimal) decimal.Decimal {
	if !orderTonnage.IsPositive() {
		return decimal.Zero
	}
	return a.Tonnage.Div(orderTonnage)
}

// UsedByContract sums the tonnage a contract draws from the given transit
// orders, skipping cancelled ones. A split order contributes the contract's
// allocation share, an order carrying only the legacy contract reference
// contributes its full tonnage.
func UsedByContract(ots []TransitOrder, orderID uuid.UUID) decimal.Decimal {
	used := decimal.Zero
	for i := range ots {
		ot := &ots[i]
		if ot.Status == TransitOrderStatusCancelled {
			continue
		}
		split := false
		for j := range ot.ContractAllocations {
			if ot.ContractAllocations[j].OrderID == orderID {
				used = used.Add(ot.ContractAllocations[j].Tonnage)
				split = true
				break
			}
		}
		if !split && ot.CustomerOrderID != nil && *ot.CustomerOrderID == orderID {
			used = used.Add(ot.Tonnage)
		}
	}
	return used
}
