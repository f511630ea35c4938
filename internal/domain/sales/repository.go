package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ConfirmationRepository defines the interface for sales confirmation persistence
type ConfirmationRepository interface {
	// FindByID finds a confirmation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalesConfirmation, error)

	// FindByReference finds a confirmation by its council reference
	FindByReference(ctx context.Context, reference string) (*SalesConfirmation, error)

	// FindAll lists confirmations with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]SalesConfirmation, error)

	// FindActiveExpiredBefore finds active confirmations whose validity ended
	// before the given date (expiration sweep input)
	FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]SalesConfirmation, error)

	// FindActiveExhausted finds active confirmations with no remaining tonnage
	FindActiveExhausted(ctx context.Context) ([]SalesConfirmation, error)

	// SumAllocatedTonnage sums the tonnage allocated on a confirmation across
	// allocations of non-cancelled orders
	SumAllocatedTonnage(ctx context.Context, confirmationID uuid.UUID) (decimal.Decimal, error)

	// CountActiveOrders counts linked orders that are neither cancelled nor draft
	CountActiveOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error)

	// CountLinkedOrders counts all linked orders regardless of state
	CountLinkedOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error)

	// Save creates or updates a confirmation
	Save(ctx context.Context, cv *SalesConfirmation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, cv *SalesConfirmation) error

	// Delete removes a confirmation
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerOrderRepository defines the interface for customer order persistence
type CustomerOrderRepository interface {
	// FindByID finds an order by ID, allocations included
	FindByID(ctx context.Context, id uuid.UUID) (*CustomerOrder, error)

	// FindByReference finds an order by contract reference
	FindByReference(ctx context.Context, reference string) (*CustomerOrder, error)

	// FindAll lists orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]CustomerOrder, error)

	// FindByConfirmation finds non-cancelled orders holding an allocation on a confirmation
	FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]CustomerOrder, error)

	// Save creates or updates an order with its allocations
	Save(ctx context.Context, order *CustomerOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *CustomerOrder) error

	// Delete removes an order
	Delete(ctx context.Context, id uuid.UUID) error
}
