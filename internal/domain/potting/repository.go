package potting

import (
	"context"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LotStats carries the per-order aggregates maintained from lots
type LotStats struct {
	LotCount       int
	PottedLotCount int
	CurrentTonnage decimal.Decimal
}

// TransitOrderRepository defines the interface for transit order persistence
type TransitOrderRepository interface {
	// FindByID finds a transit order by ID, allocations included
	FindByID(ctx context.Context, id uuid.UUID) (*TransitOrder, error)

	// FindByName finds a transit order by its generated name
	FindByName(ctx context.Context, name string) (*TransitOrder, error)

	// FindAll lists transit orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]TransitOrder, error)

	// FindByCampaign lists transit orders of a campaign
	FindByCampaign(ctx context.Context, campaignID uuid.UUID) ([]TransitOrder, error)

	// FindByCustomerOrder lists transit orders bound to a contract, either
	// through the legacy single-contract reference or an allocation
	FindByCustomerOrder(ctx context.Context, orderID uuid.UUID) ([]TransitOrder, error)

	// FindActiveByFormula finds non-cancelled transit orders bound to a
	// formula, excluding the given order (formula exclusivity check)
	FindActiveByFormula(ctx context.Context, formulaID uuid.UUID, excludeID uuid.UUID) ([]TransitOrder, error)

	// CountUnfinishedByCustomerOrder counts transit orders of a contract that
	// are neither done nor cancelled
	CountUnfinishedByCustomerOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// Save creates or updates a transit order with its allocations
	Save(ctx context.Context, ot *TransitOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, ot *TransitOrder) error

	// Delete removes a transit order
	Delete(ctx context.Context, id uuid.UUID) error
}

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by ID, production lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByName finds a lot by its generated name
	FindByName(ctx context.Context, name string) (*Lot, error)

	// FindAll lists lots with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Lot, error)

	// FindByTransitOrder lists the lots of a transit order
	FindByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) ([]Lot, error)

	// FindByContainer lists the lots potted into a container
	FindByContainer(ctx context.Context, containerID uuid.UUID) ([]Lot, error)

	// StatsByTransitOrder aggregates lot count, potted count and current
	// tonnage for a transit order
	StatsByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (LotStats, error)

	// CountPottedByTransitOrder counts potted lots of a transit order
	CountPottedByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (int64, error)

	// Save creates or updates a lot with its production lines
	Save(ctx context.Context, lot *Lot) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lot *Lot) error

	// DeleteByTransitOrder removes all lots of a transit order
	DeleteByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) error

	// Delete removes a lot
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContainerRepository defines the interface for container persistence
type ContainerRepository interface {
	// FindByID finds a container by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Container, error)

	// FindByNumber finds a container by its ISO number
	FindByNumber(ctx context.Context, number string) (*Container, error)

	// FindAll lists containers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Container, error)

	// Save creates or updates a container
	Save(ctx context.Context, c *Container) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, c *Container) error

	// Delete removes a container
	Delete(ctx context.Context, id uuid.UUID) error
}
