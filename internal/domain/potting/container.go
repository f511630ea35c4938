package potting

import (
	"fmt"
	"regexp"
	"time"

	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CapacityTolerance allows containers to be loaded slightly past their rated
// capacity (5%)
var CapacityTolerance = decimal.NewFromFloat(1.05)

// containerNamePattern loosely follows ISO 6346: four letters (owner code +
// category) then six digits and a check digit.
var containerNamePattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{7}$`)

// ContainerType identifies the physical container format
type ContainerType string

const (
	ContainerType20   ContainerType = "20"
	ContainerType40   ContainerType = "40"
	ContainerType40HC ContainerType = "40hc"
)

// IsValid checks if the value is a known container type
func (t ContainerType) IsValid() bool {
	switch t {
	case ContainerType20, ContainerType40, ContainerType40HC:
		return true
	}
	return false
}

// String returns the string representation
func (t ContainerType) String() string {
	return string(t)
}

// DefaultCapacity returns the canonical rated capacity in tonnes for the type.
// Deployments can override these through the parameter provider.
func (t ContainerType) DefaultCapacity() decimal.Decimal {
	switch t {
	case ContainerType20:
		return decimal.NewFromInt(25)
	case ContainerType40:
		return decimal.NewFromInt(28)
	case ContainerType40HC:
		return decimal.NewFromInt(30)
	}
	return decimal.Zero
}

// ContainerStatus represents the loading lifecycle of a container
type ContainerStatus string

const (
	ContainerStatusAvailable ContainerStatus = "available"
	ContainerStatusLoading   ContainerStatus = "loading"
	ContainerStatusLoaded    ContainerStatus = "loaded"
	ContainerStatusShipped   ContainerStatus = "shipped"
)

// IsValid checks if the status is a valid ContainerStatus
func (s ContainerStatus) IsValid() bool {
	switch s {
	case ContainerStatusAvailable, ContainerStatusLoading, ContainerStatusLoaded, ContainerStatusShipped:
		return true
	}
	return false
}

// String returns the string representation
func (s ContainerStatus) String() string {
	return string(s)
}

// Container is the physical shipping unit lots are potted into. It accepts
// lots while available or loading, up to its rated capacity plus a 5%
// tolerance, and must be sealed before shipping.
type Container struct {
	shared.BaseAggregateRoot
	Name        string // ISO 6346-style code, unique
	Type        ContainerType
	MaxCapacity decimal.Decimal // tonnes
	Status      ContainerStatus
	SealNumber  string
	DatePotting *time.Time
	DateShipped *time.Time

	// Aggregates maintained from potted lots
	LotCount     int
	TotalTonnage decimal.Decimal
}

// NewContainer registers a container of the given type. A nil capacity picks
// the canonical capacity for the type.
func NewContainer(name string, ctype ContainerType, capacity decimal.Decimal) (*Container, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Container name cannot be empty")
	}
	if !containerNamePattern.MatchString(name) {
		return nil, shared.NewDomainError("INVALID_NAME",
			fmt.Sprintf("Container name %q does not look like an ISO 6346 code", name))
	}
	if !ctype.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown container type "+string(ctype))
	}
	if capacity.IsZero() {
		capacity = ctype.DefaultCapacity()
	}
	if capacity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_CAPACITY", "Container capacity must be greater than 0")
	}

	return &Container{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              ctype,
		MaxCapacity:       capacity,
		Status:            ContainerStatusAvailable,
		TotalTonnage:      decimal.Zero,
	}, nil
}

// FillPercentage returns total/capacity x 100
func (c *Container) FillPercentage() decimal.Decimal {
	if !c.MaxCapacity.IsPositive() {
		return decimal.Zero
	}
	return c.TotalTonnage.Div(c.MaxCapacity).Mul(decimal.NewFromInt(100))
}

// CanAddLot validates that a lot carrying the given tonnage fits. The
// container must be available or loading, and the lot must not push the load
// past capacity plus the 5% tolerance.
func (c *Container) CanAddLot(lotTonnage decimal.Decimal) error {
	if c.Status != ContainerStatusAvailable && c.Status != ContainerStatusLoading {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s does not accept lots in %s state", c.Name, c.Status))
	}
	limit := c.MaxCapacity.Mul(CapacityTolerance)
	newTotal := c.TotalTonnage.Add(lotTonnage)
	if newTotal.GreaterThan(limit) {
		return shared.NewDomainError("CAPACITY_EXCEEDED",
			fmt.Sprintf("Container %s: adding %s T would load %s T, beyond the %s T limit (capacity %s T + 5%%)",
				c.Name, lotTonnage, newTotal, limit, c.MaxCapacity))
	}
	return nil
}

// AcceptLot records a potted lot's tonnage into the container
func (c *Container) AcceptLot(lotTonnage decimal.Decimal) error {
	if err := c.CanAddLot(lotTonnage); err != nil {
		return err
	}
	c.TotalTonnage = c.TotalTonnage.Add(lotTonnage)
	c.LotCount++
	if c.Status == ContainerStatusAvailable {
		c.Status = ContainerStatusLoading
		now := time.Now()
		c.DatePotting = &now
	}
	c.UpdatedAt = time.Now()
	return nil
}

// StartLoading opens the container for potting and stamps the potting date
func (c *Container) StartLoading(when time.Time) error {
	if c.Status != ContainerStatusAvailable {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s must be available to start loading (state: %s)", c.Name, c.Status))
	}
	c.Status = ContainerStatusLoading
	c.DatePotting = &when
	c.UpdatedAt = time.Now()
	return nil
}

// FinishLoading closes the container. At least one lot must be inside.
func (c *Container) FinishLoading() error {
	if c.Status != ContainerStatusLoading {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s must be loading to be closed (state: %s)", c.Name, c.Status))
	}
	if c.LotCount == 0 {
		return shared.NewDomainError("CONTAINER_EMPTY",
			fmt.Sprintf("Container %s holds no lot and cannot be closed", c.Name))
	}
	c.Status = ContainerStatusLoaded
	c.UpdatedAt = time.Now()
	return nil
}

// SetSeal records the seal number
func (c *Container) SetSeal(sealNumber string) error {
	if c.Status == ContainerStatusShipped {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s is shipped; its seal cannot change", c.Name))
	}
	c.SealNumber = sealNumber
	c.UpdatedAt = time.Now()
	return nil
}

// Ship marks the container as shipped. A seal is required.
func (c *Container) Ship(when time.Time) error {
	if c.Status != ContainerStatusLoaded {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s must be loaded before shipping (state: %s)", c.Name, c.Status))
	}
	if c.SealNumber == "" {
		return shared.NewDomainError("SEAL_REQUIRED",
			fmt.Sprintf("Container %s cannot ship without a seal number", c.Name))
	}
	c.Status = ContainerStatusShipped
	c.DateShipped = &when
	c.UpdatedAt = time.Now()
	return nil
}

// Reopen returns a loaded container to loading so more lots can be added
func (c *Container) Reopen() error {
	if c.Status != ContainerStatusLoaded {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s must be loaded to be reopened (state: %s)", c.Name, c.Status))
	}
	c.Status = ContainerStatusLoading
	c.UpdatedAt = time.Now()
	return nil
}

// CanDelete reports whether the container may be deleted. Shipped containers
// and containers holding lots are protected.
func (c *Container) CanDelete() error {
	if c.Status == ContainerStatusShipped {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Container %s is shipped and cannot be deleted", c.Name))
	}
	if c.LotCount > 0 {
		return shared.NewDomainError("LOTS_ATTACHED",
			fmt.Sprintf("Container %s holds %d lot(s) and cannot be deleted", c.Name, c.LotCount))
	}
	return nil
}
