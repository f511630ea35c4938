package potting

import (
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ParameterProvider exposes the deployment parameters the potting workflow
// depends on: per-product lot sizing, lot naming prefixes and container
// capacities. The infrastructure layer backs it with the configuration file.
type ParameterProvider interface {
	// MaxLotTonnage returns the maximum target tonnage of one lot for a product
	MaxLotTonnage(product valueobject.ProductType) decimal.Decimal

	// LotNamePrefix returns the lot naming prefix for a product
	LotNamePrefix(product valueobject.ProductType) string

	// ContainerCapacity returns the rated capacity for a container type, in
	// tonnes. Zero falls back to the canonical capacity of the type.
	ContainerCapacity(ctype potting.ContainerType) decimal.Decimal
}
