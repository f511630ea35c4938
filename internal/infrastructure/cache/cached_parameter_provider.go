package cache

import (
	"context"
	"sync"

	apppotting "github.com/potting/backend/internal/application/potting"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Parameter keys as stored in the parameters table. Values override the
// documented defaults below; unknown products fall back to the generic ones.
//
//	lot.max_tonnage.<product>    maximum target tonnage of one lot (T)
//	lot.prefix.<product>         lot naming prefix
//	container.capacity.<type>    rated container capacity (T)
const (
	keyLotMaxTonnage     = "lot.max_tonnage."
	keyLotPrefix         = "lot.prefix."
	keyContainerCapacity = "container.capacity."
)

// ParameterSource loads the full parameter table, typically the database
// repository
type ParameterSource interface {
	GetAll(ctx context.Context) (map[string]string, error)
}

// CachedParameterProvider serves business parameters from a cached snapshot.
// Refresh is driven externally (scheduler tick or explicit call after a
// parameter write); between refreshes all getters are lock-cheap map reads.
type CachedParameterProvider struct {
	source ParameterSource
	cache  ParameterCache
	logger *zap.Logger

	mu       sync.RWMutex
	snapshot map[string]string
}

// CachedParameterProviderOption is a functional option for the provider
type CachedParameterProviderOption func(*CachedParameterProvider)

// WithProviderLogger sets the logger for the provider
func WithProviderLogger(logger *zap.Logger) CachedParameterProviderOption {
	return func(p *CachedParameterProvider) {
		p.logger = logger
	}
}

// NewCachedParameterProvider creates a new provider. Call Refresh once at
// startup so the first requests do not run on defaults alone.
func NewCachedParameterProvider(source ParameterSource, cache ParameterCache, opts ...CachedParameterProviderOption) *CachedParameterProvider {
	p := &CachedParameterProvider{
		source:   source,
		cache:    cache,
		logger:   zap.NewNop(),
		snapshot: make(map[string]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh reloads the snapshot, cache first, database on cache miss. A
// failed refresh keeps the previous snapshot so getters stay usable.
func (p *CachedParameterProvider) Refresh(ctx context.Context) error {
	params, err := p.cache.GetAll(ctx)
	if err != nil {
		p.logger.Warn("parameter cache read failed, loading from database", zap.Error(err))
	}
	if params == nil {
		params, err = p.source.GetAll(ctx)
		if err != nil {
			return err
		}
		if err := p.cache.SetAll(ctx, params); err != nil {
			p.logger.Warn("failed to populate parameter cache", zap.Error(err))
		}
	}

	p.mu.Lock()
	p.snapshot = params
	p.mu.Unlock()
	return nil
}

// Invalidate drops the shared cache and the local snapshot; the next
// Refresh reloads from the database
func (p *CachedParameterProvider) Invalidate(ctx context.Context) error {
	if err := p.cache.Invalidate(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	p.snapshot = make(map[string]string)
	p.mu.Unlock()
	return nil
}

// MaxLotTonnage returns the maximum target tonnage of one lot for a product
func (p *CachedParameterProvider) MaxLotTonnage(product valueobject.ProductType) decimal.Decimal {
	if raw, ok := p.get(keyLotMaxTonnage + string(product)); ok {
		if value, err := decimal.NewFromString(raw); err == nil && value.IsPositive() {
			return value
		}
		p.logger.Warn("invalid lot max tonnage parameter, using default",
			zap.String("product", string(product)),
			zap.String("value", raw))
	}
	switch product {
	case valueobject.ProductCocoaButter:
		return decimal.NewFromInt(22)
	case valueobject.ProductCocoaPowder:
		return decimal.NewFromFloat(22.5)
	}
	return decimal.NewFromInt(25)
}

// LotNamePrefix returns the lot naming prefix for a product
func (p *CachedParameterProvider) LotNamePrefix(product valueobject.ProductType) string {
	if prefix, ok := p.get(keyLotPrefix + string(product)); ok && prefix != "" {
		return prefix
	}
	switch product {
	case valueobject.ProductCocoaMass:
		return "MC"
	case valueobject.ProductCocoaButter:
		return "BC"
	case valueobject.ProductCocoaCake:
		return "TC"
	case valueobject.ProductCocoaPowder:
		return "PC"
	}
	return "LT"
}

// ContainerCapacity returns the rated capacity for a container type, in tonnes
func (p *CachedParameterProvider) ContainerCapacity(ctype potting.ContainerType) decimal.Decimal {
	if raw, ok := p.get(keyContainerCapacity + string(ctype)); ok {
		if value, err := decimal.NewFromString(raw); err == nil && value.IsPositive() {
			return value
		}
		p.logger.Warn("invalid container capacity parameter, using default",
			zap.String("type", string(ctype)),
			zap.String("value", raw))
	}
	return ctype.DefaultCapacity()
}

func (p *CachedParameterProvider) get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.snapshot[key]
	return value, ok
}

// Ensure CachedParameterProvider implements the application-level provider
var _ apppotting.ParameterProvider = (*CachedParameterProvider)(nil)
