package cache

import "context"

// ParameterCache stores a snapshot of the business parameter table so hot
// paths (lot generation, container checks) do not hit the database on every
// call.
type ParameterCache interface {
	// GetAll returns the cached parameter map, or nil when the cache is
	// empty or expired
	GetAll(ctx context.Context) (map[string]string, error)

	// SetAll replaces the cached parameter map
	SetAll(ctx context.Context, params map[string]string) error

	// Invalidate drops the cached snapshot
	Invalidate(ctx context.Context) error

	// Close releases any resources held by the cache
	Close() error
}
