package shared

import "context"

// SequenceGenerator hands out monotonically increasing counters per code.
// Document references (orders, formulas, lots) are formatted from these
// counters by the application layer.
type SequenceGenerator interface {
	// NextByCode returns the next value of the named counter
	NextByCode(ctx context.Context, code string) (int64, error)
}
