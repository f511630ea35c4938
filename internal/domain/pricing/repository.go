package pricing

import (
	"context"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FormulaRepository defines the interface for formula persistence
type FormulaRepository interface {
	// FindByID finds a formula by ID, tax lines included
	FindByID(ctx context.Context, id uuid.UUID) (*Formula, error)

	// FindByReference finds a formula by its reference
	FindByReference(ctx context.Context, reference string) (*Formula, error)

	// FindAll lists formulas with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Formula, error)

	// FindByConfirmation finds formulas drawing on a confirmation
	FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]Formula, error)

	// SumActiveTonnageByConfirmation sums the tonnage of non-cancelled
	// formulas on a confirmation, excluding the given formula ID (uuid.Nil to
	// exclude nothing). Used by the envelope constraint check.
	SumActiveTonnageByConfirmation(ctx context.Context, confirmationID, excludeID uuid.UUID) (decimal.Decimal, error)

	// FindUnpaidValidated finds validated or partially paid formulas with an
	// outstanding installment (payment reminder sweep input)
	FindUnpaidValidated(ctx context.Context) ([]Formula, error)

	// Save creates or updates a formula with its tax lines
	Save(ctx context.Context, f *Formula) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, f *Formula) error

	// Delete removes a formula
	Delete(ctx context.Context, id uuid.UUID) error
}
