package potting

import (
	"context"

	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/pricing"
)

// TransactionScope provides transactional access to the potting-side
// repositories. Operations executed within a scope share one database
// transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a formula
// link touches. Binding a formula writes both the transit order and the
// formula, and a conflict on either side must undo the other.
type TransactionalRepositories interface {
	// TransitOrderRepo returns the transit order repository scoped to the current transaction
	TransitOrderRepo() potting.TransitOrderRepository
	// FormulaRepo returns the price formula repository scoped to the current transaction
	FormulaRepo() pricing.FormulaRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	repo        potting.TransitOrderRepository
	formulaRepo pricing.FormulaRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	repo potting.TransitOrderRepository,
	formulaRepo pricing.FormulaRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		repo:        repo,
		formulaRepo: formulaRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TransitOrderRepo returns the transit order repository.
func (s *NoOpTransactionScope) TransitOrderRepo() potting.TransitOrderRepository {
	return s.repo
}

// FormulaRepo returns the price formula repository.
func (s *NoOpTransactionScope) FormulaRepo() pricing.FormulaRepository {
	return s.formulaRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
