package sales

import (
	"context"

	"github.com/potting/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the sales repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the sales repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// The contract write and the confirmation envelope refresh it triggers must
// land together: an envelope overrun detected during the refresh has to roll
// the allocation back too.
type TransactionalRepositories interface {
	// OrderRepo returns the customer contract repository scoped to the current transaction
	OrderRepo() sales.CustomerOrderRepository
	// ConfirmationRepo returns the confirmation repository scoped to the current transaction
	ConfirmationRepo() sales.ConfirmationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	orderRepo sales.CustomerOrderRepository
	cvRepo    sales.ConfirmationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo sales.CustomerOrderRepository,
	cvRepo sales.ConfirmationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo: orderRepo,
		cvRepo:    cvRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the customer contract repository.
func (s *NoOpTransactionScope) OrderRepo() sales.CustomerOrderRepository {
	return s.orderRepo
}

// ConfirmationRepo returns the confirmation repository.
func (s *NoOpTransactionScope) ConfirmationRepo() sales.ConfirmationRepository {
	return s.cvRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
