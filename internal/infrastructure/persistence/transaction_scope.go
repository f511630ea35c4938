package persistence

import (
	"context"

	apppotting "github.com/potting/backend/internal/application/potting"
	appsales "github.com/potting/backend/internal/application/sales"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSalesTransactionScope implements the sales TransactionScope using GORM
// transactions, so the contract write and the confirmation envelope refresh
// commit or roll back together.
type GormSalesTransactionScope struct {
	db *gorm.DB
}

// NewGormSalesTransactionScope creates a new GormSalesTransactionScope.
func NewGormSalesTransactionScope(db *gorm.DB) *GormSalesTransactionScope {
	return &GormSalesTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormSalesTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormSalesTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

type gormSalesTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the customer contract repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) OrderRepo() sales.CustomerOrderRepository {
	return NewGormCustomerOrderRepository(r.tx)
}

// ConfirmationRepo returns the confirmation repository scoped to the current transaction.
func (r *gormSalesTransactionalRepositories) ConfirmationRepo() sales.ConfirmationRepository {
	return NewGormConfirmationRepository(r.tx)
}

// GormPottingTransactionScope implements the potting TransactionScope using
// GORM transactions, covering the paired transit order and formula writes of
// a formula link.
type GormPottingTransactionScope struct {
	db *gorm.DB
}

// NewGormPottingTransactionScope creates a new GormPottingTransactionScope.
func NewGormPottingTransactionScope(db *gorm.DB) *GormPottingTransactionScope {
	return &GormPottingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormPottingTransactionScope) Execute(ctx context.Context, fn func(repos apppotting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormPottingTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

type gormPottingTransactionalRepositories struct {
	tx *gorm.DB
}

// TransitOrderRepo returns the transit order repository scoped to the current transaction.
func (r *gormPottingTransactionalRepositories) TransitOrderRepo() potting.TransitOrderRepository {
	return NewGormTransitOrderRepository(r.tx)
}

// FormulaRepo returns the price formula repository scoped to the current transaction.
func (r *gormPottingTransactionalRepositories) FormulaRepo() pricing.FormulaRepository {
	return NewGormFormulaRepository(r.tx)
}

var _ appsales.TransactionScope = (*GormSalesTransactionScope)(nil)
var _ appsales.TransactionalRepositories = (*gormSalesTransactionalRepositories)(nil)
var _ apppotting.TransactionScope = (*GormPottingTransactionScope)(nil)
var _ apppotting.TransactionalRepositories = (*gormPottingTransactionalRepositories)(nil)
