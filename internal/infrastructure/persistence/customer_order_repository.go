package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerOrderRepository implements sales.CustomerOrderRepository using GORM
type GormCustomerOrderRepository struct {
	db *gorm.DB
}

// NewGormCustomerOrderRepository creates a new GormCustomerOrderRepository
func NewGormCustomerOrderRepository(db *gorm.DB) *GormCustomerOrderRepository {
	return &GormCustomerOrderRepository{db: db}
}

// FindByID finds an order by its ID, allocations included
func (r *GormCustomerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.CustomerOrder, error) {
	var m models.CustomerOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByReference finds an order by its contract reference
func (r *GormCustomerOrderRepository) FindByReference(ctx context.Context, reference string) (*sales.CustomerOrder, error) {
	var m models.CustomerOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&m, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll finds all orders with filtering
func (r *GormCustomerOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.CustomerOrder, error) {
	var rows []models.CustomerOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CustomerOrderModel{}), filter)
	if err := query.Preload("Allocations").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]sales.CustomerOrder, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// FindByConfirmation finds non-cancelled orders holding an allocation on a confirmation
func (r *GormCustomerOrderRepository) FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]sales.CustomerOrder, error) {
	var rows []models.CustomerOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Joins("JOIN cv_allocations ON cv_allocations.order_id = customer_orders.id").
		Where("cv_allocations.confirmation_id = ? AND customer_orders.status <> ?",
			confirmationID, sales.OrderStatusCancelled).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]sales.CustomerOrder, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates an order with its allocations
func (r *GormCustomerOrderRepository) Save(ctx context.Context, order *sales.CustomerOrder) error {
	m := models.CustomerOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Allocations").Save(m).Error; err != nil {
			return err
		}
		return r.syncAllocations(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormCustomerOrderRepository) SaveWithLock(ctx context.Context, order *sales.CustomerOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := order.Version
		order.IncrementVersion()
		order.UpdatedAt = time.Now()

		result := tx.Model(&models.CustomerOrderModel{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"reference":        order.Reference,
				"customer_id":      order.CustomerID,
				"customer_name":    order.CustomerName,
				"product_type":     order.ProductType,
				"contract_tonnage": order.ContractTonnage,
				"unit_price":       order.UnitPrice,
				"export_duty_rate": order.ExportDutyRate,
				"status":           order.Status,
				"cancel_reason":    order.CancelReason,
				"confirmed_at":     order.ConfirmedAt,
				"done_at":          order.DoneAt,
				"cancelled_at":     order.CancelledAt,
				"version":          order.Version,
				"updated_at":       order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The contract has been modified by another user")
		}

		m := models.CustomerOrderModelFromDomain(order)
		return r.syncAllocations(tx, m)
	})
}

// syncAllocations replaces the stored allocation rows with the current set
func (r *GormCustomerOrderRepository) syncAllocations(tx *gorm.DB, m *models.CustomerOrderModel) error {
	currentIDs := make([]uuid.UUID, len(m.Allocations))
	for i := range m.Allocations {
		currentIDs[i] = m.Allocations[i].ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", m.ID, currentIDs).
			Delete(&models.CvAllocationModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", m.ID).
			Delete(&models.CvAllocationModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Allocations {
		m.Allocations[i].OrderID = m.ID
		if err := tx.Save(&m.Allocations[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes an order with its allocations
func (r *GormCustomerOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).
			Delete(&models.CvAllocationModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CustomerOrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormCustomerOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, CustomerOrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormCustomerOrderRepository implements sales.CustomerOrderRepository
var _ sales.CustomerOrderRepository = (*GormCustomerOrderRepository)(nil)
