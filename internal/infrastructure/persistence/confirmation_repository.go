package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormConfirmationRepository implements sales.ConfirmationRepository using GORM
type GormConfirmationRepository struct {
	db *gorm.DB
}

// NewGormConfirmationRepository creates a new GormConfirmationRepository
func NewGormConfirmationRepository(db *gorm.DB) *GormConfirmationRepository {
	return &GormConfirmationRepository{db: db}
}

// FindByID finds a confirmation by its ID
func (r *GormConfirmationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SalesConfirmation, error) {
	var m models.ConfirmationModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByReference finds a confirmation by its council reference
func (r *GormConfirmationRepository) FindByReference(ctx context.Context, reference string) (*sales.SalesConfirmation, error) {
	var m models.ConfirmationModel
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll finds all confirmations with filtering
func (r *GormConfirmationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SalesConfirmation, error) {
	var rows []models.ConfirmationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ConfirmationModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]sales.SalesConfirmation, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// FindActiveExpiredBefore finds active confirmations whose validity ended before the cutoff
func (r *GormConfirmationRepository) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]sales.SalesConfirmation, error) {
	var rows []models.ConfirmationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND date_end < ?", sales.ConfirmationStatusActive, cutoff).
		Order("date_end ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]sales.SalesConfirmation, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// FindActiveExhausted finds active confirmations with no remaining tonnage
func (r *GormConfirmationRepository) FindActiveExhausted(ctx context.Context) ([]sales.SalesConfirmation, error) {
	var rows []models.ConfirmationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND tonnage_restant <= 0", sales.ConfirmationStatusActive).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]sales.SalesConfirmation, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// SumAllocatedTonnage sums the tonnage allocated on a confirmation across
// allocations of non-cancelled orders
func (r *GormConfirmationRepository) SumAllocatedTonnage(ctx context.Context, confirmationID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.CvAllocationModel{}).
		Select("COALESCE(SUM(cv_allocations.tonnage_alloue), 0)").
		Joins("JOIN customer_orders ON customer_orders.id = cv_allocations.order_id").
		Where("cv_allocations.confirmation_id = ? AND customer_orders.status <> ?",
			confirmationID, sales.OrderStatusCancelled).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CountActiveOrders counts linked orders that are neither cancelled nor draft
func (r *GormConfirmationRepository) CountActiveOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CvAllocationModel{}).
		Joins("JOIN customer_orders ON customer_orders.id = cv_allocations.order_id").
		Where("cv_allocations.confirmation_id = ? AND customer_orders.status NOT IN ?",
			confirmationID, []sales.OrderStatus{sales.OrderStatusCancelled, sales.OrderStatusDraft}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountLinkedOrders counts all linked orders regardless of state
func (r *GormConfirmationRepository) CountLinkedOrders(ctx context.Context, confirmationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CvAllocationModel{}).
		Where("confirmation_id = ?", confirmationID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a confirmation
func (r *GormConfirmationRepository) Save(ctx context.Context, cv *sales.SalesConfirmation) error {
	m := models.ConfirmationModelFromDomain(cv)
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormConfirmationRepository) SaveWithLock(ctx context.Context, cv *sales.SalesConfirmation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := cv.Version
		cv.IncrementVersion()
		cv.UpdatedAt = time.Now()

		result := tx.Model(&models.ConfirmationModel{}).
			Where("id = ? AND version = ?", cv.ID, currentVersion).
			Updates(map[string]interface{}{
				"reference":        cv.Reference,
				"campaign_id":      cv.CampaignID,
				"product_type":     cv.ProductType,
				"date_emission":    cv.DateEmission,
				"date_start":       cv.DateStart,
				"date_end":         cv.DateEnd,
				"tonnage_autorise": cv.TonnageAutorise,
				"prix_tonnage":     cv.PrixTonnage,
				"status":           cv.Status,
				"tonnage_utilise":  cv.TonnageUtilise,
				"tonnage_restant":  cv.TonnageRestant,
				"tonnage_progress": cv.TonnageProgress,
				"note":             cv.Note,
				"version":          cv.Version,
				"updated_at":       cv.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The confirmation has been modified by another user")
		}
		return nil
	})
}

// Delete deletes a confirmation
func (r *GormConfirmationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ConfirmationModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormConfirmationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ?", pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "campaign_id":
			query = query.Where("campaign_id = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		case "expiring_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("date_end <= ?", t)
			}
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, ConfirmationSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormConfirmationRepository implements sales.ConfirmationRepository
var _ sales.ConfirmationRepository = (*GormConfirmationRepository)(nil)
