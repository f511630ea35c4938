package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransitOrderRepository implements potting.TransitOrderRepository using GORM
type GormTransitOrderRepository struct {
	db *gorm.DB
}

// NewGormTransitOrderRepository creates a new GormTransitOrderRepository
func NewGormTransitOrderRepository(db *gorm.DB) *GormTransitOrderRepository {
	return &GormTransitOrderRepository{db: db}
}

// FindByID finds a transit order by ID, allocations included
func (r *GormTransitOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.TransitOrder, error) {
	var m models.TransitOrderModel
	if err := r.db.WithContext(ctx).
		Preload("ContractAllocations").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByName finds a transit order by its generated name
func (r *GormTransitOrderRepository) FindByName(ctx context.Context, name string) (*potting.TransitOrder, error) {
	var m models.TransitOrderModel
	if err := r.db.WithContext(ctx).
		Preload("ContractAllocations").
		First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists transit orders with filtering
func (r *GormTransitOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.TransitOrder, error) {
	var rows []models.TransitOrderModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TransitOrderModel{}), filter)
	if err := query.Preload("ContractAllocations").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransitOrders(rows), nil
}

// FindByCampaign lists transit orders of a campaign
func (r *GormTransitOrderRepository) FindByCampaign(ctx context.Context, campaignID uuid.UUID) ([]potting.TransitOrder, error) {
	var rows []models.TransitOrderModel
	if err := r.db.WithContext(ctx).
		Preload("ContractAllocations").
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransitOrders(rows), nil
}

// FindByCustomerOrder lists transit orders bound to a contract, either through
// the legacy single-contract reference or an allocation
func (r *GormTransitOrderRepository) FindByCustomerOrder(ctx context.Context, orderID uuid.UUID) ([]potting.TransitOrder, error) {
	var rows []models.TransitOrderModel
	if err := r.db.WithContext(ctx).
		Preload("ContractAllocations").
		Where("customer_order_id = ? OR id IN (?)", orderID,
			r.db.Model(&models.ContractAllocationModel{}).
				Select("transit_order_id").
				Where("order_id = ?", orderID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransitOrders(rows), nil
}

// FindActiveByFormula finds non-cancelled transit orders bound to a formula,
// excluding the given order
func (r *GormTransitOrderRepository) FindActiveByFormula(ctx context.Context, formulaID uuid.UUID, excludeID uuid.UUID) ([]potting.TransitOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("ContractAllocations").
		Where("formule_id = ? AND status <> ?", formulaID, potting.TransitOrderStatusCancelled)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var rows []models.TransitOrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransitOrders(rows), nil
}

// CountUnfinishedByCustomerOrder counts transit orders of a contract that are
// neither done nor cancelled
func (r *GormTransitOrderRepository) CountUnfinishedByCustomerOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransitOrderModel{}).
		Where("(customer_order_id = ? OR id IN (?)) AND status NOT IN ?", orderID,
			r.db.Model(&models.ContractAllocationModel{}).
				Select("transit_order_id").
				Where("order_id = ?", orderID),
			[]potting.TransitOrderStatus{potting.TransitOrderStatusDone, potting.TransitOrderStatusCancelled}).
		Count(&count).Error
	return count, err
}

// Save creates or updates a transit order with its allocations
func (r *GormTransitOrderRepository) Save(ctx context.Context, ot *potting.TransitOrder) error {
	m := models.TransitOrderModelFromDomain(ot)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("ContractAllocations").Save(m).Error; err != nil {
			return err
		}
		return r.syncAllocations(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormTransitOrderRepository) SaveWithLock(ctx context.Context, ot *potting.TransitOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := ot.Version
		ot.IncrementVersion()
		ot.UpdatedAt = time.Now()

		result := tx.Model(&models.TransitOrderModel{}).
			Where("id = ? AND version = ?", ot.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":                  ot.Name,
				"customer_order_id":     ot.CustomerOrderID,
				"formule_id":            ot.FormuleID,
				"campaign_id":           ot.CampaignID,
				"consignee":             ot.Consignee,
				"product_type":          ot.ProductType,
				"tonnage":               ot.Tonnage,
				"unit_price":            ot.UnitPrice,
				"export_duty_rate":      ot.ExportDutyRate,
				"status":                ot.Status,
				"taxes_paid":            ot.TaxesPaid,
				"taxes_check_ref":       ot.TaxesCheckRef,
				"date_taxes_paid":       ot.DateTaxesPaid,
				"dus_paid":              ot.DusPaid,
				"dus_check_ref":         ot.DusCheckRef,
				"date_dus_paid":         ot.DateDusPaid,
				"export_duty_collected": ot.ExportDutyCollected,
				"date_sold":             ot.DateSold,
				"date_validated":        ot.DateValidated,
				"validated_by":          ot.ValidatedBy,
				"cancel_reason":         ot.CancelReason,
				"current_tonnage":       ot.CurrentTonnage,
				"lot_count":             ot.LotCount,
				"potted_lot_count":      ot.PottedLotCount,
				"delivered_tonnage":     ot.DeliveredTonnage,
				"invoiced_tonnage":      ot.InvoicedTonnage,
				"certification_premium": ot.CertificationPremium,
				"version":               ot.Version,
				"updated_at":            ot.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The transit order has been modified by another user")
		}

		m := models.TransitOrderModelFromDomain(ot)
		return r.syncAllocations(tx, m)
	})
}

// syncAllocations replaces the stored allocation rows with the current set
func (r *GormTransitOrderRepository) syncAllocations(tx *gorm.DB, m *models.TransitOrderModel) error {
	currentIDs := make([]uuid.UUID, len(m.ContractAllocations))
	for i := range m.ContractAllocations {
		currentIDs[i] = m.ContractAllocations[i].ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("transit_order_id = ? AND id NOT IN ?", m.ID, currentIDs).
			Delete(&models.ContractAllocationModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("transit_order_id = ?", m.ID).
			Delete(&models.ContractAllocationModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.ContractAllocations {
		m.ContractAllocations[i].TransitOrderID = m.ID
		if err := tx.Save(&m.ContractAllocations[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a transit order with its allocations
func (r *GormTransitOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transit_order_id = ?", id).
			Delete(&models.ContractAllocationModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.TransitOrderModel{}, "id = ?", id)
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
func (r *GormTransitOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR consignee ILIKE ?", pattern, pattern)
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
		case "customer_order_id":
			query = query.Where("customer_order_id = ?", value)
		case "formule_id":
			query = query.Where("formule_id = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, TransitOrderSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainTransitOrders(rows []models.TransitOrderModel) []potting.TransitOrder {
	result := make([]potting.TransitOrder, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

// Ensure GormTransitOrderRepository implements potting.TransitOrderRepository
var _ potting.TransitOrderRepository = (*GormTransitOrderRepository)(nil)
