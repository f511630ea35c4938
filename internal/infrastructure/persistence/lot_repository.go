package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLotRepository implements potting.LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by ID, production lines included
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.Lot, error) {
	var m models.LotModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByName finds a lot by its generated name
func (r *GormLotRepository) FindByName(ctx context.Context, name string) (*potting.Lot, error) {
	var m models.LotModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&m, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists lots with filtering
func (r *GormLotRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.Lot, error) {
	var rows []models.LotModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LotModel{}), filter)
	if err := query.Preload("Lines").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLots(rows), nil
}

// FindByTransitOrder lists the lots of a transit order
func (r *GormLotRepository) FindByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) ([]potting.Lot, error) {
	var rows []models.LotModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("transit_order_id = ?", transitOrderID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLots(rows), nil
}

// FindByContainer lists the lots potted into a container
func (r *GormLotRepository) FindByContainer(ctx context.Context, containerID uuid.UUID) ([]potting.Lot, error) {
	var rows []models.LotModel
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("container_id = ?", containerID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainLots(rows), nil
}

// StatsByTransitOrder aggregates lot count, potted count and current tonnage
// for a transit order in a single query
func (r *GormLotRepository) StatsByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (potting.LotStats, error) {
	var row struct {
		LotCount       int
		PottedLotCount int
		CurrentTonnage decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.LotModel{}).
		Select("COUNT(*) AS lot_count, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS potted_lot_count, "+
			"COALESCE(SUM(current_tonnage), 0) AS current_tonnage",
			potting.LotStatusPotted).
		Where("transit_order_id = ?", transitOrderID).
		Scan(&row).Error
	if err != nil {
		return potting.LotStats{}, err
	}
	return potting.LotStats{
		LotCount:       row.LotCount,
		PottedLotCount: row.PottedLotCount,
		CurrentTonnage: row.CurrentTonnage,
	}, nil
}

// CountPottedByTransitOrder counts potted lots of a transit order
func (r *GormLotRepository) CountPottedByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LotModel{}).
		Where("transit_order_id = ? AND status = ?", transitOrderID, potting.LotStatusPotted).
		Count(&count).Error
	return count, err
}

// Save creates or updates a lot with its production lines
func (r *GormLotRepository) Save(ctx context.Context, lot *potting.Lot) error {
	m := models.LotModelFromDomain(lot)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(m).Error; err != nil {
			return err
		}
		return r.syncLines(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormLotRepository) SaveWithLock(ctx context.Context, lot *potting.Lot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := lot.Version
		lot.IncrementVersion()
		lot.UpdatedAt = time.Now()

		result := tx.Model(&models.LotModel{}).
			Where("id = ? AND version = ?", lot.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":             lot.Name,
				"transit_order_id": lot.TransitOrderID,
				"product_type":     lot.ProductType,
				"target_tonnage":   lot.TargetTonnage,
				"current_tonnage":  lot.CurrentTonnage,
				"status":           lot.Status,
				"container_id":     lot.ContainerID,
				"potted_by":        lot.PottedBy,
				"date_potted":      lot.DatePotted,
				"version":          lot.Version,
				"updated_at":       lot.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The lot has been modified by another user")
		}

		m := models.LotModelFromDomain(lot)
		return r.syncLines(tx, m)
	})
}

// syncLines replaces the stored production lines with the current set
func (r *GormLotRepository) syncLines(tx *gorm.DB, m *models.LotModel) error {
	currentIDs := make([]uuid.UUID, len(m.Lines))
	for i := range m.Lines {
		currentIDs[i] = m.Lines[i].ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("lot_id = ? AND id NOT IN ?", m.ID, currentIDs).
			Delete(&models.ProductionLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("lot_id = ?", m.ID).
			Delete(&models.ProductionLineModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.Lines {
		m.Lines[i].LotID = m.ID
		if err := tx.Save(&m.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteByTransitOrder removes all lots of a transit order with their lines
func (r *GormLotRepository) DeleteByTransitOrder(ctx context.Context, transitOrderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id IN (?)",
			tx.Model(&models.LotModel{}).
				Select("id").
				Where("transit_order_id = ?", transitOrderID)).
			Delete(&models.ProductionLineModel{}).Error; err != nil {
			return err
		}
		return tx.Where("transit_order_id = ?", transitOrderID).
			Delete(&models.LotModel{}).Error
	})
}

// Delete removes a lot with its production lines
func (r *GormLotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lot_id = ?", id).
			Delete(&models.ProductionLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.LotModel{}, "id = ?", id)
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
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "transit_order_id":
			query = query.Where("transit_order_id = ?", value)
		case "container_id":
			query = query.Where("container_id = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, LotSortFields, "name")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

func toDomainLots(rows []models.LotModel) []potting.Lot {
	result := make([]potting.Lot, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

// Ensure GormLotRepository implements potting.LotRepository
var _ potting.LotRepository = (*GormLotRepository)(nil)
