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

// GormContainerRepository implements potting.ContainerRepository using GORM
type GormContainerRepository struct {
	db *gorm.DB
}

// NewGormContainerRepository creates a new GormContainerRepository
func NewGormContainerRepository(db *gorm.DB) *GormContainerRepository {
	return &GormContainerRepository{db: db}
}

// FindByID finds a container by ID
func (r *GormContainerRepository) FindByID(ctx context.Context, id uuid.UUID) (*potting.Container, error) {
	var m models.ContainerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByNumber finds a container by its ISO number
func (r *GormContainerRepository) FindByNumber(ctx context.Context, number string) (*potting.Container, error) {
	var m models.ContainerModel
	if err := r.db.WithContext(ctx).First(&m, "name = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists containers with filtering
func (r *GormContainerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]potting.Container, error) {
	var rows []models.ContainerModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ContainerModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]potting.Container, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates a container
func (r *GormContainerRepository) Save(ctx context.Context, c *potting.Container) error {
	m := models.ContainerModelFromDomain(c)
	return r.db.WithContext(ctx).Save(m).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormContainerRepository) SaveWithLock(ctx context.Context, c *potting.Container) error {
	currentVersion := c.Version
	c.IncrementVersion()
	c.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).
		Model(&models.ContainerModel{}).
		Where("id = ? AND version = ?", c.ID, currentVersion).
		Updates(map[string]interface{}{
			"name":          c.Name,
			"type":          c.Type,
			"max_capacity":  c.MaxCapacity,
			"status":        c.Status,
			"seal_number":   c.SealNumber,
			"date_potting":  c.DatePotting,
			"date_shipped":  c.DateShipped,
			"lot_count":     c.LotCount,
			"total_tonnage": c.TotalTonnage,
			"version":       c.Version,
			"updated_at":    c.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION",
			"The container has been modified by another user")
	}
	return nil
}

// Delete removes a container
func (r *GormContainerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ContainerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormContainerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR seal_number ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, ContainerSortFields, "name")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormContainerRepository implements potting.ContainerRepository
var _ potting.ContainerRepository = (*GormContainerRepository)(nil)
