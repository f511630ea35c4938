package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/campaign"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCampaignRepository implements campaign.Repository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	var m models.CampaignModel
	if err := r.db.WithContext(ctx).
		Preload("OfficialPrices").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByCode finds a campaign by its year code
func (r *GormCampaignRepository) FindByCode(ctx context.Context, code string) (*campaign.Campaign, error) {
	var m models.CampaignModel
	if err := r.db.WithContext(ctx).
		Preload("OfficialPrices").
		First(&m, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindCurrent finds the active campaign covering the given date
func (r *GormCampaignRepository) FindCurrent(ctx context.Context, now time.Time) (*campaign.Campaign, error) {
	var m models.CampaignModel
	if err := r.db.WithContext(ctx).
		Preload("OfficialPrices").
		Where("status = ? AND date_start <= ? AND date_end >= ?", campaign.StatusActive, now, now).
		Order("date_start DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll finds all campaigns with filtering
func (r *GormCampaignRepository) FindAll(ctx context.Context, filter shared.Filter) ([]campaign.Campaign, error) {
	var rows []models.CampaignModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CampaignModel{}), filter)
	if err := query.Preload("OfficialPrices").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]campaign.Campaign, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates a campaign with its official prices
func (r *GormCampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	m := models.CampaignModelFromDomain(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("OfficialPrices").Save(m).Error; err != nil {
			return err
		}
		// Prices are replaced wholesale; the set per campaign is tiny
		if err := tx.Where("campaign_id = ?", m.ID).
			Delete(&models.CampaignPriceModel{}).Error; err != nil {
			return err
		}
		for i := range m.OfficialPrices {
			if err := tx.Create(&m.OfficialPrices[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a campaign and its official prices
func (r *GormCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).
			Delete(&models.CampaignPriceModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CampaignModel{}, "id = ?", id)
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
func (r *GormCampaignRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "year":
			query = query.Where("code = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, CampaignSortFields, "date_start")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormCampaignRepository implements campaign.Repository
var _ campaign.Repository = (*GormCampaignRepository)(nil)
