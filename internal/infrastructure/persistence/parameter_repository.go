package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormParameterRepository stores business parameters as key/value rows
type GormParameterRepository struct {
	db *gorm.DB
}

// NewGormParameterRepository creates a new GormParameterRepository
func NewGormParameterRepository(db *gorm.DB) *GormParameterRepository {
	return &GormParameterRepository{db: db}
}

// Get returns the raw value of a parameter
func (r *GormParameterRepository) Get(ctx context.Context, key string) (string, error) {
	var m models.ParameterModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return m.Value, nil
}

// GetAll returns every stored parameter keyed by name
func (r *GormParameterRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []models.ParameterModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	params := make(map[string]string, len(rows))
	for _, row := range rows {
		params[row.Key] = row.Value
	}
	return params, nil
}

// Set creates or replaces a parameter
func (r *GormParameterRepository) Set(ctx context.Context, key, value string) error {
	m := models.ParameterModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&m).Error
}
