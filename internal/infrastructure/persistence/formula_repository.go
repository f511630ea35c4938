package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFormulaRepository implements pricing.FormulaRepository using GORM
type GormFormulaRepository struct {
	db *gorm.DB
}

// NewGormFormulaRepository creates a new GormFormulaRepository
func NewGormFormulaRepository(db *gorm.DB) *GormFormulaRepository {
	return &GormFormulaRepository{db: db}
}

// FindByID finds a formula by ID, tax lines included
func (r *GormFormulaRepository) FindByID(ctx context.Context, id uuid.UUID) (*pricing.Formula, error) {
	var m models.FormulaModel
	if err := r.db.WithContext(ctx).
		Preload("TaxLines").
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByReference finds a formula by its reference
func (r *GormFormulaRepository) FindByReference(ctx context.Context, reference string) (*pricing.Formula, error) {
	var m models.FormulaModel
	if err := r.db.WithContext(ctx).
		Preload("TaxLines").
		First(&m, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAll lists formulas with filtering
func (r *GormFormulaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]pricing.Formula, error) {
	var rows []models.FormulaModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.FormulaModel{}), filter)
	if err := query.Preload("TaxLines").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]pricing.Formula, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// FindByConfirmation finds formulas drawing on a confirmation
func (r *GormFormulaRepository) FindByConfirmation(ctx context.Context, confirmationID uuid.UUID) ([]pricing.Formula, error) {
	var rows []models.FormulaModel
	if err := r.db.WithContext(ctx).
		Preload("TaxLines").
		Where("confirmation_id = ?", confirmationID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]pricing.Formula, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// SumActiveTonnageByConfirmation sums the tonnage of non-cancelled formulas on
// a confirmation, optionally excluding one formula (envelope re-check on update)
func (r *GormFormulaRepository) SumActiveTonnageByConfirmation(ctx context.Context, confirmationID, excludeID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := r.db.WithContext(ctx).
		Model(&models.FormulaModel{}).
		Select("COALESCE(SUM(tonnage), 0)").
		Where("confirmation_id = ? AND status <> ?", confirmationID, pricing.FormulaStatusCancelled)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// FindUnpaidValidated finds validated or partially paid formulas with an
// outstanding installment
func (r *GormFormulaRepository) FindUnpaidValidated(ctx context.Context) ([]pricing.Formula, error) {
	var rows []models.FormulaModel
	if err := r.db.WithContext(ctx).
		Preload("TaxLines").
		Where("status IN ? AND (avant_vente_paye = ? OR apres_vente_paye = ?)",
			[]pricing.FormulaStatus{pricing.FormulaStatusValidated, pricing.FormulaStatusPartialPaid},
			false, false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]pricing.Formula, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Save creates or updates a formula with its tax lines
func (r *GormFormulaRepository) Save(ctx context.Context, f *pricing.Formula) error {
	m := models.FormulaModelFromDomain(f)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("TaxLines").Save(m).Error; err != nil {
			return err
		}
		return r.syncTaxLines(tx, m)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormFormulaRepository) SaveWithLock(ctx context.Context, f *pricing.Formula) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := f.Version
		f.IncrementVersion()
		f.UpdatedAt = time.Now()

		result := tx.Model(&models.FormulaModel{}).
			Where("id = ? AND version = ?", f.ID, currentVersion).
			Updates(map[string]interface{}{
				"reference":               f.Reference,
				"numero_fo1":              f.NumeroFO1,
				"confirmation_id":         f.ConfirmationID,
				"transit_order_id":        f.TransitOrderID,
				"product_type":            f.ProductType,
				"tonnage":                 f.Tonnage,
				"prix_tonnage":            f.PrixTonnage,
				"differentiel_qualite":    f.DifferentielQualite,
				"differentiel_type":       f.DifferentielType,
				"pourcentage_avant_vente": f.PourcentageAvantVente,
				"status":                  f.Status,
				"avant_vente_paye":        f.AvantVentePaye,
				"apres_vente_paye":        f.ApresVentePaye,
				"date_avant_vente_paye":   f.DateAvantVentePaye,
				"date_apres_vente_paye":   f.DateApresVentePaye,
				"montant_brut":            f.MontantBrut,
				"montant_total":           f.MontantTotal,
				"montant_net":             f.MontantNet,
				"total_taxes_prelevees":   f.TotalTaxesPrelevees,
				"total_taxes_a_payer":     f.TotalTaxesAPayer,
				"montant_avant_vente":     f.MontantAvantVente,
				"montant_apres_vente":     f.MontantApresVente,
				"pourcentage_apres_vente": f.PourcentageApresVente,
				"version":                 f.Version,
				"updated_at":              f.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION",
				"The formula has been modified by another user")
		}

		m := models.FormulaModelFromDomain(f)
		return r.syncTaxLines(tx, m)
	})
}

// syncTaxLines replaces the stored tax rows with the current set
func (r *GormFormulaRepository) syncTaxLines(tx *gorm.DB, m *models.FormulaModel) error {
	currentIDs := make([]uuid.UUID, len(m.TaxLines))
	for i := range m.TaxLines {
		currentIDs[i] = m.TaxLines[i].ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("formula_id = ? AND id NOT IN ?", m.ID, currentIDs).
			Delete(&models.FormulaTaxModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("formula_id = ?", m.ID).
			Delete(&models.FormulaTaxModel{}).Error; err != nil {
			return err
		}
	}

	for i := range m.TaxLines {
		m.TaxLines[i].FormulaID = m.ID
		if err := tx.Save(&m.TaxLines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a formula with its tax lines
func (r *GormFormulaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("formula_id = ?", id).
			Delete(&models.FormulaTaxModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.FormulaModel{}, "id = ?", id)
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
func (r *GormFormulaRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference ILIKE ? OR numero_fo1 ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "confirmation_id":
			query = query.Where("confirmation_id = ?", value)
		case "transit_order_id":
			query = query.Where("transit_order_id = ?", value)
		case "product_type":
			query = query.Where("product_type = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, FormulaSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormFormulaRepository implements pricing.FormulaRepository
var _ pricing.FormulaRepository = (*GormFormulaRepository)(nil)
