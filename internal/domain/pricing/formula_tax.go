package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxCategory classifies a formula tax line
type TaxCategory string

const (
	TaxCategoryRedevance TaxCategory = "redevance"
	TaxCategoryTaxe      TaxCategory = "taxe"
	TaxCategorySoutien   TaxCategory = "soutien"
)

// IsValid checks if the value is a known tax category
func (c TaxCategory) IsValid() bool {
	switch c {
	case TaxCategoryRedevance, TaxCategoryTaxe, TaxCategorySoutien:
		return true
	}
	return false
}

// String returns the string representation
func (c TaxCategory) String() string {
	return string(c)
}

// FormulaTax is one council tax or levy line on a price formula. Exactly one
// rate basis should be populated by convention; when several are set the
// amount resolution follows a fixed priority so the result stays
// deterministic.
type FormulaTax struct {
	ID        uuid.UUID
	FormulaID uuid.UUID
	Label     string
	Category  TaxCategory
	// Rate bases, resolved in priority order by ComputeAmount
	MontantFixe     decimal.Decimal // fixed amount, highest priority
	TauxPourcentage decimal.Decimal // percent of montant brut
	TauxParKg       decimal.Decimal // amount per kilogram
	MontantUnitaire decimal.Decimal // amount per tonne
	Taux            decimal.Decimal // legacy percent rate, lowest priority
	// IsPreleve marks taxes withheld at source (deducted from the net amount)
	IsPreleve bool
	Montant   decimal.Decimal // computed
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFormulaTax creates a tax line attached to a formula
func NewFormulaTax(formulaID uuid.UUID, label string, category TaxCategory, isPreleve bool) (*FormulaTax, error) {
	if formulaID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FORMULA", "Formula is required")
	}
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Tax label cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown tax category "+string(category))
	}
	now := time.Now()
	return &FormulaTax{
		ID:        uuid.New(),
		FormulaID: formulaID,
		Label:     label,
		Category:  category,
		IsPreleve: isPreleve,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ComputeAmount resolves the tax amount from whichever rate basis is set.
// Priority: fixed amount > percentage of brut > per-kg > per-tonne unit
// amount > legacy rate.
func (t *FormulaTax) ComputeAmount(montantBrut, tonnage decimal.Decimal) decimal.Decimal {
	tonnageKg := tonnage.Mul(decimal.NewFromInt(1000))
	var montant decimal.Decimal
	switch {
	case !t.MontantFixe.IsZero():
		montant = t.MontantFixe
	case !t.TauxPourcentage.IsZero():
		montant = montantBrut.Mul(t.TauxPourcentage).Div(decimal.NewFromInt(100))
	case !t.TauxParKg.IsZero():
		montant = t.TauxParKg.Mul(tonnageKg)
	case !t.MontantUnitaire.IsZero():
		montant = t.MontantUnitaire.Mul(tonnage)
	case !t.Taux.IsZero():
		montant = montantBrut.Mul(t.Taux).Div(decimal.NewFromInt(100))
	default:
		montant = decimal.Zero
	}
	t.Montant = montant
	t.UpdatedAt = time.Now()
	return montant
}
