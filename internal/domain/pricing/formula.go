package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/shared"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FormulaStatus represents the payment lifecycle of a price formula
type FormulaStatus string

const (
	FormulaStatusDraft       FormulaStatus = "draft"
	FormulaStatusValidated   FormulaStatus = "validated"
	FormulaStatusPartialPaid FormulaStatus = "partial_paid"
	FormulaStatusPaid        FormulaStatus = "paid"
	FormulaStatusCancelled   FormulaStatus = "cancelled"
)

// IsValid checks if the status is a valid FormulaStatus
func (s FormulaStatus) IsValid() bool {
	switch s {
	case FormulaStatusDraft, FormulaStatusValidated, FormulaStatusPartialPaid,
		FormulaStatusPaid, FormulaStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s FormulaStatus) String() string {
	return string(s)
}

// DifferentialType qualifies the quality differential applied to the price
type DifferentialType string

const (
	DifferentialPrime  DifferentialType = "prime"  // premium, adds to the total
	DifferentialDecote DifferentialType = "decote" // discount, subtracts
	DifferentialNeutre DifferentialType = "neutre" // no differential
)

// IsValid checks if the value is a known differential type
func (d DifferentialType) IsValid() bool {
	switch d {
	case DifferentialPrime, DifferentialDecote, DifferentialNeutre:
		return true
	}
	return false
}

// Formula (Formule, FO) fixes the per-tonne price, council taxes and the
// two-phase payment split (pre-sale / post-sale) for an export batch. A
// formula draws tonnage from exactly one sales confirmation and is bound to
// at most one transit order.
type Formula struct {
	shared.BaseAggregateRoot
	Reference      string // unique formula number
	NumeroFO1      string // council FO1 number
	ConfirmationID uuid.UUID
	TransitOrderID *uuid.UUID // at most one, uniqueness enforced across formulas
	ProductType    valueobject.ProductType
	Tonnage        decimal.Decimal // > 0
	PrixTonnage    decimal.Decimal // >= 0

	DifferentielQualite decimal.Decimal // absolute value, sign applied by type
	DifferentielType    DifferentialType

	PourcentageAvantVente decimal.Decimal // [0,100]
	TaxLines              []FormulaTax
	Status                FormulaStatus

	// Payment flags. ApresVentePaye can never be true while AvantVentePaye is
	// false; the rule is enforced here and by a CHECK constraint in the schema.
	AvantVentePaye     bool
	ApresVentePaye     bool
	DateAvantVentePaye *time.Time
	DateApresVentePaye *time.Time

	// Computed amounts, refreshed by ComputeAmounts
	MontantBrut           decimal.Decimal
	MontantTotal          decimal.Decimal
	MontantNet            decimal.Decimal
	TotalTaxesPrelevees   decimal.Decimal
	TotalTaxesAPayer      decimal.Decimal
	MontantAvantVente     decimal.Decimal
	MontantApresVente     decimal.Decimal
	PourcentageApresVente decimal.Decimal
}

// NewFormula creates a formula in draft state
func NewFormula(reference, numeroFO1 string, confirmationID uuid.UUID,
	product valueobject.ProductType, tonnage, prixTonnage, pourcentageAvantVente decimal.Decimal) (*Formula, error) {

	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Formula reference cannot be empty")
	}
	if confirmationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONFIRMATION", "A formula requires a sales confirmation")
	}
	if !product.IsConcrete() {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE",
			fmt.Sprintf("A formula requires a concrete product type, got %q", product))
	}
	if tonnage.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_TONNAGE", "Formula tonnage must be greater than 0")
	}
	if prixTonnage.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price per tonne cannot be negative")
	}
	if pourcentageAvantVente.IsNegative() || pourcentageAvantVente.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE",
			fmt.Sprintf("Pre-sale percentage must be between 0 and 100, got %s", pourcentageAvantVente))
	}

	f := &Formula{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Reference:             reference,
		NumeroFO1:             numeroFO1,
		ConfirmationID:        confirmationID,
		ProductType:           product,
		Tonnage:               tonnage,
		PrixTonnage:           prixTonnage,
		DifferentielType:      DifferentialNeutre,
		PourcentageAvantVente: pourcentageAvantVente,
		TaxLines:              make([]FormulaTax, 0),
		Status:                FormulaStatusDraft,
	}
	f.ComputeAmounts()
	return f, nil
}

// TonnageKg returns the tonnage in kilograms
func (f *Formula) TonnageKg() decimal.Decimal {
	return f.Tonnage.Mul(decimal.NewFromInt(1000))
}

// SetQualityDifferential sets the quality differential. The value is stored
// as an absolute amount; the sign follows the type (prime adds, decote
// subtracts, neutre zeroes it out).
func (f *Formula) SetQualityDifferential(dtype DifferentialType, amount decimal.Decimal) error {
	if !dtype.IsValid() {
		return shared.NewDomainError("INVALID_DIFFERENTIAL", "Unknown differential type "+string(dtype))
	}
	f.DifferentielType = dtype
	f.DifferentielQualite = amount.Abs()
	f.ComputeAmounts()
	return nil
}

// signedDifferential returns the differential with its sign applied
func (f *Formula) signedDifferential() decimal.Decimal {
	switch f.DifferentielType {
	case DifferentialPrime:
		return f.DifferentielQualite
	case DifferentialDecote:
		return f.DifferentielQualite.Neg()
	}
	return decimal.Zero
}

// AddTaxLine attaches a tax line and recomputes amounts
func (f *Formula) AddTaxLine(label string, category TaxCategory, isPreleve bool,
	configure func(*FormulaTax)) (*FormulaTax, error) {

	if f.Status != FormulaStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Tax lines can only be added to draft formulas (state: %s)", f.Status))
	}
	line, err := NewFormulaTax(f.ID, label, category, isPreleve)
	if err != nil {
		return nil, err
	}
	if configure != nil {
		configure(line)
	}
	f.TaxLines = append(f.TaxLines, *line)
	f.ComputeAmounts()
	return line, nil
}

// RemoveTaxLine detaches a tax line and recomputes amounts
func (f *Formula) RemoveTaxLine(lineID uuid.UUID) error {
	if f.Status != FormulaStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Tax lines can only be removed from draft formulas (state: %s)", f.Status))
	}
	for i := range f.TaxLines {
		if f.TaxLines[i].ID == lineID {
			f.TaxLines = append(f.TaxLines[:i], f.TaxLines[i+1:]...)
			f.ComputeAmounts()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", "Tax line not found")
}

// ComputeAmounts refreshes every derived amount from the price, tonnage,
// differential, tax lines and payment split.
func (f *Formula) ComputeAmounts() {
	f.MontantBrut = f.PrixTonnage.Mul(f.Tonnage)
	f.MontantTotal = f.MontantBrut.Add(f.signedDifferential())

	prelevees := decimal.Zero
	aPayer := decimal.Zero
	for i := range f.TaxLines {
		amount := f.TaxLines[i].ComputeAmount(f.MontantBrut, f.Tonnage)
		if f.TaxLines[i].IsPreleve {
			prelevees = prelevees.Add(amount)
		} else {
			aPayer = aPayer.Add(amount)
		}
	}
	f.TotalTaxesPrelevees = prelevees
	f.TotalTaxesAPayer = aPayer
	f.MontantNet = f.MontantTotal.Sub(prelevees)

	f.ComputePaiements()
	f.UpdatedAt = time.Now()
}

// ComputePaiements splits the net amount between the pre-sale and post-sale
// installments according to the percentage split.
func (f *Formula) ComputePaiements() {
	hundred := decimal.NewFromInt(100)
	f.PourcentageApresVente = hundred.Sub(f.PourcentageAvantVente)
	if f.MontantNet.IsZero() {
		f.MontantAvantVente = decimal.Zero
		f.MontantApresVente = decimal.Zero
		return
	}
	f.MontantAvantVente = f.MontantNet.Mul(f.PourcentageAvantVente).Div(hundred)
	f.MontantApresVente = f.MontantNet.Mul(f.PourcentageApresVente).Div(hundred)
}

// SetPourcentageAvantVente updates the payment split
func (f *Formula) SetPourcentageAvantVente(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PERCENTAGE",
			fmt.Sprintf("Pre-sale percentage must be between 0 and 100, got %s", pct))
	}
	f.PourcentageAvantVente = pct
	f.ComputeAmounts()
	return nil
}

// Validate submits a draft formula. At least one tax line is required.
func (f *Formula) Validate() error {
	if f.Status != FormulaStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only draft formulas can be validated (state: %s)", f.Status))
	}
	if len(f.TaxLines) == 0 {
		return shared.NewDomainError("NO_TAX_LINES",
			fmt.Sprintf("Formula %s needs at least one tax line before validation", f.Reference))
	}
	f.Status = FormulaStatusValidated
	f.UpdatedAt = time.Now()
	f.AddDomainEvent(NewFormulaValidatedEvent(f))
	return nil
}

// Cancel cancels the formula
func (f *Formula) Cancel() error {
	if f.Status == FormulaStatusPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Formula %s is fully paid and cannot be cancelled", f.Reference))
	}
	f.Status = FormulaStatusCancelled
	f.UpdatedAt = time.Now()
	return nil
}

// MarkAvantVentePaid records the pre-sale installment payment
func (f *Formula) MarkAvantVentePaid(when time.Time) error {
	if f.Status != FormulaStatusValidated && f.Status != FormulaStatusPartialPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Formula %s must be validated before payment (state: %s)", f.Reference, f.Status))
	}
	if f.AvantVentePaye {
		return shared.NewDomainError("ALREADY_PAID",
			fmt.Sprintf("Pre-sale installment of formula %s is already paid", f.Reference))
	}
	f.AvantVentePaye = true
	f.DateAvantVentePaye = &when
	f.updatePaymentState()
	f.AddDomainEvent(NewFormulaAvantVentePaidEvent(f))
	return nil
}

// MarkApresVentePaid records the post-sale installment payment. The pre-sale
// installment must be paid first.
func (f *Formula) MarkApresVentePaid(when time.Time) error {
	if !f.AvantVentePaye {
		return shared.NewDomainError("PAYMENT_ORDER",
			fmt.Sprintf("Post-sale installment of formula %s cannot be paid before the pre-sale installment", f.Reference))
	}
	if f.ApresVentePaye {
		return shared.NewDomainError("ALREADY_PAID",
			fmt.Sprintf("Post-sale installment of formula %s is already paid", f.Reference))
	}
	f.ApresVentePaye = true
	f.DateApresVentePaye = &when
	f.updatePaymentState()
	f.AddDomainEvent(NewFormulaPaidEvent(f))
	return nil
}

// updatePaymentState derives the status from the two payment flags:
// both paid -> paid, pre-sale only -> partial_paid, neither -> validated.
func (f *Formula) updatePaymentState() {
	switch {
	case f.AvantVentePaye && f.ApresVentePaye:
		f.Status = FormulaStatusPaid
	case f.AvantVentePaye:
		f.Status = FormulaStatusPartialPaid
	default:
		f.Status = FormulaStatusValidated
	}
	f.UpdatedAt = time.Now()
}

// TotalPaye returns the amount already paid across installments
func (f *Formula) TotalPaye() decimal.Decimal {
	total := decimal.Zero
	if f.AvantVentePaye {
		total = total.Add(f.MontantAvantVente)
	}
	if f.ApresVentePaye {
		total = total.Add(f.MontantApresVente)
	}
	return total
}

// ResteAPayer returns the net amount not yet paid
func (f *Formula) ResteAPayer() decimal.Decimal {
	return f.MontantNet.Sub(f.TotalPaye())
}

// PaiementProgress returns the paid percentage of the net amount
func (f *Formula) PaiementProgress() decimal.Decimal {
	if !f.MontantNet.IsPositive() {
		return decimal.Zero
	}
	return f.TotalPaye().Div(f.MontantNet).Mul(decimal.NewFromInt(100))
}

// BindTransitOrder records the 1:1 back-reference to a transit order.
// Rejected when already bound to a different one.
func (f *Formula) BindTransitOrder(transitOrderID uuid.UUID) error {
	if transitOrderID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRANSIT_ORDER", "Transit order ID cannot be empty")
	}
	if f.TransitOrderID != nil && *f.TransitOrderID != transitOrderID {
		return shared.NewDomainError("FORMULA_BOUND",
			fmt.Sprintf("Formula %s is already bound to another transit order", f.Reference))
	}
	f.TransitOrderID = &transitOrderID
	f.UpdatedAt = time.Now()
	return nil
}

// UnbindTransitOrder clears the transit order back-reference
func (f *Formula) UnbindTransitOrder() {
	f.TransitOrderID = nil
	f.UpdatedAt = time.Now()
}

// IsActive reports whether the formula counts against the confirmation
// envelope (anything but cancelled).
func (f *Formula) IsActive() bool {
	return f.Status != FormulaStatusCancelled
}

// CanDelete reports whether the formula may be deleted
func (f *Formula) CanDelete() error {
	if f.Status != FormulaStatusDraft && f.Status != FormulaStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Formula %s can only be deleted in draft or cancelled state", f.Reference))
	}
	if f.TransitOrderID != nil {
		return shared.NewDomainError("FORMULA_BOUND",
			fmt.Sprintf("Formula %s is bound to a transit order and cannot be deleted", f.Reference))
	}
	return nil
}
