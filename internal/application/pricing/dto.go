package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CreateFormulaRequest represents a request to create a price formula
type CreateFormulaRequest struct {
	NumeroFO1             string           `json:"numero_fo1"`
	ConfirmationID        uuid.UUID        `json:"confirmation_id" binding:"required"`
	ProductType           string           `json:"product_type" binding:"required,product_type"`
	Tonnage               decimal.Decimal  `json:"tonnage" binding:"required"`
	PrixTonnage           decimal.Decimal  `json:"prix_tonnage"`
	PourcentageAvantVente decimal.Decimal  `json:"pourcentage_avant_vente"`
	DifferentielType      string           `json:"differentiel_type" binding:"omitempty,oneof=prime decote neutre"`
	DifferentielQualite   *decimal.Decimal `json:"differentiel_qualite"`
	TaxLines              []TaxLineInput   `json:"tax_lines"`
}

// TaxLineInput represents one tax line in a formula request
type TaxLineInput struct {
	Label           string          `json:"label" binding:"required,min=1,max=100"`
	Category        string          `json:"category" binding:"required,oneof=redevance taxe soutien"`
	IsPreleve       bool            `json:"is_preleve"`
	MontantFixe     decimal.Decimal `json:"montant_fixe"`
	TauxPourcentage decimal.Decimal `json:"taux_pourcentage"`
	TauxParKg       decimal.Decimal `json:"taux_par_kg"`
	MontantUnitaire decimal.Decimal `json:"montant_unitaire"`
	Taux            decimal.Decimal `json:"taux"`
}

// FormulaListFilter represents filter options for the formula list
type FormulaListFilter struct {
	Search         string     `form:"search"`
	ConfirmationID *uuid.UUID `form:"confirmation_id"`
	Status         string     `form:"status" binding:"omitempty,oneof=draft validated partial_paid paid cancelled"`
	Page           int        `form:"page" binding:"min=0"`
	PageSize       int        `form:"page_size" binding:"min=0,max=100"`
}

// TaxLineResponse represents a tax line in API responses
type TaxLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	Label           string          `json:"label"`
	Category        string          `json:"category"`
	IsPreleve       bool            `json:"is_preleve"`
	MontantFixe     decimal.Decimal `json:"montant_fixe"`
	TauxPourcentage decimal.Decimal `json:"taux_pourcentage"`
	TauxParKg       decimal.Decimal `json:"taux_par_kg"`
	MontantUnitaire decimal.Decimal `json:"montant_unitaire"`
	Taux            decimal.Decimal `json:"taux"`
	Montant         decimal.Decimal `json:"montant"`
}

// FormulaResponse represents a formula in API responses
type FormulaResponse struct {
	ID                    uuid.UUID         `json:"id"`
	Reference             string            `json:"reference"`
	NumeroFO1             string            `json:"numero_fo1"`
	ConfirmationID        uuid.UUID         `json:"confirmation_id"`
	TransitOrderID        *uuid.UUID        `json:"transit_order_id,omitempty"`
	ProductType           string            `json:"product_type"`
	Tonnage               decimal.Decimal   `json:"tonnage"`
	PrixTonnage           decimal.Decimal   `json:"prix_tonnage"`
	DifferentielType      string            `json:"differentiel_type"`
	DifferentielQualite   decimal.Decimal   `json:"differentiel_qualite"`
	PourcentageAvantVente decimal.Decimal   `json:"pourcentage_avant_vente"`
	PourcentageApresVente decimal.Decimal   `json:"pourcentage_apres_vente"`
	Status                string            `json:"status"`
	AvantVentePaye        bool              `json:"avant_vente_paye"`
	ApresVentePaye        bool              `json:"apres_vente_paye"`
	DateAvantVentePaye    *time.Time        `json:"date_avant_vente_paye,omitempty"`
	DateApresVentePaye    *time.Time        `json:"date_apres_vente_paye,omitempty"`
	MontantBrut           decimal.Decimal   `json:"montant_brut"`
	MontantTotal          decimal.Decimal   `json:"montant_total"`
	MontantNet            decimal.Decimal   `json:"montant_net"`
	TotalTaxesPrelevees   decimal.Decimal   `json:"total_taxes_prelevees"`
	TotalTaxesAPayer      decimal.Decimal   `json:"total_taxes_a_payer"`
	MontantAvantVente     decimal.Decimal   `json:"montant_avant_vente"`
	MontantApresVente     decimal.Decimal   `json:"montant_apres_vente"`
	TotalPaye             decimal.Decimal   `json:"total_paye"`
	ResteAPayer           decimal.Decimal   `json:"reste_a_payer"`
	PaiementProgress      decimal.Decimal   `json:"paiement_progress"`
	TaxLines              []TaxLineResponse `json:"tax_lines"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
	Version               int               `json:"version"`
}

// ToFormulaResponse converts a domain formula to its response DTO
func ToFormulaResponse(f *pricing.Formula) FormulaResponse {
	lines := make([]TaxLineResponse, 0, len(f.TaxLines))
	for _, l := range f.TaxLines {
		lines = append(lines, TaxLineResponse{
			ID:              l.ID,
			Label:           l.Label,
			Category:        l.Category.String(),
			IsPreleve:       l.IsPreleve,
			MontantFixe:     l.MontantFixe,
			TauxPourcentage: l.TauxPourcentage,
			TauxParKg:       l.TauxParKg,
			MontantUnitaire: l.MontantUnitaire,
			Taux:            l.Taux,
			Montant:         l.Montant,
		})
	}
	return FormulaResponse{
		ID:                    f.ID,
		Reference:             f.Reference,
		NumeroFO1:             f.NumeroFO1,
		ConfirmationID:        f.ConfirmationID,
		TransitOrderID:        f.TransitOrderID,
		ProductType:           f.ProductType.String(),
		Tonnage:               f.Tonnage,
		PrixTonnage:           f.PrixTonnage,
		DifferentielType:      string(f.DifferentielType),
		DifferentielQualite:   f.DifferentielQualite,
		PourcentageAvantVente: f.PourcentageAvantVente,
		PourcentageApresVente: f.PourcentageApresVente,
		Status:                f.Status.String(),
		AvantVentePaye:        f.AvantVentePaye,
		ApresVentePaye:        f.ApresVentePaye,
		DateAvantVentePaye:    f.DateAvantVentePaye,
		DateApresVentePaye:    f.DateApresVentePaye,
		MontantBrut:           f.MontantBrut,
		MontantTotal:          f.MontantTotal,
		MontantNet:            f.MontantNet,
		TotalTaxesPrelevees:   f.TotalTaxesPrelevees,
		TotalTaxesAPayer:      f.TotalTaxesAPayer,
		MontantAvantVente:     f.MontantAvantVente,
		MontantApresVente:     f.MontantApresVente,
		TotalPaye:             f.TotalPaye(),
		ResteAPayer:           f.ResteAPayer(),
		PaiementProgress:      f.PaiementProgress(),
		TaxLines:              lines,
		CreatedAt:             f.CreatedAt,
		UpdatedAt:             f.UpdatedAt,
		Version:               f.Version,
	}
}
