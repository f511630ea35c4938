package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/pricing"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FormulaModel is the persistence model for Formula.
type FormulaModel struct {
	AggregateModel
	Reference      string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	NumeroFO1      string                  `gorm:"type:varchar(50)"`
	ConfirmationID uuid.UUID               `gorm:"type:uuid;not null;index"`
	TransitOrderID *uuid.UUID              `gorm:"type:uuid;index"`
	ProductType    valueobject.ProductType `gorm:"type:varchar(20);not null"`
	Tonnage        decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	PrixTonnage    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`

	DifferentielQualite decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	DifferentielType    pricing.DifferentialType `gorm:"type:varchar(10);not null;default:'neutre'"`

	PourcentageAvantVente decimal.Decimal       `gorm:"type:decimal(8,4);not null"`
	TaxLines              []FormulaTaxModel     `gorm:"foreignKey:FormulaID;references:ID"`
	Status                pricing.FormulaStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	AvantVentePaye     bool `gorm:"not null;default:false"`
	ApresVentePaye     bool `gorm:"not null;default:false"`
	DateAvantVentePaye *time.Time
	DateApresVentePaye *time.Time

	MontantBrut           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MontantTotal          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MontantNet            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalTaxesPrelevees   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalTaxesAPayer      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MontantAvantVente     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MontantApresVente     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PourcentageApresVente decimal.Decimal `gorm:"type:decimal(8,4);not null"`
}

// TableName returns the table name for GORM
func (FormulaModel) TableName() string {
	return "formulas"
}

// ToDomain converts the persistence model to a domain Formula aggregate.
func (m *FormulaModel) ToDomain() *pricing.Formula {
	f := &pricing.Formula{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		Reference:             m.Reference,
		NumeroFO1:             m.NumeroFO1,
		ConfirmationID:        m.ConfirmationID,
		TransitOrderID:        m.TransitOrderID,
		ProductType:           m.ProductType,
		Tonnage:               m.Tonnage,
		PrixTonnage:           m.PrixTonnage,
		DifferentielQualite:   m.DifferentielQualite,
		DifferentielType:      m.DifferentielType,
		PourcentageAvantVente: m.PourcentageAvantVente,
		Status:                m.Status,
		AvantVentePaye:        m.AvantVentePaye,
		ApresVentePaye:        m.ApresVentePaye,
		DateAvantVentePaye:    m.DateAvantVentePaye,
		DateApresVentePaye:    m.DateApresVentePaye,
		MontantBrut:           m.MontantBrut,
		MontantTotal:          m.MontantTotal,
		MontantNet:            m.MontantNet,
		TotalTaxesPrelevees:   m.TotalTaxesPrelevees,
		TotalTaxesAPayer:      m.TotalTaxesAPayer,
		MontantAvantVente:     m.MontantAvantVente,
		MontantApresVente:     m.MontantApresVente,
		PourcentageApresVente: m.PourcentageApresVente,
		TaxLines:              make([]pricing.FormulaTax, len(m.TaxLines)),
	}
	for i, line := range m.TaxLines {
		f.TaxLines[i] = *line.ToDomain()
	}
	return f
}

// FromDomain populates the persistence model from a domain Formula aggregate.
func (m *FormulaModel) FromDomain(f *pricing.Formula) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.Reference = f.Reference
	m.NumeroFO1 = f.NumeroFO1
	m.ConfirmationID = f.ConfirmationID
	m.TransitOrderID = f.TransitOrderID
	m.ProductType = f.ProductType
	m.Tonnage = f.Tonnage
	m.PrixTonnage = f.PrixTonnage
	m.DifferentielQualite = f.DifferentielQualite
	m.DifferentielType = f.DifferentielType
	m.PourcentageAvantVente = f.PourcentageAvantVente
	m.Status = f.Status
	m.AvantVentePaye = f.AvantVentePaye
	m.ApresVentePaye = f.ApresVentePaye
	m.DateAvantVentePaye = f.DateAvantVentePaye
	m.DateApresVentePaye = f.DateApresVentePaye
	m.MontantBrut = f.MontantBrut
	m.MontantTotal = f.MontantTotal
	m.MontantNet = f.MontantNet
	m.TotalTaxesPrelevees = f.TotalTaxesPrelevees
	m.TotalTaxesAPayer = f.TotalTaxesAPayer
	m.MontantAvantVente = f.MontantAvantVente
	m.MontantApresVente = f.MontantApresVente
	m.PourcentageApresVente = f.PourcentageApresVente
	m.TaxLines = make([]FormulaTaxModel, len(f.TaxLines))
	for i, line := range f.TaxLines {
		m.TaxLines[i].FromDomain(&line)
	}
}

// FormulaModelFromDomain creates a new persistence model from domain.
func FormulaModelFromDomain(f *pricing.Formula) *FormulaModel {
	m := &FormulaModel{}
	m.FromDomain(f)
	return m
}

// FormulaTaxModel is the persistence model for FormulaTax.
type FormulaTaxModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	FormulaID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	Label           string              `gorm:"type:varchar(200);not null"`
	Category        pricing.TaxCategory `gorm:"type:varchar(20);not null"`
	MontantFixe     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TauxPourcentage decimal.Decimal     `gorm:"type:decimal(8,4);not null"`
	TauxParKg       decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	MontantUnitaire decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Taux            decimal.Decimal     `gorm:"type:decimal(8,4);not null"`
	IsPreleve       bool                `gorm:"not null;default:false"`
	Montant         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FormulaTaxModel) TableName() string {
	return "formula_taxes"
}

// ToDomain converts the persistence model to a domain FormulaTax.
func (m *FormulaTaxModel) ToDomain() *pricing.FormulaTax {
	return &pricing.FormulaTax{
		ID:              m.ID,
		FormulaID:       m.FormulaID,
		Label:           m.Label,
		Category:        m.Category,
		MontantFixe:     m.MontantFixe,
		TauxPourcentage: m.TauxPourcentage,
		TauxParKg:       m.TauxParKg,
		MontantUnitaire: m.MontantUnitaire,
		Taux:            m.Taux,
		IsPreleve:       m.IsPreleve,
		Montant:         m.Montant,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain FormulaTax.
func (m *FormulaTaxModel) FromDomain(t *pricing.FormulaTax) {
	m.ID = t.ID
	m.FormulaID = t.FormulaID
	m.Label = t.Label
	m.Category = t.Category
	m.MontantFixe = t.MontantFixe
	m.TauxPourcentage = t.TauxPourcentage
	m.TauxParKg = t.TauxParKg
	m.MontantUnitaire = t.MontantUnitaire
	m.Taux = t.Taux
	m.IsPreleve = t.IsPreleve
	m.Montant = t.Montant
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}
