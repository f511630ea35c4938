package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TransitOrderModel is the persistence model for TransitOrder.
type TransitOrderModel struct {
	AggregateModel
	Name            string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerOrderID *uuid.UUID                 `gorm:"type:uuid;index"`
	FormuleID       *uuid.UUID                 `gorm:"type:uuid;index"`
	CampaignID      uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Consignee       string                     `gorm:"type:varchar(200)"`
	ProductType     valueobject.ProductType    `gorm:"type:varchar(20);not null"`
	Tonnage         decimal.Decimal            `gorm:"type:decimal(12,3);not null"`
	UnitPrice       decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	ExportDutyRate  decimal.Decimal            `gorm:"type:decimal(8,4);not null"`
	Status          potting.TransitOrderStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	ContractAllocations []ContractAllocationModel `gorm:"foreignKey:TransitOrderID;references:ID"`

	TaxesPaid     bool       `gorm:"not null;default:false"`
	TaxesCheckRef string     `gorm:"type:varchar(100)"`
	DateTaxesPaid *time.Time
	DusPaid       bool       `gorm:"not null;default:false"`
	DusCheckRef   string     `gorm:"type:varchar(100)"`
	DateDusPaid   *time.Time

	ExportDutyCollected bool `gorm:"not null;default:false"`

	DateSold      *time.Time
	DateValidated *time.Time
	ValidatedBy   string `gorm:"type:varchar(100)"`
	CancelReason  string `gorm:"type:varchar(500)"`

	CurrentTonnage   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	LotCount         int             `gorm:"not null;default:0"`
	PottedLotCount   int             `gorm:"not null;default:0"`
	DeliveredTonnage decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	InvoicedTonnage  decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CertificationPremium decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (TransitOrderModel) TableName() string {
	return "transit_orders"
}

// ToDomain converts the persistence model to a domain TransitOrder aggregate.
func (m *TransitOrderModel) ToDomain() *potting.TransitOrder {
	ot := &potting.TransitOrder{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		Name:                 m.Name,
		CustomerOrderID:      m.CustomerOrderID,
		FormuleID:            m.FormuleID,
		CampaignID:           m.CampaignID,
		Consignee:            m.Consignee,
		ProductType:          m.ProductType,
		Tonnage:              m.Tonnage,
		UnitPrice:            m.UnitPrice,
		ExportDutyRate:       m.ExportDutyRate,
		Status:               m.Status,
		TaxesPaid:            m.TaxesPaid,
		TaxesCheckRef:        m.TaxesCheckRef,
		DateTaxesPaid:        m.DateTaxesPaid,
		DusPaid:              m.DusPaid,
		DusCheckRef:          m.DusCheckRef,
		DateDusPaid:          m.DateDusPaid,
		ExportDutyCollected:  m.ExportDutyCollected,
		DateSold:             m.DateSold,
		DateValidated:        m.DateValidated,
		ValidatedBy:          m.ValidatedBy,
		CancelReason:         m.CancelReason,
		CurrentTonnage:       m.CurrentTonnage,
		LotCount:             m.LotCount,
		PottedLotCount:       m.PottedLotCount,
		DeliveredTonnage:     m.DeliveredTonnage,
		InvoicedTonnage:      m.InvoicedTonnage,
		CertificationPremium: m.CertificationPremium,
		ContractAllocations:  make([]potting.ContractAllocation, len(m.ContractAllocations)),
	}
	for i, alloc := range m.ContractAllocations {
		ot.ContractAllocations[i] = *alloc.ToDomain()
	}
	return ot
}

// FromDomain populates the persistence model from a domain TransitOrder aggregate.
func (m *TransitOrderModel) FromDomain(ot *potting.TransitOrder) {
	m.FromDomainAggregateRoot(ot.BaseAggregateRoot)
	m.Name = ot.Name
	m.CustomerOrderID = ot.CustomerOrderID
	m.FormuleID = ot.FormuleID
	m.CampaignID = ot.CampaignID
	m.Consignee = ot.Consignee
	m.ProductType = ot.ProductType
	m.Tonnage = ot.Tonnage
	m.UnitPrice = ot.UnitPrice
	m.ExportDutyRate = ot.ExportDutyRate
	m.Status = ot.Status
	m.TaxesPaid = ot.TaxesPaid
	m.TaxesCheckRef = ot.TaxesCheckRef
	m.DateTaxesPaid = ot.DateTaxesPaid
	m.DusPaid = ot.DusPaid
	m.DusCheckRef = ot.DusCheckRef
	m.DateDusPaid = ot.DateDusPaid
	m.ExportDutyCollected = ot.ExportDutyCollected
	m.DateSold = ot.DateSold
	m.DateValidated = ot.DateValidated
	m.ValidatedBy = ot.ValidatedBy
	m.CancelReason = ot.CancelReason
	m.CurrentTonnage = ot.CurrentTonnage
	m.LotCount = ot.LotCount
	m.PottedLotCount = ot.PottedLotCount
	m.DeliveredTonnage = ot.DeliveredTonnage
	m.InvoicedTonnage = ot.InvoicedTonnage
	m.CertificationPremium = ot.CertificationPremium
	m.ContractAllocations = make([]ContractAllocationModel, len(ot.ContractAllocations))
	for i, alloc := range ot.ContractAllocations {
		m.ContractAllocations[i].FromDomain(&alloc)
	}
}

// TransitOrderModelFromDomain creates a new persistence model from domain.
func TransitOrderModelFromDomain(ot *potting.TransitOrder) *TransitOrderModel {
	m := &TransitOrderModel{}
	m.FromDomain(ot)
	return m
}

// ContractAllocationModel is the persistence model for ContractAllocation.
type ContractAllocationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransitOrderID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_contract_allocation_pair,priority:1"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_contract_allocation_pair,priority:2"`
	Tonnage        decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContractAllocationModel) TableName() string {
	return "contract_allocations"
}

// ToDomain converts the persistence model to a domain ContractAllocation.
func (m *ContractAllocationModel) ToDomain() *potting.ContractAllocation {
	return &potting.ContractAllocation{
		ID:             m.ID,
		TransitOrderID: m.TransitOrderID,
		OrderID:        m.OrderID,
		Tonnage:        m.Tonnage,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ContractAllocation.
func (m *ContractAllocationModel) FromDomain(a *potting.ContractAllocation) {
	m.ID = a.ID
	m.TransitOrderID = a.TransitOrderID
	m.OrderID = a.OrderID
	m.Tonnage = a.Tonnage
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// LotModel is the persistence model for Lot.
type LotModel struct {
	AggregateModel
	Name           string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	TransitOrderID uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductType    valueobject.ProductType `gorm:"type:varchar(20);not null"`
	TargetTonnage  decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	CurrentTonnage decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	Status         potting.LotStatus       `gorm:"type:varchar(20);not null;default:'draft';index"`
	ContainerID    *uuid.UUID              `gorm:"type:uuid;index"`
	Lines          []ProductionLineModel   `gorm:"foreignKey:LotID;references:ID"`
	PottedBy       string                  `gorm:"type:varchar(100)"`
	DatePotted     *time.Time
}

// TableName returns the table name for GORM
func (LotModel) TableName() string {
	return "lots"
}

// ToDomain converts the persistence model to a domain Lot aggregate.
func (m *LotModel) ToDomain() *potting.Lot {
	lot := &potting.Lot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		TransitOrderID:    m.TransitOrderID,
		ProductType:       m.ProductType,
		TargetTonnage:     m.TargetTonnage,
		CurrentTonnage:    m.CurrentTonnage,
		Status:            m.Status,
		ContainerID:       m.ContainerID,
		PottedBy:          m.PottedBy,
		DatePotted:        m.DatePotted,
		ProductionLine:    make([]potting.ProductionLine, len(m.Lines)),
	}
	for i, line := range m.Lines {
		lot.ProductionLine[i] = *line.ToDomain()
	}
	return lot
}

// FromDomain populates the persistence model from a domain Lot aggregate.
func (m *LotModel) FromDomain(lot *potting.Lot) {
	m.FromDomainAggregateRoot(lot.BaseAggregateRoot)
	m.Name = lot.Name
	m.TransitOrderID = lot.TransitOrderID
	m.ProductType = lot.ProductType
	m.TargetTonnage = lot.TargetTonnage
	m.CurrentTonnage = lot.CurrentTonnage
	m.Status = lot.Status
	m.ContainerID = lot.ContainerID
	m.PottedBy = lot.PottedBy
	m.DatePotted = lot.DatePotted
	m.Lines = make([]ProductionLineModel, len(lot.ProductionLine))
	for i, line := range lot.ProductionLine {
		m.Lines[i].FromDomain(&line)
	}
}

// LotModelFromDomain creates a new persistence model from domain.
func LotModelFromDomain(lot *potting.Lot) *LotModel {
	m := &LotModel{}
	m.FromDomain(lot)
	return m
}

// ProductionLineModel is the persistence model for ProductionLine.
type ProductionLineModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	LotID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tonnage  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Date     time.Time       `gorm:"not null"`
	Operator string          `gorm:"type:varchar(100)"`
	Remark   string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProductionLineModel) TableName() string {
	return "production_lines"
}

// ToDomain converts the persistence model to a domain ProductionLine.
func (m *ProductionLineModel) ToDomain() *potting.ProductionLine {
	return &potting.ProductionLine{
		ID:       m.ID,
		LotID:    m.LotID,
		Tonnage:  m.Tonnage,
		Date:     m.Date,
		Operator: m.Operator,
		Remark:   m.Remark,
	}
}

// FromDomain populates the persistence model from a domain ProductionLine.
func (m *ProductionLineModel) FromDomain(l *potting.ProductionLine) {
	m.ID = l.ID
	m.LotID = l.LotID
	m.Tonnage = l.Tonnage
	m.Date = l.Date
	m.Operator = l.Operator
	m.Remark = l.Remark
}

// ContainerModel is the persistence model for Container.
type ContainerModel struct {
	AggregateModel
	Name        string                  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Type        potting.ContainerType   `gorm:"type:varchar(10);not null"`
	MaxCapacity decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	Status      potting.ContainerStatus `gorm:"type:varchar(20);not null;default:'available';index"`
	SealNumber  string                  `gorm:"type:varchar(50)"`
	DatePotting *time.Time
	DateShipped *time.Time

	LotCount     int             `gorm:"not null;default:0"`
	TotalTonnage decimal.Decimal `gorm:"type:decimal(12,3);not null"`
}

// TableName returns the table name for GORM
func (ContainerModel) TableName() string {
	return "containers"
}

// ToDomain converts the persistence model to a domain Container aggregate.
func (m *ContainerModel) ToDomain() *potting.Container {
	return &potting.Container{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              m.Type,
		MaxCapacity:       m.MaxCapacity,
		Status:            m.Status,
		SealNumber:        m.SealNumber,
		DatePotting:       m.DatePotting,
		DateShipped:       m.DateShipped,
		LotCount:          m.LotCount,
		TotalTonnage:      m.TotalTonnage,
	}
}

// FromDomain populates the persistence model from a domain Container aggregate.
func (m *ContainerModel) FromDomain(c *potting.Container) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Type = c.Type
	m.MaxCapacity = c.MaxCapacity
	m.Status = c.Status
	m.SealNumber = c.SealNumber
	m.DatePotting = c.DatePotting
	m.DateShipped = c.DateShipped
	m.LotCount = c.LotCount
	m.TotalTonnage = c.TotalTonnage
}

// ContainerModelFromDomain creates a new persistence model from domain.
func ContainerModelFromDomain(c *potting.Container) *ContainerModel {
	m := &ContainerModel{}
	m.FromDomain(c)
	return m
}
