package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ConfirmationModel is the persistence model for SalesConfirmation.
type ConfirmationModel struct {
	AggregateModel
	Reference       string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	CampaignID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	ProductType     valueobject.ProductType  `gorm:"type:varchar(20);not null"`
	DateEmission    time.Time                `gorm:"not null"`
	DateStart       time.Time                `gorm:"not null"`
	DateEnd         time.Time                `gorm:"not null;index"`
	TonnageAutorise decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	PrixTonnage     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status          sales.ConfirmationStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	TonnageUtilise  decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	TonnageRestant  decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	TonnageProgress decimal.Decimal          `gorm:"type:decimal(8,4);not null"`
	Note            string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ConfirmationModel) TableName() string {
	return "sales_confirmations"
}

// ToDomain converts the persistence model to a domain SalesConfirmation aggregate.
func (m *ConfirmationModel) ToDomain() *sales.SalesConfirmation {
	return &sales.SalesConfirmation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.Reference,
		CampaignID:        m.CampaignID,
		ProductType:       m.ProductType,
		DateEmission:      m.DateEmission,
		DateStart:         m.DateStart,
		DateEnd:           m.DateEnd,
		TonnageAutorise:   m.TonnageAutorise,
		PrixTonnage:       m.PrixTonnage,
		Status:            m.Status,
		TonnageUtilise:    m.TonnageUtilise,
		TonnageRestant:    m.TonnageRestant,
		TonnageProgress:   m.TonnageProgress,
		Note:              m.Note,
	}
}

// FromDomain populates the persistence model from a domain SalesConfirmation aggregate.
func (m *ConfirmationModel) FromDomain(cv *sales.SalesConfirmation) {
	m.FromDomainAggregateRoot(cv.BaseAggregateRoot)
	m.Reference = cv.Reference
	m.CampaignID = cv.CampaignID
	m.ProductType = cv.ProductType
	m.DateEmission = cv.DateEmission
	m.DateStart = cv.DateStart
	m.DateEnd = cv.DateEnd
	m.TonnageAutorise = cv.TonnageAutorise
	m.PrixTonnage = cv.PrixTonnage
	m.Status = cv.Status
	m.TonnageUtilise = cv.TonnageUtilise
	m.TonnageRestant = cv.TonnageRestant
	m.TonnageProgress = cv.TonnageProgress
	m.Note = cv.Note
}

// ConfirmationModelFromDomain creates a new persistence model from domain.
func ConfirmationModelFromDomain(cv *sales.SalesConfirmation) *ConfirmationModel {
	m := &ConfirmationModel{}
	m.FromDomain(cv)
	return m
}

// CustomerOrderModel is the persistence model for CustomerOrder.
type CustomerOrderModel struct {
	AggregateModel
	Reference       string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName    string                  `gorm:"type:varchar(200);not null"`
	ProductType     valueobject.ProductType `gorm:"type:varchar(20);not null"`
	ContractTonnage decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	UnitPrice       decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ExportDutyRate  decimal.Decimal         `gorm:"type:decimal(8,4);not null"`
	Status          sales.OrderStatus       `gorm:"type:varchar(20);not null;default:'draft';index"`
	Allocations     []CvAllocationModel     `gorm:"foreignKey:OrderID;references:ID"`
	CancelReason    string                  `gorm:"type:varchar(500)"`
	ConfirmedAt     *time.Time
	DoneAt          *time.Time
	CancelledAt     *time.Time
}

// TableName returns the table name for GORM
func (CustomerOrderModel) TableName() string {
	return "customer_orders"
}

// ToDomain converts the persistence model to a domain CustomerOrder aggregate.
func (m *CustomerOrderModel) ToDomain() *sales.CustomerOrder {
	order := &sales.CustomerOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.Reference,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		ProductType:       m.ProductType,
		ContractTonnage:   m.ContractTonnage,
		UnitPrice:         m.UnitPrice,
		ExportDutyRate:    m.ExportDutyRate,
		Status:            m.Status,
		CancelReason:      m.CancelReason,
		ConfirmedAt:       m.ConfirmedAt,
		DoneAt:            m.DoneAt,
		CancelledAt:       m.CancelledAt,
		Allocations:       make([]sales.CvAllocation, len(m.Allocations)),
	}
	for i, alloc := range m.Allocations {
		order.Allocations[i] = *alloc.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain CustomerOrder aggregate.
func (m *CustomerOrderModel) FromDomain(order *sales.CustomerOrder) {
	m.FromDomainAggregateRoot(order.BaseAggregateRoot)
	m.Reference = order.Reference
	m.CustomerID = order.CustomerID
	m.CustomerName = order.CustomerName
	m.ProductType = order.ProductType
	m.ContractTonnage = order.ContractTonnage
	m.UnitPrice = order.UnitPrice
	m.ExportDutyRate = order.ExportDutyRate
	m.Status = order.Status
	m.CancelReason = order.CancelReason
	m.ConfirmedAt = order.ConfirmedAt
	m.DoneAt = order.DoneAt
	m.CancelledAt = order.CancelledAt
	m.Allocations = make([]CvAllocationModel, len(order.Allocations))
	for i, alloc := range order.Allocations {
		m.Allocations[i].FromDomain(&alloc)
	}
}

// CustomerOrderModelFromDomain creates a new persistence model from domain.
func CustomerOrderModelFromDomain(order *sales.CustomerOrder) *CustomerOrderModel {
	m := &CustomerOrderModel{}
	m.FromDomain(order)
	return m
}

// CvAllocationModel is the persistence model for CvAllocation.
// A (confirmation, order) pair is unique.
type CvAllocationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ConfirmationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cv_allocation_pair,priority:1"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cv_allocation_pair,priority:2"`
	TonnageAlloue  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TonnageUtilise decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CvAllocationModel) TableName() string {
	return "cv_allocations"
}

// ToDomain converts the persistence model to a domain CvAllocation.
func (m *CvAllocationModel) ToDomain() *sales.CvAllocation {
	return &sales.CvAllocation{
		ID:             m.ID,
		ConfirmationID: m.ConfirmationID,
		OrderID:        m.OrderID,
		TonnageAlloue:  m.TonnageAlloue,
		TonnageUtilise: m.TonnageUtilise,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain CvAllocation.
func (m *CvAllocationModel) FromDomain(a *sales.CvAllocation) {
	m.ID = a.ID
	m.ConfirmationID = a.ConfirmationID
	m.OrderID = a.OrderID
	m.TonnageAlloue = a.TonnageAlloue
	m.TonnageUtilise = a.TonnageUtilise
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}
