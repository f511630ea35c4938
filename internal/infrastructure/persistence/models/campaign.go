package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/campaign"
	"github.com/potting/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CampaignModel is the persistence model for Campaign.
type CampaignModel struct {
	AggregateModel
	Name           string                `gorm:"type:varchar(20);not null"`
	Code           string                `gorm:"type:varchar(10);not null;uniqueIndex"`
	DateStart      time.Time             `gorm:"not null"`
	DateEnd        time.Time             `gorm:"not null"`
	Status         campaign.Status       `gorm:"type:varchar(20);not null;default:'draft';index"`
	ExportDutyRate decimal.Decimal       `gorm:"type:decimal(8,4);not null"`
	Note           string                `gorm:"type:text"`
	OfficialPrices []CampaignPriceModel  `gorm:"foreignKey:CampaignID;references:ID"`
}

// TableName returns the table name for GORM
func (CampaignModel) TableName() string {
	return "campaigns"
}

// ToDomain converts the persistence model to a domain Campaign aggregate.
func (m *CampaignModel) ToDomain() *campaign.Campaign {
	c := &campaign.Campaign{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Code:              m.Code,
		DateStart:         m.DateStart,
		DateEnd:           m.DateEnd,
		Status:            m.Status,
		ExportDutyRate:    m.ExportDutyRate,
		Note:              m.Note,
		OfficialPrices:    make(map[valueobject.ProductType]decimal.Decimal, len(m.OfficialPrices)),
	}
	for _, p := range m.OfficialPrices {
		c.OfficialPrices[p.ProductType] = p.PricePerTon
	}
	return c
}

// FromDomain populates the persistence model from a domain Campaign aggregate.
func (m *CampaignModel) FromDomain(c *campaign.Campaign) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Code = c.Code
	m.DateStart = c.DateStart
	m.DateEnd = c.DateEnd
	m.Status = c.Status
	m.ExportDutyRate = c.ExportDutyRate
	m.Note = c.Note
	m.OfficialPrices = make([]CampaignPriceModel, 0, len(c.OfficialPrices))
	for product, price := range c.OfficialPrices {
		m.OfficialPrices = append(m.OfficialPrices, CampaignPriceModel{
			ID:          uuid.New(),
			CampaignID:  c.ID,
			ProductType: product,
			PricePerTon: price,
		})
	}
}

// CampaignModelFromDomain creates a new persistence model from domain.
func CampaignModelFromDomain(c *campaign.Campaign) *CampaignModel {
	m := &CampaignModel{}
	m.FromDomain(c)
	return m
}

// CampaignPriceModel stores one official council price per product type.
type CampaignPriceModel struct {
	ID          uuid.UUID               `gorm:"type:uuid;primary_key"`
	CampaignID  uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_campaign_price_product,priority:1"`
	ProductType valueobject.ProductType `gorm:"type:varchar(20);not null;uniqueIndex:idx_campaign_price_product,priority:2"`
	PricePerTon decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CampaignPriceModel) TableName() string {
	return "campaign_prices"
}
