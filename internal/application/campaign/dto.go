package campaign

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/campaign"
	"github.com/shopspring/decimal"
)

// CreateCampaignRequest represents a request to create a campaign for a crop year
type CreateCampaignRequest struct {
	Year           int              `json:"year" binding:"required,min=2000,max=2100"`
	ExportDutyRate *decimal.Decimal `json:"export_duty_rate"`
	Note           string           `json:"note"`
}

// SetOfficialPriceRequest records one council price
type SetOfficialPriceRequest struct {
	ProductType string          `json:"product_type" binding:"required,product_type"`
	PricePerTon decimal.Decimal `json:"price_per_ton" binding:"required"`
}

// CampaignListFilter represents filter options for the campaign list
type CampaignListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft active closed"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID             uuid.UUID                  `json:"id"`
	Name           string                     `json:"name"`
	Code           string                     `json:"code"`
	DateStart      time.Time                  `json:"date_start"`
	DateEnd        time.Time                  `json:"date_end"`
	Status         string                     `json:"status"`
	ExportDutyRate decimal.Decimal            `json:"export_duty_rate"`
	OfficialPrices map[string]decimal.Decimal `json:"official_prices"`
	Note           string                     `json:"note"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	Version        int                        `json:"version"`
}

// ToCampaignResponse converts a domain campaign to its response DTO
func ToCampaignResponse(c *campaign.Campaign) CampaignResponse {
	prices := make(map[string]decimal.Decimal, len(c.OfficialPrices))
	for product, price := range c.OfficialPrices {
		prices[product.String()] = price
	}
	return CampaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Code:           c.Code,
		DateStart:      c.DateStart,
		DateEnd:        c.DateEnd,
		Status:         c.Status.String(),
		ExportDutyRate: c.ExportDutyRate,
		OfficialPrices: prices,
		Note:           c.Note,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}
