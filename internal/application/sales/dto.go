package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// ==================== Confirmation DTOs ====================

// CreateConfirmationRequest represents a request to register a council confirmation
type CreateConfirmationRequest struct {
	Reference       string          `json:"reference" binding:"required,min=1,max=50"`
	CampaignID      uuid.UUID       `json:"campaign_id" binding:"required"`
	ProductType     string          `json:"product_type" binding:"required,product_type"`
	DateEmission    time.Time       `json:"date_emission" binding:"required"`
	DateStart       time.Time       `json:"date_start" binding:"required"`
	DateEnd         time.Time       `json:"date_end" binding:"required"`
	TonnageAutorise decimal.Decimal `json:"tonnage_autorise" binding:"required"`
	PrixTonnage     decimal.Decimal `json:"prix_tonnage"`
	Note            string          `json:"note"`
}

// DuplicateConfirmationRequest copies a confirmation under a new reference
type DuplicateConfirmationRequest struct {
	NewReference string `json:"new_reference" binding:"required,min=1,max=50"`
}

// ConfirmationListFilter represents filter options for the confirmation list
type ConfirmationListFilter struct {
	Search      string     `form:"search"`
	CampaignID  *uuid.UUID `form:"campaign_id"`
	ProductType string     `form:"product_type"`
	Status      string     `form:"status" binding:"omitempty,oneof=draft active consumed expired cancelled"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
}

// ConfirmationResponse represents a confirmation in API responses
type ConfirmationResponse struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	CampaignID        uuid.UUID       `json:"campaign_id"`
	ProductType       string          `json:"product_type"`
	ProductLabel      string          `json:"product_label"`
	DateEmission      time.Time       `json:"date_emission"`
	DateStart         time.Time       `json:"date_start"`
	DateEnd           time.Time       `json:"date_end"`
	TonnageAutorise   decimal.Decimal `json:"tonnage_autorise"`
	PrixTonnage       decimal.Decimal `json:"prix_tonnage"`
	Status            string          `json:"status"`
	TonnageUtilise    decimal.Decimal `json:"tonnage_utilise"`
	TonnageRestant    decimal.Decimal `json:"tonnage_restant"`
	TonnageProgress   decimal.Decimal `json:"tonnage_progress"`
	UtilizationStatus string          `json:"utilization_status"`
	ValidityStatus    string          `json:"validity_status"`
	DaysRemaining     int             `json:"days_remaining"`
	Note              string          `json:"note"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToConfirmationResponse converts a domain confirmation to its response DTO
func ToConfirmationResponse(cv *sales.SalesConfirmation, now time.Time) ConfirmationResponse {
	return ConfirmationResponse{
		ID:                cv.ID,
		Reference:         cv.Reference,
		CampaignID:        cv.CampaignID,
		ProductType:       cv.ProductType.String(),
		ProductLabel:      cv.ProductType.Label(),
		DateEmission:      cv.DateEmission,
		DateStart:         cv.DateStart,
		DateEnd:           cv.DateEnd,
		TonnageAutorise:   cv.TonnageAutorise,
		PrixTonnage:       cv.PrixTonnage,
		Status:            cv.Status.String(),
		TonnageUtilise:    cv.TonnageUtilise,
		TonnageRestant:    cv.TonnageRestant,
		TonnageProgress:   cv.TonnageProgress,
		UtilizationStatus: cv.UtilizationStatus(),
		ValidityStatus:    cv.ValidityStatus(now),
		DaysRemaining:     cv.DaysRemaining(now),
		Note:              cv.Note,
		CreatedAt:         cv.CreatedAt,
		UpdatedAt:         cv.UpdatedAt,
		Version:           cv.Version,
	}
}

// SweepResult summarizes one expiration sweep run
type SweepResult struct {
	Expired  int      `json:"expired"`
	Consumed int      `json:"consumed"`
	Failed   []string `json:"failed,omitempty"`
}

// ==================== Customer Order DTOs ====================

// CreateOrderRequest represents a request to register a customer contract
type CreateOrderRequest struct {
	Reference       string          `json:"reference" binding:"required,min=1,max=50"`
	CustomerID      uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName    string          `json:"customer_name" binding:"required,min=1,max=200"`
	ProductType     string          `json:"product_type" binding:"required,product_type"`
	ContractTonnage decimal.Decimal `json:"contract_tonnage" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ExportDutyRate  *decimal.Decimal `json:"export_duty_rate"`
}

// AddAllocationRequest links part of a confirmation envelope to a contract
type AddAllocationRequest struct {
	ConfirmationID uuid.UUID       `json:"confirmation_id" binding:"required"`
	Tonnage        decimal.Decimal `json:"tonnage" binding:"required"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderListFilter represents filter options for the contract list
type OrderListFilter struct {
	Search      string     `form:"search"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	ProductType string     `form:"product_type"`
	Status      string     `form:"status" binding:"omitempty,oneof=draft confirmed in_progress done cancelled"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
}

// AllocationResponse represents a CV allocation in API responses
type AllocationResponse struct {
	ID             uuid.UUID       `json:"id"`
	ConfirmationID uuid.UUID       `json:"confirmation_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	TonnageAlloue  decimal.Decimal `json:"tonnage_alloue"`
	TonnageUtilise decimal.Decimal `json:"tonnage_utilise"`
}

// OrderResponse represents a customer contract in API responses
type OrderResponse struct {
	ID               uuid.UUID            `json:"id"`
	Reference        string               `json:"reference"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	CustomerName     string               `json:"customer_name"`
	ProductType      string               `json:"product_type"`
	ContractTonnage  decimal.Decimal      `json:"contract_tonnage"`
	AllocatedTonnage decimal.Decimal      `json:"allocated_tonnage"`
	UnitPrice        decimal.Decimal      `json:"unit_price"`
	ExportDutyRate   decimal.Decimal      `json:"export_duty_rate"`
	ContractAmount   decimal.Decimal      `json:"contract_amount"`
	Status           string               `json:"status"`
	Allocations      []AllocationResponse `json:"allocations"`
	CancelReason     string               `json:"cancel_reason,omitempty"`
	ConfirmedAt      *time.Time           `json:"confirmed_at,omitempty"`
	DoneAt           *time.Time           `json:"done_at,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int                  `json:"version"`
}

// ToOrderResponse converts a domain contract to its response DTO
func ToOrderResponse(o *sales.CustomerOrder) OrderResponse {
	allocations := make([]AllocationResponse, 0, len(o.Allocations))
	for _, a := range o.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:             a.ID,
			ConfirmationID: a.ConfirmationID,
			OrderID:        a.OrderID,
			TonnageAlloue:  a.TonnageAlloue,
			TonnageUtilise: a.TonnageUtilise,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		Reference:        o.Reference,
		CustomerID:       o.CustomerID,
		CustomerName:     o.CustomerName,
		ProductType:      o.ProductType.String(),
		ContractTonnage:  o.ContractTonnage,
		AllocatedTonnage: o.AllocatedTonnage(),
		UnitPrice:        o.UnitPrice,
		ExportDutyRate:   o.ExportDutyRate,
		ContractAmount:   o.ContractAmount(),
		Status:           o.Status.String(),
		Allocations:      allocations,
		CancelReason:     o.CancelReason,
		ConfirmedAt:      o.ConfirmedAt,
		DoneAt:           o.DoneAt,
		CancelledAt:      o.CancelledAt,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
}
