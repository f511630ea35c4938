package potting

import (
	"time"

	"github.com/google/uuid"
	"github.com/potting/backend/internal/domain/potting"
	"github.com/shopspring/decimal"
)

// CreateTransitOrderRequest represents a request to create a transit order
type CreateTransitOrderRequest struct {
	CampaignID      uuid.UUID       `json:"campaign_id" binding:"required"`
	ProductType     string          `json:"product_type" binding:"required,product_type"`
	Tonnage         decimal.Decimal `json:"tonnage" binding:"required"`
	Consignee       string          `json:"consignee"`
	CustomerOrderID *uuid.UUID      `json:"customer_order_id"`
}

// ContractAllocationRequest splits part of the order tonnage onto a contract
type ContractAllocationRequest struct {
	CustomerOrderID uuid.UUID       `json:"customer_order_id" binding:"required"`
	Tonnage         decimal.Decimal `json:"tonnage" binding:"required"`
}

// LinkFormuleRequest binds a price formula to a transit order
type LinkFormuleRequest struct {
	FormulaID uuid.UUID `json:"formula_id" binding:"required"`
}

// ConfirmTaxesRequest records the council tax payment
type ConfirmTaxesRequest struct {
	CheckRef string `json:"check_ref"`
}

// ConfirmDusRequest records the DUS payment
type ConfirmDusRequest struct {
	CheckRef string `json:"check_ref"`
}

// ValidateTransitOrderRequest closes the potting workflow
type ValidateTransitOrderRequest struct {
	ValidatedBy string `json:"validated_by" binding:"required"`
}

// CancelTransitOrderRequest cancels a transit order
type CancelTransitOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RegisterInvoiceRequest invoices part of the order tonnage. A nil tonnage
// invoices everything still open.
type RegisterInvoiceRequest struct {
	Tonnage *decimal.Decimal `json:"tonnage"`
}

// RegisterDeliveryRequest records tonnage covered by a delivery note
type RegisterDeliveryRequest struct {
	Tonnage decimal.Decimal `json:"tonnage" binding:"required"`
}

// SetPremiumRequest sets the certification premium of the order
type SetPremiumRequest struct {
	Premium decimal.Decimal `json:"premium"`
}

// TransitOrderListFilter represents filter options for the transit order list
type TransitOrderListFilter struct {
	Search          string     `form:"search"`
	Status          string     `form:"status"`
	CampaignID      *uuid.UUID `form:"campaign_id"`
	CustomerOrderID *uuid.UUID `form:"customer_order_id"`
	Page            int        `form:"page" binding:"min=0"`
	PageSize        int        `form:"page_size" binding:"min=0,max=100"`
}

// ContractAllocationResponse represents a contract allocation in API responses
type ContractAllocationResponse struct {
	ID              uuid.UUID       `json:"id"`
	CustomerOrderID uuid.UUID       `json:"customer_order_id"`
	Tonnage         decimal.Decimal `json:"tonnage"`
	Share           decimal.Decimal `json:"share"`
}

// TransitOrderResponse represents a transit order in API responses
type TransitOrderResponse struct {
	ID                   uuid.UUID                    `json:"id"`
	Name                 string                       `json:"name"`
	CampaignID           uuid.UUID                    `json:"campaign_id"`
	CustomerOrderID      *uuid.UUID                   `json:"customer_order_id,omitempty"`
	FormuleID            *uuid.UUID                   `json:"formule_id,omitempty"`
	Consignee            string                       `json:"consignee"`
	ProductType          string                       `json:"product_type"`
	Tonnage              decimal.Decimal              `json:"tonnage"`
	UnitPrice            decimal.Decimal              `json:"unit_price"`
	ExportDutyRate       decimal.Decimal              `json:"export_duty_rate"`
	Status               string                       `json:"status"`
	TaxesPaid            bool                         `json:"taxes_paid"`
	TaxesCheckRef        string                       `json:"taxes_check_ref,omitempty"`
	DateTaxesPaid        *time.Time                   `json:"date_taxes_paid,omitempty"`
	DusPaid              bool                         `json:"dus_paid"`
	DusCheckRef          string                       `json:"dus_check_ref,omitempty"`
	DateDusPaid          *time.Time                   `json:"date_dus_paid,omitempty"`
	ExportDutyCollected  bool                         `json:"export_duty_collected"`
	DateSold             *time.Time                   `json:"date_sold,omitempty"`
	DateValidated        *time.Time                   `json:"date_validated,omitempty"`
	ValidatedBy          string                       `json:"validated_by,omitempty"`
	CancelReason         string                       `json:"cancel_reason,omitempty"`
	CurrentTonnage       decimal.Decimal              `json:"current_tonnage"`
	LotCount             int                          `json:"lot_count"`
	PottedLotCount       int                          `json:"potted_lot_count"`
	Progress             decimal.Decimal              `json:"progress"`
	DeliveredTonnage     decimal.Decimal              `json:"delivered_tonnage"`
	DeliveryState        string                       `json:"delivery_state"`
	InvoicedTonnage      decimal.Decimal              `json:"invoiced_tonnage"`
	RemainingToInvoice   decimal.Decimal              `json:"remaining_to_invoice"`
	IsFullyInvoiced      bool                         `json:"is_fully_invoiced"`
	CertificationPremium decimal.Decimal              `json:"certification_premium"`
	TotalAmount          decimal.Decimal              `json:"total_amount"`
	ExportDutyAmount     decimal.Decimal              `json:"export_duty_amount"`
	NetAmount            decimal.Decimal              `json:"net_amount"`
	ContractAllocations  []ContractAllocationResponse `json:"contract_allocations"`
	CreatedAt            time.Time                    `json:"created_at"`
	UpdatedAt            time.Time                    `json:"updated_at"`
	Version              int                          `json:"version"`
}

// ToTransitOrderResponse converts a domain transit order to its response DTO
func ToTransitOrderResponse(t *potting.TransitOrder) TransitOrderResponse {
	allocations := make([]ContractAllocationResponse, 0, len(t.ContractAllocations))
	for i := range t.ContractAllocations {
		a := &t.ContractAllocations[i]
		allocations = append(allocations, ContractAllocationResponse{
			ID:              a.ID,
			CustomerOrderID: a.OrderID,
			Tonnage:         a.Tonnage,
			Share:           a.Share(t.Tonnage),
		})
	}
	return TransitOrderResponse{
		ID:                   t.ID,
		Name:                 t.Name,
		CampaignID:           t.CampaignID,
		CustomerOrderID:      t.CustomerOrderID,
		FormuleID:            t.FormuleID,
		Consignee:            t.Consignee,
		ProductType:          t.ProductType.String(),
		Tonnage:              t.Tonnage,
		UnitPrice:            t.UnitPrice,
		ExportDutyRate:       t.ExportDutyRate,
		Status:               t.Status.String(),
		TaxesPaid:            t.TaxesPaid,
		TaxesCheckRef:        t.TaxesCheckRef,
		DateTaxesPaid:        t.DateTaxesPaid,
		DusPaid:              t.DusPaid,
		DusCheckRef:          t.DusCheckRef,
		DateDusPaid:          t.DateDusPaid,
		ExportDutyCollected:  t.ExportDutyCollected,
		DateSold:             t.DateSold,
		DateValidated:        t.DateValidated,
		ValidatedBy:          t.ValidatedBy,
		CancelReason:         t.CancelReason,
		CurrentTonnage:       t.CurrentTonnage,
		LotCount:             t.LotCount,
		PottedLotCount:       t.PottedLotCount,
		Progress:             t.Progress(),
		DeliveredTonnage:     t.DeliveredTonnage,
		DeliveryState:        string(t.DeliveryState()),
		InvoicedTonnage:      t.InvoicedTonnage,
		RemainingToInvoice:   t.RemainingToInvoice(),
		IsFullyInvoiced:      t.IsFullyInvoiced(),
		CertificationPremium: t.CertificationPremium,
		TotalAmount:          t.TotalAmount(),
		ExportDutyAmount:     t.ExportDutyAmount(),
		NetAmount:            t.NetAmount(),
		ContractAllocations:  allocations,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
		Version:              t.Version,
	}
}

// InvoiceResponse summarizes one partial invoice of a transit order
type InvoiceResponse struct {
	TransitOrderID     uuid.UUID       `json:"transit_order_id"`
	InvoicedTonnage    decimal.Decimal `json:"invoiced_tonnage"`
	PremiumShare       decimal.Decimal `json:"premium_share"`
	RemainingToInvoice decimal.Decimal `json:"remaining_to_invoice"`
	IsFullyInvoiced    bool            `json:"is_fully_invoiced"`
}

// AddProductionRequest records a production addition into a lot
type AddProductionRequest struct {
	Tonnage  decimal.Decimal `json:"tonnage" binding:"required"`
	Date     *time.Time      `json:"date"`
	Operator string          `json:"operator"`
	Remark   string          `json:"remark"`
}

// ConfirmPottingRequest pots a lot into a container
type ConfirmPottingRequest struct {
	ContainerID uuid.UUID `json:"container_id" binding:"required"`
	PottedBy    string    `json:"potted_by" binding:"required"`
}

// LotListFilter represents filter options for the lot list
type LotListFilter struct {
	Search         string     `form:"search"`
	Status         string     `form:"status"`
	TransitOrderID *uuid.UUID `form:"transit_order_id"`
	ContainerID    *uuid.UUID `form:"container_id"`
	Page           int        `form:"page" binding:"min=0"`
	PageSize       int        `form:"page_size" binding:"min=0,max=100"`
}

// ProductionLineResponse represents a production line in API responses
type ProductionLineResponse struct {
	ID       uuid.UUID       `json:"id"`
	Tonnage  decimal.Decimal `json:"tonnage"`
	Date     time.Time       `json:"date"`
	Operator string          `json:"operator,omitempty"`
	Remark   string          `json:"remark,omitempty"`
}

// LotResponse represents a lot in API responses
type LotResponse struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	TransitOrderID uuid.UUID                `json:"transit_order_id"`
	ContainerID    *uuid.UUID               `json:"container_id,omitempty"`
	ProductType    string                   `json:"product_type"`
	TargetTonnage  decimal.Decimal          `json:"target_tonnage"`
	CurrentTonnage decimal.Decimal          `json:"current_tonnage"`
	FillPercentage decimal.Decimal          `json:"fill_percentage"`
	IsFull         bool                     `json:"is_full"`
	IsOverfilled   bool                     `json:"is_overfilled"`
	Status         string                   `json:"status"`
	PottedBy       string                   `json:"potted_by,omitempty"`
	DatePotted     *time.Time               `json:"date_potted,omitempty"`
	Production     []ProductionLineResponse `json:"production"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Version        int                      `json:"version"`
}

// ToLotResponse converts a domain lot to its response DTO
func ToLotResponse(l *potting.Lot) LotResponse {
	production := make([]ProductionLineResponse, 0, len(l.ProductionLine))
	for i := range l.ProductionLine {
		p := &l.ProductionLine[i]
		production = append(production, ProductionLineResponse{
			ID:       p.ID,
			Tonnage:  p.Tonnage,
			Date:     p.Date,
			Operator: p.Operator,
			Remark:   p.Remark,
		})
	}
	return LotResponse{
		ID:             l.ID,
		Name:           l.Name,
		TransitOrderID: l.TransitOrderID,
		ContainerID:    l.ContainerID,
		ProductType:    l.ProductType.String(),
		TargetTonnage:  l.TargetTonnage,
		CurrentTonnage: l.CurrentTonnage,
		FillPercentage: l.FillPercentage(),
		IsFull:         l.IsFull(),
		IsOverfilled:   l.IsOverfilled(),
		Status:         l.Status.String(),
		PottedBy:       l.PottedBy,
		DatePotted:     l.DatePotted,
		Production:     production,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
		Version:        l.Version,
	}
}

// CreateContainerRequest registers a container
type CreateContainerRequest struct {
	Name     string           `json:"name" binding:"required"`
	Type     string           `json:"type" binding:"required,oneof=20 40 40hc"`
	Capacity *decimal.Decimal `json:"capacity"`
}

// SetSealRequest seals a container before shipping
type SetSealRequest struct {
	SealNumber string `json:"seal_number" binding:"required"`
}

// ContainerListFilter represents filter options for the container list
type ContainerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Type     string `form:"type"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// ContainerResponse represents a container in API responses
type ContainerResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	MaxCapacity    decimal.Decimal `json:"max_capacity"`
	Status         string          `json:"status"`
	SealNumber     string          `json:"seal_number,omitempty"`
	DatePotting    *time.Time      `json:"date_potting,omitempty"`
	DateShipped    *time.Time      `json:"date_shipped,omitempty"`
	LotCount       int             `json:"lot_count"`
	TotalTonnage   decimal.Decimal `json:"total_tonnage"`
	FillPercentage decimal.Decimal `json:"fill_percentage"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToContainerResponse converts a domain container to its response DTO
func ToContainerResponse(c *potting.Container) ContainerResponse {
	return ContainerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Type:           c.Type.String(),
		MaxCapacity:    c.MaxCapacity,
		Status:         c.Status.String(),
		SealNumber:     c.SealNumber,
		DatePotting:    c.DatePotting,
		DateShipped:    c.DateShipped,
		LotCount:       c.LotCount,
		TotalTonnage:   c.TotalTonnage,
		FillPercentage: c.FillPercentage(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}
