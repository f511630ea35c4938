package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CampaignSortFields contains allowed sort fields for campaigns
var CampaignSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"code":       true,
	"date_start": true,
	"date_end":   true,
	"status":     true,
}

// ConfirmationSortFields contains allowed sort fields for sales confirmations
var ConfirmationSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference":        true,
	"product_type":     true,
	"date_emission":    true,
	"date_end":         true,
	"tonnage_autorise": true,
	"tonnage_restant":  true,
	"tonnage_progress": true,
	"status":           true,
}

// CustomerOrderSortFields contains allowed sort fields for customer orders
var CustomerOrderSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"reference":        true,
	"customer_name":    true,
	"product_type":     true,
	"contract_tonnage": true,
	"unit_price":       true,
	"status":           true,
	"confirmed_at":     true,
	"done_at":          true,
}

// FormulaSortFields contains allowed sort fields for formulas
var FormulaSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"reference":    true,
	"numero_fo1":   true,
	"product_type": true,
	"tonnage":      true,
	"prix_tonnage": true,
	"montant_net":  true,
	"status":       true,
}

// TransitOrderSortFields contains allowed sort fields for transit orders
var TransitOrderSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"product_type":    true,
	"tonnage":         true,
	"current_tonnage": true,
	"status":          true,
	"date_sold":       true,
	"date_validated":  true,
}

// LotSortFields contains allowed sort fields for lots
var LotSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"name":            true,
	"product_type":    true,
	"target_tonnage":  true,
	"current_tonnage": true,
	"status":          true,
	"date_potted":     true,
}

// ContainerSortFields contains allowed sort fields for containers
var ContainerSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"type":          true,
	"max_capacity":  true,
	"total_tonnage": true,
	"status":        true,
	"date_shipped":  true,
}
