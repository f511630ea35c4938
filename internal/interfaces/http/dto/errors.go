package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the interface layer itself. Domain errors carry
// their own codes and are mapped through GetHTTPStatus.
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes absent from the map fall through to the prefix rules in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeInternal:   http.StatusInternalServerError,

	// conflicts
	"ALREADY_EXISTS":          http.StatusConflict,
	"DUPLICATE_ALLOCATION":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"VERSION_CONFLICT":        http.StatusConflict,
	"FORMULA_BOUND":           http.StatusConflict,
	"FORMULA_IN_USE":          http.StatusConflict,

	// workflow and ledger rule violations
	"INVALID_STATE":           http.StatusUnprocessableEntity,
	"EXPIRED":                 http.StatusUnprocessableEntity,
	"INSUFFICIENT_TONNAGE":    http.StatusUnprocessableEntity,
	"EXCEEDS_REMAINING":       http.StatusUnprocessableEntity,
	"PRODUCT_TYPE_MISMATCH":   http.StatusUnprocessableEntity,
	"TAXES_UNPAID":            http.StatusUnprocessableEntity,
	"DUTIES_NOT_COLLECTED":    http.StatusUnprocessableEntity,
	"PAYMENT_ORDER":           http.StatusUnprocessableEntity,
	"ALREADY_PAID":            http.StatusUnprocessableEntity,
	"NO_TAX_LINES":            http.StatusUnprocessableEntity,
	"NO_TRANSIT_ORDER":        http.StatusUnprocessableEntity,
	"LOTS_EXIST":              http.StatusUnprocessableEntity,
	"LOTS_ATTACHED":           http.StatusUnprocessableEntity,
	"LOTS_NOT_POTTED":         http.StatusUnprocessableEntity,
	"LOT_EMPTY":               http.StatusUnprocessableEntity,
	"LOT_NOT_FULL":            http.StatusUnprocessableEntity,
	"POTTED_LOTS":             http.StatusUnprocessableEntity,
	"OVERFILL":                http.StatusUnprocessableEntity,
	"CAPACITY_EXCEEDED":       http.StatusUnprocessableEntity,
	"CONTAINER_EMPTY":         http.StatusUnprocessableEntity,
	"SEAL_REQUIRED":           http.StatusUnprocessableEntity,
	"ORDERS_ATTACHED":         http.StatusUnprocessableEntity,
	"TRANSIT_ORDERS_ATTACHED": http.StatusUnprocessableEntity,
	"TRANSIT_ORDERS_PENDING":  http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "NO_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ALREADY_"), strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasSuffix(code, "_ERROR"):
		return http.StatusInternalServerError
	}
	// unknown domain rule violations default to unprocessable rather than 500
	return http.StatusUnprocessableEntity
}
