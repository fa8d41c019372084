package dto

import "net/http"

// Error codes returned in the error envelope. Domain errors keep their own
// code; the constants below cover the transport layer and the shared sentinels.

// General error codes
const (
	// ErrCodeInternal is used for storage failures and unexpected errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Validation error codes
const (
	// ErrCodeValidation is used for request binding failures
	ErrCodeValidation = "VALIDATION_FAILED"
	// ErrCodeInvalidInput is used for malformed values
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInvalidJSON is used when the body cannot be parsed
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeInvalidID is used when a path id is not a positive integer
	ErrCodeInvalidID = "INVALID_ID"
)

// Invoice rule error codes
const (
	ErrCodeEmptyDescription     = "EMPTY_DESCRIPTION"
	ErrCodeInvalidDescription   = "INVALID_DESCRIPTION"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeInvalidPrice         = "INVALID_PRICE"
	ErrCodeNoItems              = "NO_ITEMS"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidDateRange     = "INVALID_DATE_RANGE"
	ErrCodeInvalidTaxRate       = "INVALID_TAX_RATE"
	ErrCodeInvalidDiscount      = "INVALID_DISCOUNT"
	ErrCodeDiscountExceedsTotal = "DISCOUNT_EXCEEDS_TOTAL"
	ErrCodeInvalidNumber        = "INVALID_INVOICE_NUMBER"
	ErrCodeInvalidCurrency      = "INVALID_CURRENCY"
	ErrCodeInvalidReference     = "INVALID_REFERENCE"
	ErrCodeInvalidName          = "INVALID_NAME"
	ErrCodeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	ErrCodeInvalidLogo          = "INVALID_LOGO"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the resource belongs to another user
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "INVALID_TOKEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeRelationUnresolved is used when a document cannot be built
	// because its business or client is gone
	ErrCodeRelationUnresolved = "RELATION_UNRESOLVED"
)

// Transport error codes
const (
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRenderFailed    = "RENDER_FAILED"
	ErrCodeRenderTimeout   = "RENDER_TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeInvalidID:            http.StatusBadRequest,
	ErrCodeEmptyDescription:     http.StatusBadRequest,
	ErrCodeInvalidDescription:   http.StatusBadRequest,
	ErrCodeInvalidQuantity:      http.StatusBadRequest,
	ErrCodeInvalidPrice:         http.StatusBadRequest,
	ErrCodeNoItems:              http.StatusBadRequest,
	ErrCodeInvalidStatus:        http.StatusBadRequest,
	ErrCodeInvalidDateRange:     http.StatusBadRequest,
	ErrCodeInvalidTaxRate:       http.StatusBadRequest,
	ErrCodeInvalidDiscount:      http.StatusBadRequest,
	ErrCodeDiscountExceedsTotal: http.StatusBadRequest,
	ErrCodeInvalidNumber:        http.StatusBadRequest,
	ErrCodeInvalidCurrency:      http.StatusBadRequest,
	ErrCodeInvalidReference:     http.StatusBadRequest,
	ErrCodeInvalidName:          http.StatusBadRequest,
	ErrCodeInvalidDateFormat:    http.StatusBadRequest,
	ErrCodeInvalidLogo:          http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeAlreadyExists:      http.StatusConflict,
	ErrCodeRelationUnresolved: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRenderFailed:    http.StatusInternalServerError,
	ErrCodeRenderTimeout:   http.StatusGatewayTimeout,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCodeAliases maps alternative spellings to the canonical code
var ErrorCodeAliases = map[string]string{
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidStatus,
	"ERR_NOT_FOUND":    ErrCodeNotFound,
	"ERR_FORBIDDEN":    ErrCodeForbidden,
	"ERR_INTERNAL":     ErrCodeInternal,
}

// NormalizeErrorCode converts an alias to its canonical code.
// Canonical and unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if canonical, ok := ErrorCodeAliases[code]; ok {
		return canonical
	}
	return code
}
