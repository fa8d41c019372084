package invoicing

import "github.com/invoiceflow/backend/internal/domain/shared"

// Validation and resolution error codes raised by the invoicing domain
const (
	CodeEmptyDescription     = "EMPTY_DESCRIPTION"
	CodeInvalidDescription   = "INVALID_DESCRIPTION"
	CodeInvalidQuantity      = "INVALID_QUANTITY"
	CodeInvalidPrice         = "INVALID_PRICE"
	CodeNoItems              = "NO_ITEMS"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidDateRange     = "INVALID_DATE_RANGE"
	CodeInvalidTaxRate       = "INVALID_TAX_RATE"
	CodeInvalidDiscount      = "INVALID_DISCOUNT"
	CodeDiscountExceedsTotal = "DISCOUNT_EXCEEDS_TOTAL"
	CodeInvalidNumber        = "INVALID_INVOICE_NUMBER"
	CodeInvalidCurrency      = "INVALID_CURRENCY"
	CodeInvalidReference     = "INVALID_REFERENCE"
	CodeInvalidName          = "INVALID_NAME"
	CodeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	CodeInvalidLogo          = "INVALID_LOGO"
	CodeRelationUnresolved   = "RELATION_UNRESOLVED"
	CodeRenderFailed         = "RENDER_FAILED"
	CodeRenderTimeout        = "RENDER_TIMEOUT"
)

// ErrNoItems is returned when an invoice would be created without line items
var ErrNoItems = shared.NewFieldError(CodeNoItems, "items", "Invoice must have at least one item")

// Document generation failures after the invoice was resolved
var (
	ErrRenderFailed  = shared.NewDomainError(CodeRenderFailed, "Cannot generate document: rendering failed")
	ErrRenderTimeout = shared.NewDomainError(CodeRenderTimeout, "Cannot generate document: rendering timed out")
)

// NewRelationError reports that a business or client required for rendering is missing
func NewRelationError(relation string) *shared.DomainError {
	return shared.NewFieldError(CodeRelationUnresolved, relation,
		"Cannot generate document: "+relation+" could not be resolved")
}

// NewReferenceError reports that a referenced record does not exist for the owner
func NewReferenceError(field string) *shared.DomainError {
	return shared.NewFieldError(CodeInvalidReference, field, "Referenced "+field+" does not exist")
}
