package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/invoiceflow/backend/internal/domain/invoicing"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of invoice dates
const DateLayout = "2006-01-02"

// =============================================================================
// Invoice DTOs
// =============================================================================

// ItemInput is one line item in create and replace requests
type ItemInput struct {
	TempID      string          `json:"temp_id"`
	ProductID   *int64          `json:"product_id" binding:"omitempty,gt=0"`
	Description string          `json:"description" binding:"max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"max=50"`
	BusinessID    int64           `json:"business_id" binding:"required,gt=0"`
	ClientID      int64           `json:"client_id" binding:"required,gt=0"`
	IssueDate     string          `json:"issue_date" binding:"required"`
	DueDate       string          `json:"due_date" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,iso_currency"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Discount      decimal.Decimal `json:"discount"`
	Notes         string          `json:"notes" binding:"max=5000"`
	TemplateID    int             `json:"template_id" binding:"omitempty,gte=0"`
	Items         []ItemInput     `json:"items" binding:"dive"`
}

// UpdateInvoiceRequest changes header fields; omitted fields are kept
type UpdateInvoiceRequest struct {
	InvoiceNumber *string          `json:"invoice_number" binding:"omitempty,max=50"`
	BusinessID    *int64           `json:"business_id" binding:"omitempty,gt=0"`
	ClientID      *int64           `json:"client_id" binding:"omitempty,gt=0"`
	IssueDate     *string          `json:"issue_date"`
	DueDate       *string          `json:"due_date"`
	Currency      *string          `json:"currency" binding:"omitempty,iso_currency"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Discount      *decimal.Decimal `json:"discount"`
	Notes         *string          `json:"notes" binding:"omitempty,max=5000"`
	TemplateID    *int             `json:"template_id" binding:"omitempty,gte=0"`
}

// ReplaceItemsRequest replaces the whole item set of an invoice
type ReplaceItemsRequest struct {
	Items []ItemInput `json:"items" binding:"dive"`
}

// UpdateStatusRequest sets the invoice status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListInvoicesRequest carries list filters from the query string
type ListInvoicesRequest struct {
	Status     string `form:"status" binding:"omitempty,invoice_status"`
	ClientID   *int64 `form:"client_id" binding:"omitempty,gt=0"`
	BusinessID *int64 `form:"business_id" binding:"omitempty,gt=0"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Search     string `form:"search" binding:"max=100"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// ItemResponse represents a line item in API responses
type ItemResponse struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	ProductID   *int64          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice header in API responses
type InvoiceResponse struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	InvoiceNumber string          `json:"invoice_number"`
	BusinessID    int64           `json:"business_id"`
	ClientID      int64           `json:"client_id"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Notes         string          `json:"notes"`
	Status        string          `json:"status"`
	TemplateID    int             `json:"template_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceDetailResponse is an invoice together with its items
type InvoiceDetailResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Items   []ItemResponse  `json:"items"`
}

// StatusSummaryResponse counts a user's invoices per status
type StatusSummaryResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ToInvoiceResponse converts the header to a response
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		UserID:        inv.UserID,
		InvoiceNumber: inv.InvoiceNumber,
		BusinessID:    inv.BusinessID,
		ClientID:      inv.ClientID,
		IssueDate:     inv.IssueDate.Format(DateLayout),
		DueDate:       inv.DueDate.Format(DateLayout),
		Currency:      inv.Currency,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Discount:      inv.Discount,
		Total:         inv.Total,
		Notes:         inv.Notes,
		Status:        string(inv.Status),
		TemplateID:    inv.TemplateID,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceDetailResponse converts the aggregate to a response
func ToInvoiceDetailResponse(inv *invoicing.Invoice) InvoiceDetailResponse {
	items := make([]ItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = ItemResponse{
			ID:          item.ID,
			InvoiceID:   item.InvoiceID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return InvoiceDetailResponse{Invoice: ToInvoiceResponse(inv), Items: items}
}

// ToInvoiceResponses converts a list of headers
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the UTC calendar date
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, shared.NewFieldError(shared.ErrInvalidInput.Code, field,
		fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", raw))
}

// =============================================================================
// Document DTOs
// =============================================================================

// ExportResult is a rendered invoice document
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
	PageCount   int
	// URL is set when the artifact was archived
	URL string
}

// =============================================================================
// Template DTOs
// =============================================================================

// TemplateResponse represents a catalog entry in API responses
type TemplateResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	IsSystem  bool   `json:"is_system"`
	PaperSize string `json:"paper_size"`
}

// ToTemplateResponses converts catalog descriptors
func ToTemplateResponses(templates []invoicing.TemplateDescriptor) []TemplateResponse {
	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = TemplateResponse{
			ID:        t.ID,
			Name:      t.Name,
			IsDefault: t.IsDefault,
			IsSystem:  t.IsSystem,
			PaperSize: string(t.PaperSize),
		}
	}
	return out
}

// =============================================================================
// Preferences DTOs
// =============================================================================

// UpdatePreferencesRequest changes display settings; empty fields are kept
type UpdatePreferencesRequest struct {
	DefaultCurrency string `json:"default_currency" binding:"omitempty,iso_currency"`
	DateFormat      string `json:"date_format" binding:"omitempty,oneof=MM/DD/YYYY DD/MM/YYYY YYYY-MM-DD"`
}

// PreferencesResponse represents user preferences in API responses
type PreferencesResponse struct {
	UserID          string    `json:"user_id"`
	DefaultCurrency string    `json:"default_currency"`
	DateFormat      string    `json:"date_format"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}

// ToPreferencesResponse converts preferences
func ToPreferencesResponse(p *invoicing.Preferences) PreferencesResponse {
	return PreferencesResponse{
		UserID:          p.UserID,
		DefaultCurrency: p.DefaultCurrency,
		DateFormat:      string(p.DateFormat),
		UpdatedAt:       p.UpdatedAt,
	}
}

// =============================================================================
// Business and Client DTOs
// =============================================================================

// ContactInput is the shared identity block of businesses and clients
type ContactInput struct {
	Name      string `json:"name" binding:"required,min=1,max=200"`
	Email     string `json:"email" binding:"omitempty,email,max=200"`
	Phone     string `json:"phone" binding:"max=50"`
	Address   string `json:"address" binding:"max=1000"`
	TaxNumber string `json:"tax_number" binding:"max=50"`
}

func (c ContactInput) toDomain() invoicing.Contact {
	return invoicing.Contact{
		Name:      c.Name,
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
		Address:   c.Address,
		TaxNumber: strings.TrimSpace(c.TaxNumber),
	}
}

// CreateBusinessRequest represents a request to create a business profile
type CreateBusinessRequest struct {
	ContactInput
	// Logo is a data:image URL
	Logo            string `json:"logo" binding:"omitempty,max=2000000,startswith=data:image/"`
	DefaultCurrency string `json:"default_currency" binding:"omitempty,iso_currency"`
}

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	ContactInput
}

// ContactResponse is the identity block in API responses
type ContactResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	TaxNumber string `json:"tax_number,omitempty"`
}

// BusinessResponse represents a business in API responses
type BusinessResponse struct {
	ID int64 `json:"id"`
	ContactResponse
	HasLogo         bool      `json:"has_logo"`
	DefaultCurrency string    `json:"default_currency"`
	CreatedAt       time.Time `json:"created_at"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID int64 `json:"id"`
	ContactResponse
	CreatedAt time.Time `json:"created_at"`
}

func toContactResponse(c invoicing.Contact) ContactResponse {
	return ContactResponse{
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		TaxNumber: c.TaxNumber,
	}
}

// ToBusinessResponse converts a business
func ToBusinessResponse(b *invoicing.Business) BusinessResponse {
	return BusinessResponse{
		ID:              b.ID,
		ContactResponse: toContactResponse(b.Contact),
		HasLogo:         b.Logo != "",
		DefaultCurrency: b.DefaultCurrency,
		CreatedAt:       b.CreatedAt,
	}
}

// ToClientResponse converts a client
func ToClientResponse(c *invoicing.Client) ClientResponse {
	return ClientResponse{
		ID:              c.ID,
		ContactResponse: toContactResponse(c.Contact),
		CreatedAt:       c.CreatedAt,
	}
}

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to add a catalog product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price"`
}

// ProductResponse represents a catalog product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToProductResponse converts a product
func ToProductResponse(p *invoicing.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}
