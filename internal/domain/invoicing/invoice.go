package invoicing

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCurrency is used when neither the invoice nor the preferences name one
	DefaultCurrency = "USD"
	// MaxInvoiceNumberLength bounds the human-facing number
	MaxInvoiceNumberLength = 50
	maxCurrencyLength      = 10
)

// Invoice is the aggregate root: a header together with its line items
type Invoice struct {
	shared.BaseEntity
	UserID        string
	InvoiceNumber string
	BusinessID    int64
	ClientID      int64
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // percent
	TaxAmount     decimal.Decimal
	Discount      decimal.Decimal // absolute amount
	Total         decimal.Decimal
	Notes         string
	Status        Status
	TemplateID    int
	Items         []LineItem
	// Sequence numbers a generated invoice number within the issue year
	Sequence int64
}

// NewInvoiceParams carries the validated-on-construction header input
type NewInvoiceParams struct {
	UserID        string
	InvoiceNumber string
	BusinessID    int64
	ClientID      int64
	IssueDate     time.Time
	DueDate       time.Time
	Currency      string
	TaxRate       decimal.Decimal
	Discount      decimal.Decimal
	Notes         string
	TemplateID    int
	Items         []LineItem
	// Sequence numbers a generated invoice number within the issue year
	Sequence int64
}

// NewInvoice creates a draft invoice with derived totals
func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, shared.NewFieldError(shared.ErrInvalidInput.Code, "user_id", "Owner cannot be empty")
	}
	if len(p.Items) == 0 {
		return nil, ErrNoItems
	}

	number := strings.TrimSpace(p.InvoiceNumber)
	if number == "" {
		number = GenerateInvoiceNumber(p.IssueDate.Year(), max(p.Sequence, 1))
	}

	inv := &Invoice{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        p.UserID,
		InvoiceNumber: number,
		BusinessID:    p.BusinessID,
		ClientID:      p.ClientID,
		IssueDate:     p.IssueDate,
		DueDate:       p.DueDate,
		Currency:      NormalizeCurrency(p.Currency),
		TaxRate:       p.TaxRate,
		Discount:      p.Discount,
		Notes:         strings.TrimSpace(p.Notes),
		Status:        StatusDraft,
		TemplateID:    normalizeTemplateID(p.TemplateID),
	}
	if err := inv.validateHeader(); err != nil {
		return nil, err
	}

	inv.Items = make([]LineItem, len(p.Items))
	copy(inv.Items, p.Items)
	inv.RecalculateTotals()

	if err := inv.validateTotals(); err != nil {
		return nil, err
	}
	return inv, nil
}

// GenerateInvoiceNumber builds a number in the INV-{year}-{NNN} form
func GenerateInvoiceNumber(year int, sequence int64) string {
	return fmt.Sprintf("INV-%d-%03d", year, sequence)
}

// NormalizeCurrency upper-cases a currency code and applies the default
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

func normalizeTemplateID(id int) int {
	if id <= 0 {
		return DefaultTemplateID
	}
	return id
}

// RecalculateTotals refreshes Subtotal, TaxAmount and Total from the items
func (i *Invoice) RecalculateTotals() {
	totals := RecomputeTotals(i.Items, i.TaxRate, i.Discount)
	i.Subtotal = totals.Subtotal
	i.TaxAmount = totals.TaxAmount
	i.Total = totals.Total
}

// AddItem appends a line item and recomputes totals
func (i *Invoice) AddItem(item LineItem) error {
	item.InvoiceID = i.ID
	i.Items = append(i.Items, item)
	i.RecalculateTotals()
	if err := i.validateTotals(); err != nil {
		i.Items = i.Items[:len(i.Items)-1]
		i.RecalculateTotals()
		return err
	}
	i.Touch()
	return nil
}

// ReplaceItems swaps the whole item set and recomputes totals
func (i *Invoice) ReplaceItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	previous := i.Items
	i.Items = make([]LineItem, len(items))
	for idx, item := range items {
		item.ID = 0
		item.InvoiceID = i.ID
		i.Items[idx] = item
	}
	i.RecalculateTotals()
	if err := i.validateTotals(); err != nil {
		i.Items = previous
		i.RecalculateTotals()
		return err
	}
	i.Touch()
	return nil
}

// SetTaxRate changes the tax percentage and recomputes totals
func (i *Invoice) SetTaxRate(rate decimal.Decimal) error {
	return i.ApplyHeader(HeaderPatch{TaxRate: &rate})
}

// SetDiscount changes the absolute discount and recomputes totals
func (i *Invoice) SetDiscount(discount decimal.Decimal) error {
	return i.ApplyHeader(HeaderPatch{Discount: &discount})
}

// HeaderPatch lists header fields to change; nil fields are left alone
type HeaderPatch struct {
	InvoiceNumber *string
	BusinessID    *int64
	ClientID      *int64
	IssueDate     *time.Time
	DueDate       *time.Time
	Currency      *string
	TaxRate       *decimal.Decimal
	Discount      *decimal.Decimal
	Notes         *string
	TemplateID    *int
}

// ApplyHeader applies a patch to a copy, validates it, then commits it.
// Items are untouched; totals are recomputed because tax and discount may change.
func (i *Invoice) ApplyHeader(patch HeaderPatch) error {
	next := *i
	if patch.InvoiceNumber != nil {
		next.InvoiceNumber = strings.TrimSpace(*patch.InvoiceNumber)
	}
	if patch.BusinessID != nil {
		next.BusinessID = *patch.BusinessID
	}
	if patch.ClientID != nil {
		next.ClientID = *patch.ClientID
	}
	if patch.IssueDate != nil {
		next.IssueDate = *patch.IssueDate
	}
	if patch.DueDate != nil {
		next.DueDate = *patch.DueDate
	}
	if patch.Currency != nil {
		next.Currency = NormalizeCurrency(*patch.Currency)
	}
	if patch.TaxRate != nil {
		next.TaxRate = *patch.TaxRate
	}
	if patch.Discount != nil {
		next.Discount = *patch.Discount
	}
	if patch.Notes != nil {
		next.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.TemplateID != nil {
		next.TemplateID = normalizeTemplateID(*patch.TemplateID)
	}

	if err := next.validateHeader(); err != nil {
		return err
	}
	next.RecalculateTotals()
	if err := next.validateTotals(); err != nil {
		return err
	}

	next.Touch()
	*i = next
	return nil
}

// SetStatus moves the invoice to any status in the allow-list
func (i *Invoice) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewFieldError(CodeInvalidStatus, "status",
			fmt.Sprintf("Invalid status: %s", status))
	}
	i.Status = status
	i.Touch()
	return nil
}

// IsOwnedBy reports whether userID owns the invoice
func (i *Invoice) IsOwnedBy(userID string) bool {
	return userID != "" && i.UserID == userID
}

// IsPastDue reports whether a sent invoice is beyond its due date.
// This is informational; the overdue status is only set explicitly.
func (i *Invoice) IsPastDue(now time.Time) bool {
	if i.Status != StatusSent || i.DueDate.IsZero() {
		return false
	}
	due := time.Date(i.DueDate.Year(), i.DueDate.Month(), i.DueDate.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.After(due)
}

// ItemCount returns the number of line items
func (i *Invoice) ItemCount() int {
	return len(i.Items)
}

// FileName returns the artifact name for rendered documents
func (i *Invoice) FileName(ext string) string {
	return fmt.Sprintf("Invoice_%s.%s", i.InvoiceNumber, ext)
}

func (i *Invoice) validateHeader() error {
	if i.InvoiceNumber == "" {
		return shared.NewFieldError(CodeInvalidNumber, "invoice_number", "Invoice number is required")
	}
	if utf8.RuneCountInString(i.InvoiceNumber) > MaxInvoiceNumberLength {
		return shared.NewFieldError(CodeInvalidNumber, "invoice_number", "Invoice number cannot exceed 50 characters")
	}
	if i.BusinessID <= 0 {
		return NewReferenceError("business_id")
	}
	if i.ClientID <= 0 {
		return NewReferenceError("client_id")
	}
	if i.IssueDate.IsZero() {
		return shared.NewFieldError(CodeInvalidDateRange, "issue_date", "Issue date is required")
	}
	if i.DueDate.IsZero() {
		return shared.NewFieldError(CodeInvalidDateRange, "due_date", "Due date is required")
	}
	if i.DueDate.Before(i.IssueDate) {
		return shared.NewFieldError(CodeInvalidDateRange, "due_date", "Due date cannot be before issue date")
	}
	if len(i.Currency) > maxCurrencyLength {
		return shared.NewFieldError(CodeInvalidCurrency, "currency", "Currency code cannot exceed 10 characters")
	}
	if i.TaxRate.IsNegative() {
		return shared.NewFieldError(CodeInvalidTaxRate, "tax_rate", "Tax rate must be non-negative")
	}
	if exceedsScale(i.TaxRate, TaxRateScale) {
		return shared.NewFieldError(CodeInvalidTaxRate, "tax_rate", "Tax rate cannot have more than 4 decimal places")
	}
	if i.Discount.IsNegative() {
		return shared.NewFieldError(CodeInvalidDiscount, "discount", "Discount must be non-negative")
	}
	if exceedsScale(i.Discount, MoneyScale) {
		return shared.NewFieldError(CodeInvalidDiscount, "discount", "Discount cannot have more than 2 decimal places")
	}
	return nil
}

// validateTotals rejects discounts that would drive the total below zero
func (i *Invoice) validateTotals() error {
	if i.Total.IsNegative() {
		return shared.NewFieldError(CodeDiscountExceedsTotal, "discount",
			"Discount cannot exceed subtotal plus tax")
	}
	return nil
}
