package invoicing

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxDescriptionLength bounds a line item description
const MaxDescriptionLength = 255

// LineItem represents one row of an invoice
type LineItem struct {
	ID        int64
	TempID    string // editing handle, never persisted
	InvoiceID int64
	ProductID *int64
	// Description is free text, required
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // round2(Quantity * UnitPrice)
}

// NewLineItem validates the input and derives the amount
func NewLineItem(description string, quantity, unitPrice decimal.Decimal, productID *int64) (*LineItem, error) {
	description = strings.TrimSpace(description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	amount, err := RecomputeLineAmount(quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	return &LineItem{
		TempID:      uuid.NewString(),
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      amount,
	}, nil
}

// WithTempID keeps a client supplied editing handle
func (i *LineItem) WithTempID(tempID string) *LineItem {
	if tempID != "" {
		i.TempID = tempID
	}
	return i
}

// SetQuantity updates the quantity and recomputes the amount
func (i *LineItem) SetQuantity(quantity decimal.Decimal) error {
	amount, err := RecomputeLineAmount(quantity, i.UnitPrice)
	if err != nil {
		return err
	}
	i.Quantity = quantity
	i.Amount = amount
	return nil
}

// SetUnitPrice updates the unit price and recomputes the amount
func (i *LineItem) SetUnitPrice(unitPrice decimal.Decimal) error {
	amount, err := RecomputeLineAmount(i.Quantity, unitPrice)
	if err != nil {
		return err
	}
	i.UnitPrice = unitPrice
	i.Amount = amount
	return nil
}

// SetDescription replaces the description
func (i *LineItem) SetDescription(description string) error {
	description = strings.TrimSpace(description)
	if err := validateDescription(description); err != nil {
		return err
	}
	i.Description = description
	return nil
}

func validateDescription(description string) error {
	if description == "" {
		return shared.NewFieldError(CodeEmptyDescription, "description", "Description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return shared.NewFieldError(CodeInvalidDescription, "description", "Description cannot exceed 255 characters")
	}
	return nil
}
