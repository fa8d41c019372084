package invoicing

import (
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Stored scales of the numeric columns. Inputs with more places are rejected
// rather than rounded by the database.
const (
	QuantityScale  = 4
	UnitPriceScale = 4
	TaxRateScale   = 4
	MoneyScale     = 2
)

// exceedsScale reports whether d has significant digits beyond places
func exceedsScale(d decimal.Decimal, places int32) bool {
	return !d.Round(places).Equal(d)
}

// Totals holds the derived header amounts of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Round2 rounds to two decimal places, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RecomputeLineAmount derives a line amount from quantity and unit price
func RecomputeLineAmount(quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewFieldError(CodeInvalidQuantity, "quantity", "Quantity must be greater than 0")
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, shared.NewFieldError(CodeInvalidPrice, "unit_price", "Unit price must be non-negative")
	}
	if exceedsScale(quantity, QuantityScale) {
		return decimal.Zero, shared.NewFieldError(CodeInvalidQuantity, "quantity", "Quantity cannot have more than 4 decimal places")
	}
	if exceedsScale(unitPrice, UnitPriceScale) {
		return decimal.Zero, shared.NewFieldError(CodeInvalidPrice, "unit_price", "Unit price cannot have more than 4 decimal places")
	}
	return Round2(quantity.Mul(unitPrice)), nil
}

// RecomputeTotals derives subtotal, tax and total from line amounts.
// Each field is rounded on its own; the total is not clamped at zero.
func RecomputeTotals(items []LineItem, taxRate, discount decimal.Decimal) Totals {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Amount)
	}
	subtotal := Round2(sum)
	taxAmount := Round2(subtotal.Mul(taxRate).Div(hundred))
	total := Round2(subtotal.Add(taxAmount).Sub(discount))

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
	}
}
